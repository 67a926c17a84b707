package cmd

import (
	"github.com/ghaggin/cfptracker/internal/api"
	"github.com/ghaggin/cfptracker/internal/cfplist"
	"github.com/ghaggin/cfptracker/internal/config"
	"github.com/ghaggin/cfptracker/internal/repository"
	"github.com/ghaggin/cfptracker/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// deps wires the client core shared by the CLI and the web server.
// newLogger is any fx constructor of *zap.Logger.
func deps(newLogger any) fx.Option {
	return fx.Options(
		fx.Supply(config.Path(configPath)),
		fx.Provide(
			newLogger,
			config.New,
			api.New,
			repository.NewTokenStore,
			session.New,
			cfplist.New,
			func(c *api.Client) session.Authenticator { return c },
			func(c *api.Client) cfplist.Backend { return c },
			func(m *session.Manager) api.CredentialSource { return m },
		),
		fx.Decorate(func(cfg *config.Config) *config.Config {
			if ephemeral {
				cfg.Storage.Ephemeral = true
			}
			return cfg
		}),
	)
}

func cliLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

type client struct {
	Session *session.Manager
	List    *cfplist.View
	Log     *zap.Logger
}

// newClient builds the core for a single CLI invocation. Constructors run
// inside fx.New; nothing needs starting.
func newClient() (*client, error) {
	c := &client{}
	app := fx.New(
		deps(cliLogger),
		fx.NopLogger,
		fx.Populate(&c.Session, &c.List, &c.Log),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return c, nil
}
