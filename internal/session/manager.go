package session

import (
	"context"
	"errors"
	"sync"

	"github.com/ghaggin/cfptracker/internal/api"
	"github.com/ghaggin/cfptracker/internal/config"
	"github.com/ghaggin/cfptracker/internal/model"
	"github.com/ghaggin/cfptracker/internal/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Messages are user facing, so they are capitalised.
var (
	ErrLoginFailed        = errors.New("Login failed")
	ErrRegistrationFailed = errors.New("Registration failed")
)

// Authenticator is the slice of the API client the manager needs.
type Authenticator interface {
	IssueToken(ctx context.Context, username, password string) (api.Token, error)
	CreateUser(ctx context.Context, email, password string) error
	Me(ctx context.Context, cred api.Credential) (model.User, error)
}

// Manager owns the current session and is the only writer of the token
// store and of the credential handed to outgoing requests.
type Manager struct {
	auth  Authenticator
	store repository.TokenStore
	log   *zap.Logger

	keepTokenOnNetworkError bool

	mu      sync.RWMutex
	session model.Session
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Config *config.Config
	Auth   Authenticator
	Store  repository.TokenStore
}

func New(p Params) *Manager {
	return &Manager{
		auth:                    p.Auth,
		store:                   p.Store,
		log:                     p.Log,
		keepTokenOnNetworkError: p.Config.Session.KeepTokenOnNetworkError,
	}
}

// RegisterHooks revalidates the persisted token in the background once the
// app starts. The app serves logged out until the check commits.
func RegisterHooks(lc fx.Lifecycle, m *Manager) {
	var (
		cancel context.CancelFunc
		done   = make(chan struct{})
	)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var restoreCtx context.Context
			restoreCtx, cancel = context.WithCancel(context.WithoutCancel(ctx))
			go func() {
				defer close(done)
				m.RestoreSession(restoreCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

func (m *Manager) User() (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session.User == nil {
		return model.User{}, false
	}
	return *m.session.User, true
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.session.Authenticated()
}

// Credential returns the credential for requests issued now. It is
// anonymous until a token has been validated.
func (m *Manager) Credential() api.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session.User == nil {
		return api.Anonymous
	}
	return api.Bearer(m.session.Token)
}

// RestoreSession revalidates a persisted token. Failures are logged and
// leave the manager logged out; nothing is returned to the caller.
func (m *Manager) RestoreSession(ctx context.Context) {
	token, err := m.store.Load(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		m.log.Warn("failed loading persisted token", zap.Error(err))
		return
	}

	user, err := m.fetchIdentity(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			// abandoned, not rejected
			m.log.Debug("session restore cancelled", zap.Error(err))
			return
		}

		m.log.Info("persisted token not accepted, continuing logged out", zap.Error(err))

		if m.keepTokenOnNetworkError && errors.Is(err, api.ErrNetwork) {
			m.reset()
			return
		}
		m.clear(ctx)
		return
	}

	m.commit(token, user)
	m.log.Info("session restored", zap.String("email", user.Email))
}

// Login exchanges credentials for a token and loads the identity behind
// it. Every failure is reported as ErrLoginFailed.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	tok, err := m.auth.IssueToken(ctx, email, password)
	if err != nil {
		m.log.Info("token issuance failed", zap.String("email", email), zap.Error(err))
		return ErrLoginFailed
	}

	if err := m.store.Save(ctx, tok.AccessToken); err != nil {
		m.log.Error("failed persisting token", zap.Error(err))
		m.clear(ctx)
		return ErrLoginFailed
	}

	user, err := m.fetchIdentity(ctx, tok.AccessToken)
	if err != nil {
		m.log.Info("identity lookup failed after login", zap.String("email", email), zap.Error(err))
		m.clear(ctx)
		return ErrLoginFailed
	}

	m.commit(tok.AccessToken, user)
	m.log.Info("logged in", zap.String("email", user.Email))
	return nil
}

// Register creates the account and then logs in with the same
// credentials. Any failure is reported as ErrRegistrationFailed.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	if err := m.auth.CreateUser(ctx, email, password); err != nil {
		m.log.Info("account creation failed", zap.String("email", email), zap.Error(err))
		return ErrRegistrationFailed
	}

	if err := m.Login(ctx, email, password); err != nil {
		return ErrRegistrationFailed
	}
	return nil
}

// Logout drops the session locally. It never fails and is idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx)
}

func (m *Manager) fetchIdentity(ctx context.Context, token string) (model.User, error) {
	user, err := m.auth.Me(ctx, api.Bearer(token))
	if err != nil {
		return model.User{}, err
	}
	if user.Email == "" {
		return model.User{}, errEmptyIdentity
	}
	return user, nil
}

var errEmptyIdentity = errors.New("server returned an empty identity")

func (m *Manager) commit(token string, user model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = model.Session{Token: token, User: &user}
}

func (m *Manager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = model.Session{}
}

func (m *Manager) clear(ctx context.Context) {
	m.reset()

	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("failed clearing persisted token", zap.Error(err))
	}
}
