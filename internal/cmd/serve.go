package cmd

import (
	"github.com/ghaggin/cfptracker/internal/middleware"
	"github.com/ghaggin/cfptracker/internal/session"
	"github.com/ghaggin/cfptracker/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser interface",
	Long: `Serve the CFP tracker in the browser on localhost. The stored token is
revalidated on startup; an invalid token silently logs you out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			deps(zap.NewDevelopment),
			fx.Provide(
				middleware.NewSessionManager,
				ui.New,
			),
			fx.Invoke(
				session.RegisterHooks,
				ui.RegisterHooks,
			),
		)
		if err := app.Err(); err != nil {
			return err
		}

		app.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
