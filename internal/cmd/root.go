package cmd

import (
	"github.com/ghaggin/cfptracker/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	ephemeral  bool
)

var rootCmd = &cobra.Command{
	Use:   "cfptracker",
	Short: "Browse and share calls for proposals",
	Long: `cfptracker talks to a CFP tracker API: list and filter calls for
proposals, log in, and send Slack notifications for selected CFPs.

Run 'cfptracker serve' for the browser interface.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", string(config.DefaultPath), "path to the yaml config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the session token in memory only")
}
