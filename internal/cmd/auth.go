package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long: `Log in with email and password. The issued token is stored locally
and used by later commands until 'cfptracker logout'.

Examples:
  cfptracker login --email user@example.com --password mypass`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialFlags(cmd)
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		if err := c.Session.Login(cmd.Context(), email, password); err != nil {
			return err
		}

		u, _ := c.Session.User()
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Long: `Create a new account. After registration you are logged in with the
same credentials.

Examples:
  cfptracker register --email user@example.com --password mypass`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialFlags(cmd)
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		if err := c.Session.Register(cmd.Context(), email, password); err != nil {
			return err
		}

		u, _ := c.Session.User()
		fmt.Fprintln(cmd.OutOrStdout(), "Registration successful!")
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		c.Session.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		c.Session.RestoreSession(cmd.Context())

		out := cmd.OutOrStdout()
		u, ok := c.Session.User()
		if !ok {
			fmt.Fprintln(out, "Not logged in.")
			fmt.Fprintln(out, "Use 'cfptracker login' to authenticate.")
			return nil
		}

		fmt.Fprintf(out, "User ID:  %d\n", u.ID)
		fmt.Fprintf(out, "Email:    %s\n", u.Email)
		if u.SlackUserID != nil {
			fmt.Fprintf(out, "Slack:    %s\n", *u.SlackUserID)
		}
		if u.SlackChannelID != nil {
			fmt.Fprintf(out, "Channel:  %s\n", *u.SlackChannelID)
		}
		return nil
	},
}

func credentialFlags(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if email == "" {
		return "", "", fmt.Errorf("--email is required")
	}
	if password == "" {
		return "", "", fmt.Errorf("--password is required")
	}
	return email, password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("email", "", "Email address (required)")
		c.Flags().String("password", "", "Password (required)")
	}
}
