package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ghaggin/cfptracker/internal/cfplist"
	"github.com/spf13/cobra"
)

var errNotifyFailed = errors.New("notification failed")

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List CFPs, optionally filtered",
	Long: `List calls for proposals. Filters left unset do not constrain the
listing.

Examples:
  cfptracker list
  cfptracker list --location Berlin --event-type Conference
  cfptracker list --closing-date 2026-12-01
  cfptracker list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patches, err := listPatches(cmd)
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		c.Session.RestoreSession(cmd.Context())

		if err := c.List.SetFilter(cmd.Context(), patches...); err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), c.List.Snapshot())
		}
		return renderList(cmd.OutOrStdout(), c.List.Snapshot())
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify <cfp-id>...",
	Short: "Send a Slack notification for the given CFPs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		c.Session.RestoreSession(cmd.Context())

		if channel, _ := cmd.Flags().GetString("channel"); channel != "" {
			c.List.SetChannel(channel)
		}
		for _, id := range ids {
			c.List.ToggleSelection(id)
		}

		if err := c.List.SendNotification(cmd.Context()); err != nil {
			return errNotifyFailed
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Notification sent for %d CFP(s).\n", len(ids))
		return nil
	},
}

// listPatches only patches the flags the user actually passed.
func listPatches(cmd *cobra.Command) ([]cfplist.Patch, error) {
	var patches []cfplist.Patch
	flags := cmd.Flags()

	if flags.Changed("location") {
		v, _ := flags.GetString("location")
		patches = append(patches, cfplist.WithLocation(v))
	}
	if flags.Changed("target-audience") {
		v, _ := flags.GetString("target-audience")
		patches = append(patches, cfplist.WithTargetAudience(v))
	}
	if flags.Changed("event-type") {
		v, _ := flags.GetString("event-type")
		patches = append(patches, cfplist.WithEventType(v))
	}
	if flags.Changed("closing-date") {
		v, _ := flags.GetString("closing-date")
		if v == "" {
			patches = append(patches, cfplist.WithoutClosingDate())
		} else {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				return nil, fmt.Errorf("--closing-date must be YYYY-MM-DD: %w", err)
			}
			patches = append(patches, cfplist.WithClosingDate(d))
		}
	}

	return patches, nil
}

func parseIDs(args []string) ([]int, error) {
	seen := map[int]bool{}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid CFP id %q", a)
		}
		// a repeated id would toggle itself back out of the selection
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(notifyCmd)

	listCmd.Flags().String("location", "", "Only CFPs at this location")
	listCmd.Flags().String("target-audience", "", "Only CFPs for this audience")
	listCmd.Flags().String("event-type", "", "Only CFPs of this event type")
	listCmd.Flags().String("closing-date", "", "Only CFPs closing on or before this date (YYYY-MM-DD)")
	listCmd.Flags().Bool("json", false, "Print the listing as JSON")

	notifyCmd.Flags().String("channel", "", "Slack channel id overriding the server default")
}
