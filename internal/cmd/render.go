package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ghaggin/cfptracker/internal/cfplist"
	"github.com/ghaggin/cfptracker/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	chipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	linkStyle  = lipgloss.NewStyle().Underline(true)
)

func renderList(w io.Writer, s cfplist.Snapshot) error {
	if s.State == cfplist.Failed {
		fmt.Fprintln(w, errStyle.Render("Failed to load CFPs."))
		return cfplist.ErrLoadFailed
	}

	if len(s.Records) == 0 {
		fmt.Fprintln(w, "No CFPs match these filters.")
		return nil
	}

	for _, r := range s.Records {
		fmt.Fprintf(w, "%s %s\n", idStyle.Render(fmt.Sprintf("#%d", r.ID)), titleStyle.Render(r.Title))
		if r.EventName != "" {
			fmt.Fprintf(w, "  %s\n", r.EventName)
		}

		chips := []string{
			"Event: " + shortDate(r.EventDate.Time),
			"Closing: " + shortDate(r.ClosingDate.Time),
		}
		for _, c := range []string{r.Location, r.TargetAudience, r.EventType} {
			if c != "" {
				chips = append(chips, c)
			}
		}
		fmt.Fprintf(w, "  %s\n", chipStyle.Render(strings.Join(chips, " | ")))

		if r.CFPURL != "" {
			fmt.Fprintf(w, "  %s\n", linkStyle.Render(r.CFPURL))
		}
	}
	return nil
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format("Jan 2, 2006")
}

func writeJSON(w io.Writer, s cfplist.Snapshot) error {
	if s.State == cfplist.Failed {
		return cfplist.ErrLoadFailed
	}

	records := s.Records
	if records == nil {
		records = []model.CFP{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
