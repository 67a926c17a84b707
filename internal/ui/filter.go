package ui

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ghaggin/cfptracker/internal/cfplist"
)

var errBadClosingDate = errors.New("Invalid closing date, ignoring it")

// filterPatches turns the submitted filter form into patches. Every field is
// present in the form, so each one is set, including to empty.
func filterPatches(q url.Values) ([]cfplist.Patch, error) {
	patches := []cfplist.Patch{
		cfplist.WithLocation(strings.TrimSpace(q.Get("location"))),
		cfplist.WithTargetAudience(strings.TrimSpace(q.Get("target_audience"))),
		cfplist.WithEventType(strings.TrimSpace(q.Get("event_type"))),
	}

	raw := strings.TrimSpace(q.Get("closing_date"))
	if raw == "" {
		return append(patches, cfplist.WithoutClosingDate()), nil
	}

	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return append(patches, cfplist.WithoutClosingDate()), errBadClosingDate
	}
	return append(patches, cfplist.WithClosingDate(d)), nil
}
