package cfplist

import (
	"net/url"
	"time"

	"github.com/ghaggin/cfptracker/internal/model"
)

// Patch changes one field of the filter criteria and leaves the rest alone.
type Patch func(*model.FilterCriteria)

func WithLocation(v string) Patch {
	return func(f *model.FilterCriteria) { f.Location = v }
}

func WithTargetAudience(v string) Patch {
	return func(f *model.FilterCriteria) { f.TargetAudience = v }
}

func WithEventType(v string) Patch {
	return func(f *model.FilterCriteria) { f.EventType = v }
}

func WithClosingDate(t time.Time) Patch {
	return func(f *model.FilterCriteria) { f.ClosingDate = &t }
}

func WithoutClosingDate() Patch {
	return func(f *model.FilterCriteria) { f.ClosingDate = nil }
}

// queryParams renders the criteria as listing query parameters. Empty fields are
// omitted, which the server reads as no constraint.
func queryParams(f model.FilterCriteria) url.Values {
	q := url.Values{}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.TargetAudience != "" {
		q.Set("target_audience", f.TargetAudience)
	}
	if f.EventType != "" {
		q.Set("event_type", f.EventType)
	}
	if f.ClosingDate != nil {
		q.Set("closing_date", f.ClosingDate.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	}
	return q
}
