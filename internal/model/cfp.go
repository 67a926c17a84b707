package model

import (
	"errors"
	"strings"
	"time"
)

var (
	errBadTimestamp = errors.New("unrecognized timestamp")
)

// layouts accepted for server timestamps; the API emits naive datetimes for
// some rows and offset-qualified ones for others.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return errBadTimestamp
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

type CFP struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	EventName      string    `json:"event_name"`
	EventDate      Timestamp `json:"event_date"`
	ClosingDate    Timestamp `json:"closing_date"`
	Location       string    `json:"location"`
	TargetAudience string    `json:"target_audience"`
	EventType      string    `json:"event_type"`
	EventURL       string    `json:"event_url"`
	CFPURL         string    `json:"cfp_url"`
	Source         string    `json:"source"`
}
