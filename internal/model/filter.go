package model

import "time"

// FilterCriteria narrows the CFP listing. Empty strings and a nil
// ClosingDate mean no constraint on that field.
type FilterCriteria struct {
	Location       string
	TargetAudience string
	EventType      string
	ClosingDate    *time.Time
}

func (f FilterCriteria) IsZero() bool {
	return f.Location == "" && f.TargetAudience == "" && f.EventType == "" && f.ClosingDate == nil
}
