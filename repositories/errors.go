package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup or targeted update matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicatePeriod is returned when a KPI insert collides with the unique
	// (subject_id, period) index.
	ErrDuplicatePeriod = errors.New("kpi record already exists for this subject and period")
)
