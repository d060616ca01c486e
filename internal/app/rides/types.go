package rides

import (
	"time"
)

// CreateRideInput carries a new ride offer. WeekDays and RepeatsUntil are
// either both set (recurring series) or both unset (one-off ride).
type CreateRideInput struct {
	Zone         string
	Neighborhood string
	Going        bool
	Place        string
	Route        string
	Description  string
	Hub          string
	Slots        int

	Date time.Time

	WeekDays     []time.Weekday
	RepeatsUntil *time.Time
}

// ValidationStatus classifies a proposed ride against the driver's existing
// offers.
type ValidationStatus string

const (
	ValidationValid             ValidationStatus = "valid"
	ValidationPossibleDuplicate ValidationStatus = "possible_duplicate"
	ValidationDuplicate         ValidationStatus = "duplicate"
)

// ValidationResult is the outcome of a duplicate check. A possible_duplicate
// is a successful classification, not an error; only duplicate blocks
// creation.
type ValidationResult struct {
	Valid   bool
	Status  ValidationStatus
	Message string
}
