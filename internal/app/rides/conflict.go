package rides

import (
	"time"

	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

const (
	msgDuplicate         = "The user has already offered a ride on the specified date."
	msgPossibleDuplicate = "The user has already offered a ride too close to the specified date."
	msgValid             = "No conflicting rides were found close to the specified date."
)

// classifyProposal compares a proposed departure against the driver's
// existing offers. Rides in the opposite direction never conflict. A match
// within threshold is a duplicate; otherwise a match on the same calendar
// date is a possible duplicate. Duplicate outranks possible_duplicate when
// different rides trip both conditions.
func classifyProposal(existing []riderepo.Ride, candidate time.Time, going bool, threshold time.Duration) ValidationResult {
	sameDay := false
	for _, r := range existing {
		if r.Going != going {
			continue
		}
		diff := r.Date.Sub(candidate)
		if diff < 0 {
			diff = -diff
		}
		if diff <= threshold {
			return ValidationResult{Valid: false, Status: ValidationDuplicate, Message: msgDuplicate}
		}
		if sameCalendarDay(r.Date, candidate) {
			sameDay = true
		}
	}
	if sameDay {
		return ValidationResult{Valid: false, Status: ValidationPossibleDuplicate, Message: msgPossibleDuplicate}
	}
	return ValidationResult{Valid: true, Status: ValidationValid, Message: msgValid}
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
