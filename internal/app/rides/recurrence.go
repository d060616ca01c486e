package rides

import (
	"fmt"
	"time"

	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

// expandRoutine produces the ordered, not-yet-persisted rides belonging to
// one routine. The first element always uses the template's date verbatim,
// even when its weekday is not in the week-day set; it becomes the routine's
// origin. Scanning starts the day after and runs through RepeatsUntil
// inclusive, emitting one ride per matching weekday at the template's
// time of day. Identifiers and routine links are assigned by the caller.
func expandRoutine(t riderepo.Ride) ([]riderepo.Ride, error) {
	out := []riderepo.Ride{t}
	if len(t.WeekDays) == 0 {
		return out, nil
	}

	members := make(map[time.Weekday]bool, len(t.WeekDays))
	for _, wd := range t.WeekDays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "invalid week_days",
				Details: map[string]any{"week_days": fmt.Sprintf("weekday ordinal out of range: %d", wd)},
			}
		}
		members[wd] = true
	}

	// RepeatsUntil on or before the start date yields the origin only.
	start := t.Date
	until := *t.RepeatsUntil
	lastDay := time.Date(until.Year(), until.Month(), until.Day(), 0, 0, 0, 0, start.Location())

	for d := dayOf(start).AddDate(0, 0, 1); !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		if !members[d.Weekday()] {
			continue
		}
		sibling := t
		sibling.Date = time.Date(d.Year(), d.Month(), d.Day(),
			start.Hour(), start.Minute(), start.Second(), 0, start.Location())
		out = append(out, sibling)
	}
	return out, nil
}

func dayOf(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}
