package rides

import (
	"errors"
	"testing"
	"time"

	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

func TestExpandRoutine(t *testing.T) {
	t.Parallel()

	until := func(y int, m time.Month, d int) *time.Time {
		ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	t.Run("one-off stays alone", func(t *testing.T) {
		t.Parallel()
		got, err := expandRoutine(riderepo.Ride{
			Date: time.Date(2016, 10, 20, 10, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("expandRoutine err=%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d rides, want 1", len(got))
		}
	})

	t.Run("origin kept even when its weekday is off-pattern", func(t *testing.T) {
		t.Parallel()
		// Monday start, Tuesday/Thursday pattern.
		got, err := expandRoutine(riderepo.Ride{
			Date:         time.Date(2016, 10, 24, 16, 40, 0, 0, time.UTC),
			WeekDays:     []time.Weekday{time.Tuesday, time.Thursday},
			RepeatsUntil: until(2016, 11, 1),
		})
		if err != nil {
			t.Fatalf("expandRoutine err=%v", err)
		}
		want := []time.Time{
			time.Date(2016, 10, 24, 16, 40, 0, 0, time.UTC),
			time.Date(2016, 10, 25, 16, 40, 0, 0, time.UTC),
			time.Date(2016, 10, 27, 16, 40, 0, 0, time.UTC),
			time.Date(2016, 11, 1, 16, 40, 0, 0, time.UTC),
		}
		if len(got) != len(want) {
			t.Fatalf("got %d rides, want %d", len(got), len(want))
		}
		for i := range want {
			if !got[i].Date.Equal(want[i]) {
				t.Fatalf("ride[%d].Date=%v, want %v", i, got[i].Date, want[i])
			}
		}
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		t.Parallel()
		// Until lands exactly on a matching Friday.
		got, err := expandRoutine(riderepo.Ride{
			Date:         time.Date(2016, 10, 24, 7, 30, 0, 0, time.UTC),
			WeekDays:     []time.Weekday{time.Friday},
			RepeatsUntil: until(2016, 10, 28),
		})
		if err != nil {
			t.Fatalf("expandRoutine err=%v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d rides, want 2", len(got))
		}
		if want := time.Date(2016, 10, 28, 7, 30, 0, 0, time.UTC); !got[1].Date.Equal(want) {
			t.Fatalf("ride[1].Date=%v, want %v", got[1].Date, want)
		}
	})

	t.Run("until before start yields origin only", func(t *testing.T) {
		t.Parallel()
		got, err := expandRoutine(riderepo.Ride{
			Date:         time.Date(2016, 10, 24, 9, 0, 0, 0, time.UTC),
			WeekDays:     []time.Weekday{time.Monday},
			RepeatsUntil: until(2016, 10, 1),
		})
		if err != nil {
			t.Fatalf("expandRoutine err=%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d rides, want 1", len(got))
		}
	})

	t.Run("siblings keep the origin time of day", func(t *testing.T) {
		t.Parallel()
		got, err := expandRoutine(riderepo.Ride{
			Date:         time.Date(2016, 10, 24, 23, 55, 0, 0, time.UTC),
			WeekDays:     []time.Weekday{time.Sunday, time.Saturday},
			RepeatsUntil: until(2016, 10, 30),
		})
		if err != nil {
			t.Fatalf("expandRoutine err=%v", err)
		}
		for _, r := range got[1:] {
			if r.Date.Hour() != 23 || r.Date.Minute() != 55 {
				t.Fatalf("sibling at %v lost the time of day", r.Date)
			}
		}
	})

	t.Run("invalid weekday ordinal", func(t *testing.T) {
		t.Parallel()
		_, err := expandRoutine(riderepo.Ride{
			Date:         time.Date(2016, 10, 24, 9, 0, 0, 0, time.UTC),
			WeekDays:     []time.Weekday{time.Weekday(7)},
			RepeatsUntil: until(2016, 11, 1),
		})
		ae := (*Error)(nil)
		if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
			t.Fatalf("err=%v, want 422 VALIDATION_ERROR", err)
		}
	})
}
