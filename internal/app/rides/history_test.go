package rides

import (
	"context"
	"testing"
	"time"

	"github.com/campus-carpool/rides-api/internal/domain"
)

func TestService_GetHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addUser(t, "driver")
	env.addUser(t, "rider")
	env.addUser(t, "other")

	// done rides in the rider's history, seeded out of order
	env.seedRide(t, "late", time.Date(2016, 10, 20, 8, 0, 0, 0, time.UTC), true, true)
	env.seedRide(t, "early", time.Date(2016, 10, 10, 8, 0, 0, 0, time.UTC), true, true)
	// excluded: not done, pending, rejected
	env.seedRide(t, "open", time.Date(2016, 10, 15, 8, 0, 0, 0, time.UTC), true, false)
	env.seedRide(t, "asked", time.Date(2016, 10, 16, 8, 0, 0, 0, time.UTC), true, true)
	env.seedRide(t, "denied", time.Date(2016, 10, 17, 8, 0, 0, 0, time.UTC), true, true)

	for _, id := range []domain.RideID{"late", "early", "open", "asked", "denied"} {
		env.attach(t, id, "driver", domain.StatusDriver)
	}
	env.attach(t, "late", "rider", domain.StatusAccepted)
	env.attach(t, "early", "rider", domain.StatusAccepted)
	env.attach(t, "open", "rider", domain.StatusAccepted)
	env.attach(t, "asked", "rider", domain.StatusPending)
	env.attach(t, "denied", "rider", domain.StatusRejected)
	env.attach(t, "late", "other", domain.StatusAccepted)

	got, err := env.svc.GetHistory(context.Background(), "rider")
	if err != nil {
		t.Fatalf("GetHistory err=%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("history has %d rides, want 2", len(got))
	}
	if got[0].ID != "early" || got[1].ID != "late" {
		t.Fatalf("history order=[%s %s], want [early late]", got[0].ID, got[1].ID)
	}

	// Enrichment: driver record plus accepted riders only.
	if got[1].Driver.ID != "driver" {
		t.Fatalf("driver=%+v", got[1].Driver)
	}
	if len(got[1].Riders) != 2 || got[1].Riders[0].ID != "other" || got[1].Riders[1].ID != "rider" {
		t.Fatalf("riders=%+v, want [other rider]", got[1].Riders)
	}
	if got[0].Feedback != nil {
		t.Fatalf("feedback=%+v, want nil", got[0].Feedback)
	}
}

func TestService_GetHistory_IncludesFeedback(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addUser(t, "driver")
	env.addUser(t, "rider")
	env.seedRide(t, "r1", time.Date(2016, 10, 20, 8, 0, 0, 0, time.UTC), true, true)
	env.attach(t, "r1", "driver", domain.StatusDriver)
	env.attach(t, "r1", "rider", domain.StatusAccepted)

	if err := env.svc.SaveFeedback(context.Background(), "r1", "rider", "smooth ride"); err != nil {
		t.Fatalf("SaveFeedback err=%v", err)
	}

	got, err := env.svc.GetHistory(context.Background(), "driver")
	if err != nil {
		t.Fatalf("GetHistory err=%v", err)
	}
	if len(got) != 1 || got[0].Feedback == nil || got[0].Feedback.Comment != "smooth ride" {
		t.Fatalf("history=%+v, want feedback attached", got)
	}
}

func TestService_GetHistory_EmptyIsNotAnError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addUser(t, "loner")

	got, err := env.svc.GetHistory(context.Background(), "loner")
	if err != nil {
		t.Fatalf("GetHistory err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("history=%+v, want empty", got)
	}
}

func TestService_GetHistoryCounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addUser(t, "driver")
	env.addUser(t, "rider")

	env.seedRide(t, "offered-1", time.Date(2016, 10, 10, 8, 0, 0, 0, time.UTC), true, true)
	env.seedRide(t, "offered-2", time.Date(2016, 10, 11, 8, 0, 0, 0, time.UTC), true, true)
	env.seedRide(t, "offered-open", time.Date(2016, 10, 12, 8, 0, 0, 0, time.UTC), true, false)
	env.seedRide(t, "taken", time.Date(2016, 10, 13, 8, 0, 0, 0, time.UTC), true, true)

	env.attach(t, "offered-1", "driver", domain.StatusDriver)
	env.attach(t, "offered-2", "driver", domain.StatusDriver)
	env.attach(t, "offered-open", "driver", domain.StatusDriver)
	env.attach(t, "taken", "rider", domain.StatusDriver)
	env.attach(t, "taken", "driver", domain.StatusAccepted)

	got, err := env.svc.GetHistoryCounts(context.Background(), "driver")
	if err != nil {
		t.Fatalf("GetHistoryCounts err=%v", err)
	}
	if got.OfferedCount != 2 || got.TakenCount != 1 {
		t.Fatalf("counts=%+v, want {OfferedCount:2 TakenCount:1}", got)
	}
}

func TestService_GetHistoryCounts_SkipsDanglingMemberships(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addUser(t, "driver")
	env.seedRide(t, "kept", time.Date(2016, 10, 10, 8, 0, 0, 0, time.UTC), true, true)
	env.attach(t, "kept", "driver", domain.StatusDriver)
	// Membership pointing at a ride that no longer exists.
	env.attach(t, "gone", "driver", domain.StatusDriver)

	got, err := env.svc.GetHistoryCounts(context.Background(), "driver")
	if err != nil {
		t.Fatalf("GetHistoryCounts err=%v", err)
	}
	if got.OfferedCount != 1 || got.TakenCount != 0 {
		t.Fatalf("counts=%+v, want {OfferedCount:1 TakenCount:0}", got)
	}
}
