package rides

import (
	"context"
	"testing"
	"time"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

func offerAt(id domain.RideID, ts time.Time, going bool) riderepo.Ride {
	return riderepo.Ride{ID: id, Date: ts, Going: going}
}

func TestClassifyProposal(t *testing.T) {
	t.Parallel()

	day := func(h, m int) time.Time {
		return time.Date(2016, 10, 24, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		existing   []riderepo.Ride
		candidate  time.Time
		going      bool
		wantStatus ValidationStatus
		wantValid  bool
	}{
		{
			name:       "no offers at all",
			candidate:  day(16, 0),
			going:      true,
			wantStatus: ValidationValid,
			wantValid:  true,
		},
		{
			name:       "within threshold is duplicate",
			existing:   []riderepo.Ride{offerAt("a", day(16, 0), true)},
			candidate:  day(16, 20),
			going:      true,
			wantStatus: ValidationDuplicate,
		},
		{
			name:       "exactly at threshold is duplicate",
			existing:   []riderepo.Ride{offerAt("a", day(16, 0), true)},
			candidate:  day(17, 0),
			going:      true,
			wantStatus: ValidationDuplicate,
		},
		{
			name:       "same day beyond threshold is possible duplicate",
			existing:   []riderepo.Ride{offerAt("a", day(10, 0), true)},
			candidate:  day(16, 0),
			going:      true,
			wantStatus: ValidationPossibleDuplicate,
		},
		{
			name:       "opposite direction never conflicts",
			existing:   []riderepo.Ride{offerAt("a", day(16, 0), false)},
			candidate:  day(16, 0),
			going:      true,
			wantStatus: ValidationValid,
			wantValid:  true,
		},
		{
			name:       "different day is valid",
			existing:   []riderepo.Ride{offerAt("a", day(16, 0), true)},
			candidate:  day(16, 0).AddDate(0, 0, 3),
			going:      true,
			wantStatus: ValidationValid,
			wantValid:  true,
		},
		{
			name: "duplicate outranks possible duplicate",
			existing: []riderepo.Ride{
				offerAt("morning", day(8, 0), true),
				offerAt("afternoon", day(16, 0), true),
			},
			candidate:  day(16, 30),
			going:      true,
			wantStatus: ValidationDuplicate,
		},
		{
			name: "order does not change the outcome",
			existing: []riderepo.Ride{
				offerAt("afternoon", day(16, 0), true),
				offerAt("morning", day(8, 0), true),
			},
			candidate:  day(16, 30),
			going:      true,
			wantStatus: ValidationDuplicate,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := classifyProposal(tc.existing, tc.candidate, tc.going, DefaultDuplicateThreshold)
			if got.Status != tc.wantStatus {
				t.Fatalf("status=%s, want %s", got.Status, tc.wantStatus)
			}
			if got.Valid != tc.wantValid {
				t.Fatalf("valid=%v, want %v", got.Valid, tc.wantValid)
			}
			if got.Message == "" {
				t.Fatalf("message must always be set")
			}
		})
	}
}

func TestClassifyProposal_Messages(t *testing.T) {
	t.Parallel()

	base := time.Date(2016, 10, 24, 16, 0, 0, 0, time.UTC)
	existing := []riderepo.Ride{offerAt("a", base, true)}

	got := classifyProposal(existing, base, true, DefaultDuplicateThreshold)
	if got.Message != "The user has already offered a ride on the specified date." {
		t.Fatalf("duplicate message=%q", got.Message)
	}

	got = classifyProposal(existing, base.Add(5*time.Hour), true, DefaultDuplicateThreshold)
	if got.Message != "The user has already offered a ride too close to the specified date." {
		t.Fatalf("possible duplicate message=%q", got.Message)
	}

	got = classifyProposal(nil, base, true, DefaultDuplicateThreshold)
	if got.Message != "No conflicting rides were found close to the specified date." {
		t.Fatalf("valid message=%q", got.Message)
	}
}

func TestValidateDuplicate_UsesDriverOffersOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	ts := time.Date(2016, 10, 24, 16, 0, 0, 0, time.UTC)

	// Bob drives at 16:00; Alice merely rides along.
	env.seedRide(t, "bobs", ts, true, false)
	env.attach(t, "bobs", "bob", domain.StatusDriver)
	env.attach(t, "bobs", "alice", domain.StatusAccepted)

	got, err := env.svc.ValidateDuplicate(context.Background(), "alice", ts, true)
	if err != nil {
		t.Fatalf("ValidateDuplicate err=%v", err)
	}
	if got.Status != ValidationValid {
		t.Fatalf("status=%s, want valid (accepted memberships are not offers)", got.Status)
	}

	got, err = env.svc.ValidateDuplicate(context.Background(), "bob", ts.Add(30*time.Minute), true)
	if err != nil {
		t.Fatalf("ValidateDuplicate err=%v", err)
	}
	if got.Status != ValidationDuplicate {
		t.Fatalf("status=%s, want duplicate", got.Status)
	}
}

func TestService_SetDuplicateThreshold(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addUser(t, "alice")
	ts := time.Date(2016, 10, 24, 16, 0, 0, 0, time.UTC)
	env.seedRide(t, "r1", ts, true, false)
	env.attach(t, "r1", "alice", domain.StatusDriver)

	env.svc.SetDuplicateThreshold(10 * time.Minute)

	got, err := env.svc.ValidateDuplicate(context.Background(), "alice", ts.Add(30*time.Minute), true)
	if err != nil {
		t.Fatalf("ValidateDuplicate err=%v", err)
	}
	if got.Status != ValidationPossibleDuplicate {
		t.Fatalf("status=%s, want possible_duplicate under a 10m threshold", got.Status)
	}
}
