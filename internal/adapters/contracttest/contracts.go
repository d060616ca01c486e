package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campus-carpool/rides-api/internal/domain"
	membershiprepoport "github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
	riderepoport "github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

type CleanupFunc = func()

type RideRepoFactory func(t *testing.T) (riderepoport.Repository, CleanupFunc)
type MembershipRepoFactory func(t *testing.T) (membershiprepoport.Repository, CleanupFunc)

// RunRideRepo exercises the behaviors every ride repository must share:
// id uniqueness, all-or-nothing batches, routine deletion and the upcoming
// filter.
func RunRideRepo(t *testing.T, newRepo RideRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Date(2016, 10, 1, 12, 0, 0, 0, time.UTC)
	aID := domain.RideID(uuid.NewString())
	if err := repo.Create(ctx, riderepoport.Ride{
		ID:        aID,
		Zone:      "North",
		Going:     true,
		Slots:     3,
		Date:      now.AddDate(0, 0, 10),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := repo.GetByID(ctx, aID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	// ID uniqueness.
	if err := repo.Create(ctx, riderepoport.Ride{
		ID:        aID,
		Zone:      "South",
		Slots:     1,
		Date:      now.AddDate(0, 0, 11),
		CreatedAt: now,
		UpdatedAt: now,
	}); !errors.Is(err, riderepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create err=%v, want ErrAlreadyExists", err)
	}

	// A batch containing an existing id must persist nothing.
	fresh := domain.RideID(uuid.NewString())
	err := repo.CreateBatch(ctx, []riderepoport.Ride{
		{ID: fresh, Zone: "North", Slots: 2, Date: now.AddDate(0, 0, 12), CreatedAt: now, UpdatedAt: now},
		{ID: aID, Zone: "North", Slots: 2, Date: now.AddDate(0, 0, 13), CreatedAt: now, UpdatedAt: now},
	})
	if !errors.Is(err, riderepoport.ErrAlreadyExists) {
		t.Fatalf("conflicting CreateBatch err=%v, want ErrAlreadyExists", err)
	}
	if _, err := repo.GetByID(ctx, fresh); !errors.Is(err, riderepoport.ErrNotFound) {
		t.Fatalf("batch must be all-or-nothing, GetByID err=%v", err)
	}

	// Routine deletion removes origin and siblings and reports their ids.
	originID := domain.RideID(uuid.NewString())
	siblingID := domain.RideID(uuid.NewString())
	origin := originID
	until := now.AddDate(0, 1, 0)
	if err := repo.CreateBatch(ctx, []riderepoport.Ride{
		{ID: originID, Zone: "North", Slots: 2, Date: now.AddDate(0, 0, 20), WeekDays: []time.Weekday{time.Monday}, RepeatsUntil: &until, CreatedAt: now, UpdatedAt: now},
		{ID: siblingID, Zone: "North", Slots: 2, Date: now.AddDate(0, 0, 27), WeekDays: []time.Weekday{time.Monday}, RepeatsUntil: &until, RoutineID: &origin, CreatedAt: now, UpdatedAt: now},
	}); err != nil {
		t.Fatalf("CreateBatch routine: %v", err)
	}
	deleted, err := repo.DeleteRoutine(ctx, originID)
	if err != nil {
		t.Fatalf("DeleteRoutine: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("DeleteRoutine removed %d rides, want 2", len(deleted))
	}
	for _, id := range []domain.RideID{originID, siblingID} {
		if _, err := repo.GetByID(ctx, id); !errors.Is(err, riderepoport.ErrNotFound) {
			t.Fatalf("ride %s should be gone, err=%v", id, err)
		}
	}
	if _, err := repo.DeleteRoutine(ctx, originID); !errors.Is(err, riderepoport.ErrNotFound) {
		t.Fatalf("second DeleteRoutine err=%v, want ErrNotFound", err)
	}

	// ListUpcoming excludes done rides and past departures, ascending by date.
	pastID := domain.RideID(uuid.NewString())
	doneID := domain.RideID(uuid.NewString())
	if err := repo.Create(ctx, riderepoport.Ride{ID: pastID, Zone: "North", Slots: 1, Date: now.AddDate(0, 0, -5), CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create past: %v", err)
	}
	if err := repo.Create(ctx, riderepoport.Ride{ID: doneID, Zone: "North", Slots: 1, Date: now.AddDate(0, 0, 15), Done: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create done: %v", err)
	}
	up, err := repo.ListUpcoming(ctx, now)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	for i, r := range up {
		if r.ID == pastID || r.ID == doneID {
			t.Fatalf("ListUpcoming leaked %s", r.ID)
		}
		if i > 0 && up[i-1].Date.After(r.Date) {
			t.Fatalf("ListUpcoming out of order at %d", i)
		}
	}

	// ListByIDs skips unknown ids instead of failing.
	got, err := repo.ListByIDs(ctx, []domain.RideID{aID, domain.RideID(uuid.NewString())})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != aID {
		t.Fatalf("ListByIDs=%v, want just %s", got, aID)
	}

	// Save round-trips the done flag and the recurrence rule.
	r, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	r.Done = true
	if err := repo.Save(ctx, r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r, err = repo.GetByID(ctx, aID)
	if err != nil || !r.Done {
		t.Fatalf("saved ride=%+v err=%v, want done", r, err)
	}
	if err := repo.Save(ctx, riderepoport.Ride{ID: domain.RideID(uuid.NewString())}); !errors.Is(err, riderepoport.ErrNotFound) {
		t.Fatalf("Save unknown err=%v, want ErrNotFound", err)
	}
}

// RunMembershipRepo exercises the (ride, user) uniqueness and the listing
// behaviors the join workflow depends on.
func RunMembershipRepo(t *testing.T, newRepo MembershipRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Date(2016, 10, 1, 12, 0, 0, 0, time.UTC)
	rideA := domain.RideID(uuid.NewString())
	rideB := domain.RideID(uuid.NewString())
	alice := domain.UserID(uuid.NewString())
	bob := domain.UserID(uuid.NewString())

	if err := repo.Create(ctx, membershiprepoport.Membership{RideID: rideA, UserID: alice, Status: domain.StatusDriver, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create driver: %v", err)
	}
	if err := repo.Create(ctx, membershiprepoport.Membership{RideID: rideA, UserID: bob, Status: domain.StatusPending, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create pending: %v", err)
	}
	if err := repo.Create(ctx, membershiprepoport.Membership{RideID: rideB, UserID: alice, Status: domain.StatusAccepted, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create accepted: %v", err)
	}

	// One membership per (ride, user).
	err := repo.Create(ctx, membershiprepoport.Membership{RideID: rideA, UserID: bob, Status: domain.StatusAccepted, CreatedAt: now, UpdatedAt: now})
	if !errors.Is(err, membershiprepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create err=%v, want ErrAlreadyExists", err)
	}

	// Save transitions status in place.
	m, err := repo.Get(ctx, rideA, bob)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	m.Status = domain.StatusAccepted
	m.UpdatedAt = now.Add(time.Hour)
	if err := repo.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	m, err = repo.Get(ctx, rideA, bob)
	if err != nil || m.Status != domain.StatusAccepted {
		t.Fatalf("membership=%+v err=%v, want accepted", m, err)
	}
	if err := repo.Save(ctx, membershiprepoport.Membership{RideID: rideB, UserID: bob, Status: domain.StatusPending}); !errors.Is(err, membershiprepoport.ErrNotFound) {
		t.Fatalf("Save unknown err=%v, want ErrNotFound", err)
	}

	// Listing per ride and per user.
	byRide, err := repo.ListByRide(ctx, rideA)
	if err != nil || len(byRide) != 2 {
		t.Fatalf("ListByRide=%v err=%v, want 2", byRide, err)
	}
	byUser, err := repo.ListByUser(ctx, alice)
	if err != nil || len(byUser) != 2 {
		t.Fatalf("ListByUser=%v err=%v, want 2", byUser, err)
	}

	// Single and bulk deletes.
	if err := repo.Delete(ctx, rideA, bob); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, rideA, bob); !errors.Is(err, membershiprepoport.ErrNotFound) {
		t.Fatalf("Get after Delete err=%v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, rideA, bob); !errors.Is(err, membershiprepoport.ErrNotFound) {
		t.Fatalf("second Delete err=%v, want ErrNotFound", err)
	}
	if err := repo.DeleteByRide(ctx, rideA); err != nil {
		t.Fatalf("DeleteByRide: %v", err)
	}
	byRide, err = repo.ListByRide(ctx, rideA)
	if err != nil || len(byRide) != 0 {
		t.Fatalf("ListByRide after DeleteByRide=%v err=%v, want empty", byRide, err)
	}
}
