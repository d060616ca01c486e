package riderepo

import (
	"context"
	"time"

	"github.com/campus-carpool/rides-api/internal/domain"
)

// Ride is the persistence shape used by the ride repository.
// It is not an HTTP DTO.
type Ride struct {
	ID domain.RideID

	Zone         string
	Neighborhood string
	Going        bool
	Place        string
	Route        string
	Description  string
	Hub          string
	Slots        int

	Date time.Time

	// WeekDays/RepeatsUntil are both set on every member of a recurring
	// series and both unset on one-off rides.
	WeekDays     []time.Weekday
	RepeatsUntil *time.Time
	// RoutineID is nil on the origin ride of a series and on one-off rides;
	// siblings carry the origin's ID.
	RoutineID *domain.RideID

	Done bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted rides.
//
// Result ordering expectations:
// - List methods return rides ordered by Date ascending, ties broken by ID,
//   to keep behavior deterministic.
type Repository interface {
	Create(ctx context.Context, r Ride) error

	// CreateBatch persists all rides or none of them. A recurring series is
	// committed through this method so that a mid-batch failure leaves no
	// partial routine behind.
	CreateBatch(ctx context.Context, rides []Ride) error

	Save(ctx context.Context, r Ride) error

	GetByID(ctx context.Context, id domain.RideID) (Ride, error)

	// ListByIDs returns the rides for the given IDs. Unknown IDs are
	// skipped, not errors.
	ListByIDs(ctx context.Context, ids []domain.RideID) ([]Ride, error)

	// ListUpcoming returns rides that are not done and depart at or after
	// the given instant.
	ListUpcoming(ctx context.Context, from time.Time) ([]Ride, error)

	Delete(ctx context.Context, id domain.RideID) error

	// DeleteRoutine removes the origin ride and every sibling pointing at
	// it, returning the IDs that were deleted.
	DeleteRoutine(ctx context.Context, routineID domain.RideID) ([]domain.RideID, error)
}
