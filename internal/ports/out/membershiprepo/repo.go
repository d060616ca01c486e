package membershiprepo

import (
	"context"
	"time"

	"github.com/campus-carpool/rides-api/internal/domain"
)

// Membership is the (ride, user, status) association persisted by the
// repository. The (RideID, UserID) pair is unique.
type Membership struct {
	RideID domain.RideID
	UserID domain.UserID

	Status domain.MembershipStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted memberships.
//
// Uniqueness of the (ride, user) pair is enforced here: Create returns
// ErrAlreadyExists for a duplicate pair, and implementations must apply the
// write atomically so two concurrent requests cannot both succeed.
type Repository interface {
	Create(ctx context.Context, m Membership) error

	// Save updates the status of an existing membership.
	Save(ctx context.Context, m Membership) error

	Get(ctx context.Context, rideID domain.RideID, userID domain.UserID) (Membership, error)

	Delete(ctx context.Context, rideID domain.RideID, userID domain.UserID) error

	// DeleteByRide removes every membership on the given ride.
	DeleteByRide(ctx context.Context, rideID domain.RideID) error

	ListByRide(ctx context.Context, rideID domain.RideID) ([]Membership, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]Membership, error)
}
