package feedbackrepo

import (
	"context"

	"github.com/campus-carpool/rides-api/internal/domain"
)

// Repository persists rider feedback attached to rides.
type Repository interface {
	// Upsert writes the feedback for (ride, user) using last-write-wins
	// semantics.
	Upsert(ctx context.Context, f domain.Feedback) error

	// GetByRide returns the feedback attached to a ride, if any.
	GetByRide(ctx context.Context, rideID domain.RideID) (domain.Feedback, error)

	// DeleteByRide removes any feedback attached to the given ride.
	DeleteByRide(ctx context.Context, rideID domain.RideID) error
}
