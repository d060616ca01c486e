package feedbackrepo

import (
	"context"
	"sync"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/feedbackrepo"
)

// Repo is an in-memory implementation of feedbackrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	byRide map[domain.RideID]domain.Feedback
}

func NewRepo() *Repo {
	return &Repo{
		byRide: make(map[domain.RideID]domain.Feedback),
	}
}

func (r *Repo) Upsert(ctx context.Context, f domain.Feedback) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRide[f.RideID] = f
	return nil
}

func (r *Repo) GetByRide(ctx context.Context, rideID domain.RideID) (domain.Feedback, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byRide[rideID]
	if !ok {
		return domain.Feedback{}, feedbackrepo.ErrNotFound
	}
	return f, nil
}

func (r *Repo) DeleteByRide(ctx context.Context, rideID domain.RideID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byRide, rideID)
	return nil
}
