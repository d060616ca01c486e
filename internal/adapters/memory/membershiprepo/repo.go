package membershiprepo

import (
	"context"
	"sort"
	"sync"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
)

type pairKey struct {
	ride domain.RideID
	user domain.UserID
}

// Repo is an in-memory implementation of membershiprepo.Repository.
// It is safe for concurrent use; the single mutex gives Create the atomic
// check-then-insert the port contract requires.
type Repo struct {
	mu     sync.RWMutex
	byPair map[pairKey]membershiprepo.Membership
}

func NewRepo() *Repo {
	return &Repo{
		byPair: make(map[pairKey]membershiprepo.Membership),
	}
}

func (r *Repo) Create(ctx context.Context, m membershiprepo.Membership) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	k := pairKey{ride: m.RideID, user: m.UserID}
	if _, ok := r.byPair[k]; ok {
		return membershiprepo.ErrAlreadyExists
	}
	r.byPair[k] = m
	return nil
}

func (r *Repo) Save(ctx context.Context, m membershiprepo.Membership) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	k := pairKey{ride: m.RideID, user: m.UserID}
	if _, ok := r.byPair[k]; !ok {
		return membershiprepo.ErrNotFound
	}
	r.byPair[k] = m
	return nil
}

func (r *Repo) Get(ctx context.Context, rideID domain.RideID, userID domain.UserID) (membershiprepo.Membership, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byPair[pairKey{ride: rideID, user: userID}]
	if !ok {
		return membershiprepo.Membership{}, membershiprepo.ErrNotFound
	}
	return m, nil
}

func (r *Repo) Delete(ctx context.Context, rideID domain.RideID, userID domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	k := pairKey{ride: rideID, user: userID}
	if _, ok := r.byPair[k]; !ok {
		return membershiprepo.ErrNotFound
	}
	delete(r.byPair, k)
	return nil
}

func (r *Repo) DeleteByRide(ctx context.Context, rideID domain.RideID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.byPair {
		if k.ride == rideID {
			delete(r.byPair, k)
		}
	}
	return nil
}

func (r *Repo) ListByRide(ctx context.Context, rideID domain.RideID) ([]membershiprepo.Membership, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]membershiprepo.Membership, 0)
	for k, m := range r.byPair {
		if k.ride == rideID {
			out = append(out, m)
		}
	}
	sortMemberships(out)
	return out, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]membershiprepo.Membership, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]membershiprepo.Membership, 0)
	for k, m := range r.byPair {
		if k.user == userID {
			out = append(out, m)
		}
	}
	sortMemberships(out)
	return out, nil
}

func sortMemberships(ms []membershiprepo.Membership) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].RideID != ms[j].RideID {
			return ms[i].RideID < ms[j].RideID
		}
		return ms[i].UserID < ms[j].UserID
	})
}
