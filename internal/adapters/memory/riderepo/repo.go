package riderepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

// Repo is an in-memory implementation of riderepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.RideID]riderepo.Ride
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.RideID]riderepo.Ride),
	}
}

func (r *Repo) Create(ctx context.Context, rd riderepo.Ride) error {
	_ = ctx
	if rd.ID == "" {
		return riderepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rd.ID]; ok {
		return riderepo.ErrAlreadyExists
	}
	r.byID[rd.ID] = cloneRide(rd)
	return nil
}

func (r *Repo) CreateBatch(ctx context.Context, rides []riderepo.Ride) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	// Validate the whole batch before writing anything.
	seen := make(map[domain.RideID]bool, len(rides))
	for _, rd := range rides {
		if rd.ID == "" || seen[rd.ID] {
			return riderepo.ErrAlreadyExists
		}
		if _, ok := r.byID[rd.ID]; ok {
			return riderepo.ErrAlreadyExists
		}
		seen[rd.ID] = true
	}
	for _, rd := range rides {
		r.byID[rd.ID] = cloneRide(rd)
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, rd riderepo.Ride) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rd.ID]; !ok {
		return riderepo.ErrNotFound
	}
	r.byID[rd.ID] = cloneRide(rd)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RideID) (riderepo.Ride, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rd, ok := r.byID[id]
	if !ok {
		return riderepo.Ride{}, riderepo.ErrNotFound
	}
	return cloneRide(rd), nil
}

func (r *Repo) ListByIDs(ctx context.Context, ids []domain.RideID) ([]riderepo.Ride, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]riderepo.Ride, 0, len(ids))
	for _, id := range ids {
		if rd, ok := r.byID[id]; ok {
			out = append(out, cloneRide(rd))
		}
	}
	sortRides(out)
	return out, nil
}

func (r *Repo) ListUpcoming(ctx context.Context, from time.Time) ([]riderepo.Ride, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]riderepo.Ride, 0)
	for _, rd := range r.byID {
		if rd.Done || rd.Date.Before(from) {
			continue
		}
		out = append(out, cloneRide(rd))
	}
	sortRides(out)
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.RideID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return riderepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Repo) DeleteRoutine(ctx context.Context, routineID domain.RideID) ([]domain.RideID, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := make([]domain.RideID, 0)
	for id, rd := range r.byID {
		if id == routineID || (rd.RoutineID != nil && *rd.RoutineID == routineID) {
			deleted = append(deleted, id)
		}
	}
	if len(deleted) == 0 {
		return nil, riderepo.ErrNotFound
	}
	for _, id := range deleted {
		delete(r.byID, id)
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i] < deleted[j] })
	return deleted, nil
}

func cloneRide(rd riderepo.Ride) riderepo.Ride {
	cp := rd
	if rd.WeekDays != nil {
		cp.WeekDays = append([]time.Weekday(nil), rd.WeekDays...)
	}
	if rd.RepeatsUntil != nil {
		v := *rd.RepeatsUntil
		cp.RepeatsUntil = &v
	}
	if rd.RoutineID != nil {
		v := *rd.RoutineID
		cp.RoutineID = &v
	}
	return cp
}

func sortRides(rs []riderepo.Ride) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Date.Equal(rs[j].Date) {
			return rs[i].Date.Before(rs[j].Date)
		}
		return rs[i].ID < rs[j].ID
	})
}
