package userrepo

import (
	"context"
	"sync"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use. Put exists for seeding in tests and the
// memory storage backend; the port itself stays read-only.
type Repo struct {
	mu        sync.RWMutex
	byID      map[domain.UserID]domain.User
	idByToken map[string]domain.UserID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.UserID]domain.User),
		idByToken: make(map[string]domain.UserID),
	}
}

// Put stores a user and optionally binds a session token to it.
func (r *Repo) Put(u domain.User, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = cloneUser(u)
	if token != "" {
		r.idByToken[token] = u.ID
	}
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, userrepo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Repo) GetByToken(ctx context.Context, token string) (domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByToken[token]
	if !ok {
		return domain.User{}, userrepo.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func cloneUser(u domain.User) domain.User {
	cp := u
	if u.FaceID != nil {
		v := *u.FaceID
		cp.FaceID = &v
	}
	if u.ProfilePicURL != nil {
		v := *u.ProfilePicURL
		cp.ProfilePicURL = &v
	}
	return cp
}
