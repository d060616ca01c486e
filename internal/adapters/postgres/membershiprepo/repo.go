package membershiprepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/campus-carpool/rides-api/internal/adapters/postgres"
	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
)

// Repo is a Postgres implementation of membershiprepo.Repository. The
// (ride_id, user_id) primary key enforces the one-membership-per-pair rule;
// a lost race surfaces as ErrAlreadyExists.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, m membershiprepo.Membership) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, userUUID, err := pairUUIDs(m.RideID, m.UserID)
	if err != nil {
		return err
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid membership status %q", m.Status)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO ride_memberships (ride_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rideUUID, userUUID, string(m.Status), m.CreatedAt.UTC(), m.UpdatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return membershiprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, m membershiprepo.Membership) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, userUUID, err := pairUUIDs(m.RideID, m.UserID)
	if err != nil {
		return membershiprepo.ErrNotFound
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid membership status %q", m.Status)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE ride_memberships
		SET status = $3, updated_at = $4
		WHERE ride_id = $1 AND user_id = $2
	`, rideUUID, userUUID, string(m.Status), m.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return membershiprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, rideID domain.RideID, userID domain.UserID) (membershiprepo.Membership, error) {
	if r.pool == nil {
		return membershiprepo.Membership{}, errors.New("nil postgres pool")
	}
	rideUUID, userUUID, err := pairUUIDs(rideID, userID)
	if err != nil {
		return membershiprepo.Membership{}, membershiprepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT ride_id, user_id, status, created_at, updated_at
		FROM ride_memberships
		WHERE ride_id = $1 AND user_id = $2
	`, rideUUID, userUUID)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membershiprepo.Membership{}, membershiprepo.ErrNotFound
		}
		return membershiprepo.Membership{}, err
	}
	return m, nil
}

func (r *Repo) Delete(ctx context.Context, rideID domain.RideID, userID domain.UserID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, userUUID, err := pairUUIDs(rideID, userID)
	if err != nil {
		return membershiprepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM ride_memberships WHERE ride_id = $1 AND user_id = $2
	`, rideUUID, userUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return membershiprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteByRide(ctx context.Context, rideID domain.RideID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(rideID))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM ride_memberships WHERE ride_id = $1`, rideUUID)
	return err
}

func (r *Repo) ListByRide(ctx context.Context, rideID domain.RideID) ([]membershiprepo.Membership, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(rideID))
	if err != nil {
		return []membershiprepo.Membership{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT ride_id, user_id, status, created_at, updated_at
		FROM ride_memberships
		WHERE ride_id = $1
		ORDER BY ride_id ASC, user_id ASC
	`, rideUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]membershiprepo.Membership, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	userUUID, err := uuid.Parse(string(userID))
	if err != nil {
		return []membershiprepo.Membership{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT ride_id, user_id, status, created_at, updated_at
		FROM ride_memberships
		WHERE user_id = $1
		ORDER BY ride_id ASC, user_id ASC
	`, userUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

// --- helpers ---

func pairUUIDs(rideID domain.RideID, userID domain.UserID) (uuid.UUID, uuid.UUID, error) {
	rideUUID, err := uuid.Parse(string(rideID))
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, fmt.Errorf("invalid ride id: %w", err)
	}
	userUUID, err := uuid.Parse(string(userID))
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, fmt.Errorf("invalid user id: %w", err)
	}
	return rideUUID, userUUID, nil
}

func scanMembership(row pgx.Row) (membershiprepo.Membership, error) {
	var (
		rideID    uuid.UUID
		userID    uuid.UUID
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&rideID, &userID, &status, &createdAt, &updatedAt); err != nil {
		return membershiprepo.Membership{}, err
	}
	return membershiprepo.Membership{
		RideID:    domain.RideID(rideID.String()),
		UserID:    domain.UserID(userID.String()),
		Status:    domain.MembershipStatus(status),
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}

func collectMemberships(rows pgx.Rows) ([]membershiprepo.Membership, error) {
	out := make([]membershiprepo.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
