package feedbackrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/feedbackrepo"
)

// Repo is a Postgres implementation of feedbackrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Upsert(ctx context.Context, f domain.Feedback) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(f.RideID))
	if err != nil {
		return err
	}
	userUUID, err := uuid.Parse(string(f.UserID))
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO ride_feedback (ride_id, user_id, comment, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ride_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			comment = EXCLUDED.comment,
			created_at = EXCLUDED.created_at
	`, rideUUID, userUUID, f.Comment, f.CreatedAt.UTC())
	return err
}

func (r *Repo) GetByRide(ctx context.Context, rideID domain.RideID) (domain.Feedback, error) {
	if r.pool == nil {
		return domain.Feedback{}, errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(rideID))
	if err != nil {
		return domain.Feedback{}, feedbackrepo.ErrNotFound
	}
	var (
		userID    uuid.UUID
		comment   string
		createdAt time.Time
	)
	err = r.pool.QueryRow(ctx, `
		SELECT user_id, comment, created_at
		FROM ride_feedback
		WHERE ride_id = $1
	`, rideUUID).Scan(&userID, &comment, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feedback{}, feedbackrepo.ErrNotFound
		}
		return domain.Feedback{}, err
	}
	return domain.Feedback{
		RideID:    rideID,
		UserID:    domain.UserID(userID.String()),
		Comment:   comment,
		CreatedAt: createdAt.UTC(),
	}, nil
}

func (r *Repo) DeleteByRide(ctx context.Context, rideID domain.RideID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(rideID))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM ride_feedback WHERE ride_id = $1`, rideUUID)
	return err
}
