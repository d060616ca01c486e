package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/userrepo"
)

const userColumns = `
	id, name, profile, course, phone_number, email, car_owner, car_model,
	car_color, car_plate, location, face_id, profile_pic_url, created_at`

// Repo is a read-only Postgres view of the users table. Profile writes
// belong to the accounts system; this service only resolves profiles and
// session tokens.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	if r.pool == nil {
		return domain.User{}, errors.New("nil postgres pool")
	}
	userUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.User{}, userrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, userUUID)
	return scanUser(row)
}

func (r *Repo) GetByToken(ctx context.Context, token string) (domain.User, error) {
	if r.pool == nil {
		return domain.User{}, errors.New("nil postgres pool")
	}
	if token == "" {
		return domain.User{}, userrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE token = $1`, token)
	return scanUser(row)
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		id            uuid.UUID
		name          string
		profile       string
		course        string
		phoneNumber   string
		email         string
		carOwner      bool
		carModel      string
		carColor      string
		carPlate      string
		location      string
		faceID        *string
		profilePicURL *string
		createdAt     time.Time
	)
	if err := row.Scan(
		&id, &name, &profile, &course, &phoneNumber, &email, &carOwner,
		&carModel, &carColor, &carPlate, &location, &faceID, &profilePicURL,
		&createdAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, userrepo.ErrNotFound
		}
		return domain.User{}, err
	}
	return domain.User{
		ID:            domain.UserID(id.String()),
		Name:          name,
		Profile:       profile,
		Course:        course,
		PhoneNumber:   phoneNumber,
		Email:         email,
		CarOwner:      carOwner,
		CarModel:      carModel,
		CarColor:      carColor,
		CarPlate:      carPlate,
		Location:      location,
		FaceID:        faceID,
		ProfilePicURL: profilePicURL,
		CreatedAt:     createdAt.UTC(),
	}, nil
}
