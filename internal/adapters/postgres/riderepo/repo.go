package riderepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/campus-carpool/rides-api/internal/adapters/postgres"
	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

const rideColumns = `
	id, zone, neighborhood, going, place, route, description, hub, slots,
	date, week_days, repeats_until, routine_id, done, created_at, updated_at`

// Repo is a Postgres implementation of riderepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, rd riderepo.Ride) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return insertRide(ctx, tx, rd)
	})
}

func (r *Repo) CreateBatch(ctx context.Context, rides []riderepo.Ride) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	// The transaction gives the all-or-nothing contract for free.
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, rd := range rides {
			if err := insertRide(ctx, tx, rd); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) Save(ctx context.Context, rd riderepo.Ride) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(rd.ID))
	if err != nil {
		return riderepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE rides
		SET zone = $2,
		    neighborhood = $3,
		    going = $4,
		    place = $5,
		    route = $6,
		    description = $7,
		    hub = $8,
		    slots = $9,
		    date = $10,
		    week_days = $11,
		    repeats_until = $12,
		    done = $13,
		    updated_at = $14
		WHERE id = $1
	`,
		rideUUID,
		rd.Zone,
		rd.Neighborhood,
		rd.Going,
		rd.Place,
		rd.Route,
		rd.Description,
		rd.Hub,
		rd.Slots,
		rd.Date.UTC(),
		weekDaysForDB(rd.WeekDays),
		timePtrUTC(rd.RepeatsUntil),
		rd.Done,
		rd.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return riderepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RideID) (riderepo.Ride, error) {
	if r.pool == nil {
		return riderepo.Ride{}, errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(id))
	if err != nil {
		return riderepo.Ride{}, riderepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT`+rideColumns+` FROM rides WHERE id = $1`, rideUUID)
	rd, err := scanRide(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return riderepo.Ride{}, riderepo.ErrNotFound
		}
		return riderepo.Ride{}, err
	}
	return rd, nil
}

func (r *Repo) ListByIDs(ctx context.Context, ids []domain.RideID) ([]riderepo.Ride, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	uuids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(string(id)); err == nil {
			uuids = append(uuids, u)
		}
	}
	if len(uuids) == 0 {
		return []riderepo.Ride{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE id = ANY($1)
		ORDER BY date ASC, id ASC
	`, uuids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (r *Repo) ListUpcoming(ctx context.Context, from time.Time) ([]riderepo.Ride, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE done = false AND date >= $1
		ORDER BY date ASC, id ASC
	`, from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (r *Repo) Delete(ctx context.Context, id domain.RideID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(id))
	if err != nil {
		return riderepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM rides WHERE id = $1`, rideUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return riderepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteRoutine(ctx context.Context, routineID domain.RideID) ([]domain.RideID, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	routineUUID, err := uuid.Parse(string(routineID))
	if err != nil {
		return nil, riderepo.ErrNotFound
	}

	var deleted []domain.RideID
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			DELETE FROM rides
			WHERE id = $1 OR routine_id = $1
			RETURNING id
		`, routineUUID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return err
			}
			deleted = append(deleted, domain.RideID(id.String()))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, riderepo.ErrNotFound
	}
	return deleted, nil
}

// --- helpers ---

func insertRide(ctx context.Context, tx pgx.Tx, rd riderepo.Ride) error {
	rideUUID, err := uuid.Parse(string(rd.ID))
	if err != nil {
		return fmt.Errorf("invalid ride id: %w", err)
	}
	var routineUUID *uuid.UUID
	if rd.RoutineID != nil {
		u, err := uuid.Parse(string(*rd.RoutineID))
		if err != nil {
			return fmt.Errorf("invalid routine id: %w", err)
		}
		routineUUID = &u
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rides (
			id, zone, neighborhood, going, place, route, description, hub,
			slots, date, week_days, repeats_until, routine_id, done,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		rideUUID,
		rd.Zone,
		rd.Neighborhood,
		rd.Going,
		rd.Place,
		rd.Route,
		rd.Description,
		rd.Hub,
		rd.Slots,
		rd.Date.UTC(),
		weekDaysForDB(rd.WeekDays),
		timePtrUTC(rd.RepeatsUntil),
		routineUUID,
		rd.Done,
		rd.CreatedAt.UTC(),
		rd.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return riderepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func scanRide(row pgx.Row) (riderepo.Ride, error) {
	var (
		id           uuid.UUID
		zone         string
		neighborhood string
		going        bool
		place        string
		route        string
		description  string
		hub          string
		slots        int
		date         time.Time
		weekDays     *string
		repeatsUntil *time.Time
		routineID    *uuid.UUID
		done         bool
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&id, &zone, &neighborhood, &going, &place, &route, &description, &hub,
		&slots, &date, &weekDays, &repeatsUntil, &routineID, &done,
		&createdAt, &updatedAt,
	); err != nil {
		return riderepo.Ride{}, err
	}

	wd, err := weekDaysFromDB(weekDays)
	if err != nil {
		return riderepo.Ride{}, err
	}
	out := riderepo.Ride{
		ID:           domain.RideID(id.String()),
		Zone:         zone,
		Neighborhood: neighborhood,
		Going:        going,
		Place:        place,
		Route:        route,
		Description:  description,
		Hub:          hub,
		Slots:        slots,
		Date:         date.UTC(),
		WeekDays:     wd,
		Done:         done,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}
	if repeatsUntil != nil {
		v := repeatsUntil.UTC()
		out.RepeatsUntil = &v
	}
	if routineID != nil {
		v := domain.RideID(routineID.String())
		out.RoutineID = &v
	}
	return out, nil
}

func collectRides(rows pgx.Rows) ([]riderepo.Ride, error) {
	out := make([]riderepo.Ride, 0)
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// weekDaysForDB stores the rule as a comma-separated ordinal list ("2,4"),
// NULL when the ride is a one-off.
func weekDaysForDB(wd []time.Weekday) *string {
	if len(wd) == 0 {
		return nil
	}
	parts := make([]string, 0, len(wd))
	for _, d := range wd {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	s := strings.Join(parts, ",")
	return &s
}

func weekDaysFromDB(s *string) ([]time.Weekday, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parts := strings.Split(*s, ",")
	out := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("corrupt week_days column %q: %w", *s, err)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

func timePtrUTC(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := p.UTC()
	return &v
}
