package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veronika2030/supperspot/internal/domain"
)

type ExperienceRepository interface {
	Create(ctx context.Context, experience *domain.Experience) error
	List(ctx context.Context) ([]domain.Experience, error)
	GetByID(ctx context.Context, id string) (*domain.Experience, error)
	UpdateStatus(ctx context.Context, id string, status domain.ExperienceStatus) error
	CloseFinished(ctx context.Context, deadline time.Time) (int64, error)
}

type PGExperienceRepository struct {
	db *pgxpool.Pool
}

func NewExperienceRepository(db *pgxpool.Pool) ExperienceRepository {
	return &PGExperienceRepository{db: db}
}

const experienceColumns = `id, host_id, title, description, capacity, remaining_capacity, status, event_date, price_per_seat_cents, created_at, updated_at`

func scanExperience(row pgx.Row) (*domain.Experience, error) {
	var e domain.Experience
	err := row.Scan(&e.ID, &e.HostID, &e.Title, &e.Description, &e.Capacity, &e.RemainingCapacity,
		&e.Status, &e.EventDate, &e.PricePerSeatCents, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PGExperienceRepository) Create(ctx context.Context, experience *domain.Experience) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO experiences (id, host_id, title, description, capacity, remaining_capacity, status, event_date, price_per_seat_cents)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		experience.ID, experience.HostID, experience.Title, experience.Description,
		experience.Capacity, experience.Status, experience.EventDate, experience.PricePerSeatCents,
	).Scan(&experience.CreatedAt, &experience.UpdatedAt)
}

func (r *PGExperienceRepository) List(ctx context.Context) ([]domain.Experience, error) {
	rows, err := r.db.Query(ctx, `SELECT `+experienceColumns+` FROM experiences ORDER BY event_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiences := make([]domain.Experience, 0)
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, *e)
	}
	return experiences, rows.Err()
}

func (r *PGExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	return scanExperience(r.db.QueryRow(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE id=$1`, id))
}

func (r *PGExperienceRepository) UpdateStatus(ctx context.Context, id string, status domain.ExperienceStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE experiences SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CloseFinished marks active experiences whose event date has passed as
// closed, so late reservations fail at validation instead of at the ledger.
func (r *PGExperienceRepository) CloseFinished(ctx context.Context, deadline time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE experiences SET status=$1, updated_at=now() WHERE status=$2 AND event_date <= $3`,
		domain.ExperienceStatusClosed, domain.ExperienceStatusActive, deadline)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ ExperienceRepository = (*PGExperienceRepository)(nil)
