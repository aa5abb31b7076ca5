package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veronika2030/supperspot/internal/domain"
)

// Postgres serialises capacity mutations on the experience row itself: the
// conditional UPDATE checks and decrements in one statement, so two
// concurrent reservations can never both take the last seats.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) TryReserve(ctx context.Context, experienceID string, people int) (*Handle, error) {
	var remaining int
	err := p.db.QueryRow(ctx, `
		UPDATE experiences
		SET remaining_capacity = remaining_capacity - $2, updated_at = now()
		WHERE id = $1 AND remaining_capacity >= $2
		RETURNING remaining_capacity`,
		experienceID, people,
	).Scan(&remaining)
	if err == nil {
		return &Handle{
			ExperienceID:    experienceID,
			People:          people,
			RemainingBefore: remaining + people,
			RemainingAfter:  remaining,
		}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// The guard rejected us; read back the fresh remaining for the caller.
	var current int
	err = p.db.QueryRow(ctx,
		`SELECT remaining_capacity FROM experiences WHERE id = $1`,
		experienceID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return nil, &domain.InsufficientCapacityError{
		ExperienceID: experienceID,
		Requested:    people,
		Remaining:    current,
	}
}

// Commit is a marker only: the decrement above is already durable.
func (p *Postgres) Commit(_ context.Context, h *Handle) error {
	if h.released {
		return domain.ErrInvalidState
	}
	h.committed = true
	return nil
}

func (p *Postgres) Release(ctx context.Context, h *Handle) error {
	if h.released {
		return nil
	}
	if err := p.ReleaseSeats(ctx, h.ExperienceID, h.People); err != nil {
		return err
	}
	h.released = true
	return nil
}

func (p *Postgres) ReleaseSeats(ctx context.Context, experienceID string, people int) error {
	cmd, err := p.db.Exec(ctx, `
		UPDATE experiences
		SET remaining_capacity = LEAST(capacity, remaining_capacity + $2), updated_at = now()
		WHERE id = $1`,
		experienceID, people,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ Ledger = (*Postgres)(nil)
