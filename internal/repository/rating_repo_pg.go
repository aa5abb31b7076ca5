package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veronika2030/supperspot/internal/domain"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	// AddScore folds one score into the experience's running aggregate. The
	// upsert updates the row in place, so concurrent submissions serialise on
	// the aggregate row and the update stays O(1).
	AddScore(ctx context.Context, experienceID string, score int) (*domain.AggregateRating, error)
	GetAggregate(ctx context.Context, experienceID string) (*domain.AggregateRating, error)
}

type PGRatingRepository struct {
	db *pgxpool.Pool
}

func NewRatingRepository(db *pgxpool.Pool) RatingRepository {
	return &PGRatingRepository{db: db}
}

func (r *PGRatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO ratings (id, booking_id, subject_id, score, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		rating.ID, rating.BookingID, rating.SubjectID, rating.Score, rating.Comment,
	).Scan(&rating.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyRated
		}
		return err
	}
	return nil
}

func (r *PGRatingRepository) AddScore(ctx context.Context, experienceID string, score int) (*domain.AggregateRating, error) {
	agg := domain.AggregateRating{ExperienceID: experienceID}
	err := r.db.QueryRow(ctx, `
		INSERT INTO aggregate_ratings (experience_id, rating_count, rating_sum, updated_at)
		VALUES ($1, 1, $2, now())
		ON CONFLICT (experience_id) DO UPDATE
		SET rating_count = aggregate_ratings.rating_count + 1,
		    rating_sum   = aggregate_ratings.rating_sum + EXCLUDED.rating_sum,
		    updated_at   = now()
		RETURNING rating_count, rating_sum, updated_at`,
		experienceID, score,
	).Scan(&agg.Count, &agg.Sum, &agg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *PGRatingRepository) GetAggregate(ctx context.Context, experienceID string) (*domain.AggregateRating, error) {
	agg := domain.AggregateRating{ExperienceID: experienceID}
	err := r.db.QueryRow(ctx,
		`SELECT rating_count, rating_sum, updated_at FROM aggregate_ratings WHERE experience_id=$1`,
		experienceID,
	).Scan(&agg.Count, &agg.Sum, &agg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// No ratings yet reads as a zero aggregate, not an error.
		return &agg, nil
	}
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

var _ RatingRepository = (*PGRatingRepository)(nil)
