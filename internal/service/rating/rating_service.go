package rating

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Veronika2030/supperspot/internal/domain"
	"github.com/Veronika2030/supperspot/internal/kafka"
	"github.com/Veronika2030/supperspot/internal/repository"
)

type RatingUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.AggregateRating, error)
	AverageFor(ctx context.Context, experienceID string) (*domain.AggregateRating, error)
}

type Cache interface {
	GetAggregate(ctx context.Context, experienceID string) (*domain.AggregateRating, error)
	SetAggregate(ctx context.Context, agg *domain.AggregateRating) error
	InvalidateAggregate(ctx context.Context, experienceID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SubmitInput struct {
	BookingID string `json:"-"`
	SubjectID string `json:"-"`
	Score     int    `json:"score"`
	Comment   string `json:"comment"`
}

type RatingService struct {
	ratings  repository.RatingRepository
	bookings repository.BookingRepository
	cache    Cache
	producer Producer
	topic    string
}

func NewRatingService(
	ratings repository.RatingRepository,
	bookings repository.BookingRepository,
	cache Cache,
	producer Producer,
	topic string,
) *RatingService {
	return &RatingService{
		ratings:  ratings,
		bookings: bookings,
		cache:    cache,
		producer: producer,
		topic:    topic,
	}
}

// Submit records one rating for a fully checked-in booking and folds its
// score into the experience's running aggregate. One rating per
// (booking, user): duplicates surface as ErrAlreadyRated.
func (s *RatingService) Submit(ctx context.Context, input SubmitInput) (*domain.AggregateRating, error) {
	if input.Score < 1 || input.Score > 5 {
		return nil, domain.NewValidationError("score", "must be between 1 and 5")
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusCheckedIn {
		return nil, domain.ErrNotEligible
	}
	if booking.SubjectID != input.SubjectID {
		return nil, domain.ErrNotEligible
	}

	rating := &domain.Rating{
		ID:        uuid.NewString(),
		BookingID: input.BookingID,
		SubjectID: input.SubjectID,
		Score:     input.Score,
		Comment:   input.Comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}

	agg, err := s.ratings.AddScore(ctx, booking.ExperienceID, input.Score)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// A stale cached aggregate is worse than a cache miss.
		if err := s.cache.SetAggregate(ctx, agg); err != nil {
			_ = s.cache.InvalidateAggregate(ctx, agg.ExperienceID)
		}
	}
	if s.producer != nil && s.topic != "" {
		event := kafka.BookingEvent{
			Type:         kafka.EventRatingSubmitted,
			BookingID:    booking.ID,
			ExperienceID: booking.ExperienceID,
			SubjectID:    input.SubjectID,
			People:       booking.People,
			Status:       string(booking.Status),
			BookingCode:  booking.BookingCode,
			ContactEmail: booking.ContactEmail,
			OccurredAt:   time.Now(),
		}
		if err := s.producer.Publish(ctx, s.topic, booking.ID, event); err != nil {
			log.Printf("WARNING: failed to publish %s for booking %s: %v", kafka.EventRatingSubmitted, booking.ID, err)
		}
	}
	return agg, nil
}

// AverageFor reads the aggregate without locking; a momentarily stale cached
// value is acceptable on this path.
func (s *RatingService) AverageFor(ctx context.Context, experienceID string) (*domain.AggregateRating, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAggregate(ctx, experienceID); err == nil && cached != nil {
			return cached, nil
		}
	}

	agg, err := s.ratings.GetAggregate(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetAggregate(ctx, agg)
	}
	return agg, nil
}

var _ RatingUseCase = (*RatingService)(nil)
