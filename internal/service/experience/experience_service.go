package experience

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veronika2030/supperspot/internal/domain"
	"github.com/Veronika2030/supperspot/internal/repository"
)

type ExperienceUseCase interface {
	List(ctx context.Context) ([]domain.Experience, error)
	GetByID(ctx context.Context, id string) (*domain.Experience, error)
	Create(ctx context.Context, hostID string, input CreateInput) (*domain.Experience, error)
	Close(ctx context.Context, id, hostID string) error
}

type Cache interface {
	GetExperiences(ctx context.Context) ([]domain.Experience, error)
	SetExperiences(ctx context.Context, experiences []domain.Experience) error
	InvalidateExperiences(ctx context.Context) error
}

type CreateInput struct {
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Capacity          int       `json:"capacity"`
	EventDate         time.Time `json:"event_date"`
	PricePerSeatCents int64     `json:"price_per_seat_cents"`
}

type ExperienceService struct {
	repo  repository.ExperienceRepository
	cache Cache
	now   func() time.Time
}

func NewExperienceService(repo repository.ExperienceRepository, cache Cache) *ExperienceService {
	return &ExperienceService{repo: repo, cache: cache, now: time.Now}
}

func (s *ExperienceService) List(ctx context.Context) ([]domain.Experience, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetExperiences(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	experiences, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetExperiences(ctx, experiences)
	}
	return experiences, nil
}

func (s *ExperienceService) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	return s.repo.GetByID(ctx, id)
}

// Create publishes a new experience. Capacity is fixed here for the lifetime
// of the experience; no update path can change it afterwards.
func (s *ExperienceService) Create(ctx context.Context, hostID string, input CreateInput) (*domain.Experience, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.NewValidationError("title", "is required")
	}
	if input.Capacity < 1 {
		return nil, domain.NewValidationError("capacity", "must be at least 1")
	}
	if !input.EventDate.After(s.now()) {
		return nil, domain.NewValidationError("event_date", "must be in the future")
	}

	experience := &domain.Experience{
		ID:                uuid.NewString(),
		HostID:            hostID,
		Title:             input.Title,
		Description:       input.Description,
		Capacity:          input.Capacity,
		RemainingCapacity: input.Capacity,
		Status:            domain.ExperienceStatusActive,
		EventDate:         input.EventDate,
		PricePerSeatCents: input.PricePerSeatCents,
	}
	if err := s.repo.Create(ctx, experience); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateExperiences(ctx)
	}
	return experience, nil
}

// Close stops new reservations for the experience. Only the owning host may
// close it.
func (s *ExperienceService) Close(ctx context.Context, id, hostID string) error {
	experience, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if experience.HostID != hostID {
		return domain.ErrForbidden
	}
	if experience.Status != domain.ExperienceStatusActive {
		return domain.ErrInvalidState
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.ExperienceStatusClosed); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateExperiences(ctx)
	}
	return nil
}

var _ ExperienceUseCase = (*ExperienceService)(nil)
