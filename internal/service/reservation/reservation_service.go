package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Veronika2030/supperspot/internal/auth"
	"github.com/Veronika2030/supperspot/internal/domain"
	"github.com/Veronika2030/supperspot/internal/kafka"
	"github.com/Veronika2030/supperspot/internal/ledger"
	"github.com/Veronika2030/supperspot/internal/repository"
)

const maxCodeRetries = 3

type ReservationUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor auth.Identity) (*domain.Booking, error)
	CheckIn(ctx context.Context, bookingID, token string) (int, error)
}

type Cache interface {
	AcquireReservationLock(ctx context.Context, experienceID string, ttl time.Duration) (bool, error)
	ReleaseReservationLock(ctx context.Context, experienceID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Codec interface {
	BookingCode(bookingID string) (string, error)
	CheckInTokens(n int) ([]string, error)
}

type ReserveInput struct {
	ExperienceID  string `json:"experience_id"`
	SubjectID     string `json:"-"`
	People        int    `json:"people"`
	TermsAccepted bool   `json:"terms_accepted"`
	PaymentMethod string `json:"payment_method"`
	ContactEmail  string `json:"contact_email"`
}

type ReservationService struct {
	bookings           repository.BookingRepository
	experiences        repository.ExperienceRepository
	ledger             ledger.Ledger
	codec              Codec
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	now                func() time.Time
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

// WithClock overrides time.Now, used by tests to pin the event-date checks.
func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

func NewReservationService(
	bookings repository.BookingRepository,
	experiences repository.ExperienceRepository,
	capacityLedger ledger.Ledger,
	codec Codec,
	cache Cache,
	producer Producer,
	bookingTopic string,
	lockTTL time.Duration,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		bookings:     bookings,
		experiences:  experiences,
		ledger:       capacityLedger,
		codec:        codec,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		lockTTL:      lockTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve validates the request, reserves capacity through the ledger,
// generates the attendance artifacts and persists the booking as Confirmed.
// Any failure after a successful TryReserve releases the held seats: a
// reservation never partially commits and never leaks capacity.
func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	if err := validateReserveInput(input); err != nil {
		return nil, err
	}

	experience, err := s.experiences.GetByID(ctx, input.ExperienceID)
	if err != nil {
		return nil, err
	}
	if !experience.Bookable(s.now()) {
		return nil, domain.ErrInvalidState
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireReservationLock(ctx, experience.ID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrBusy
		}
		defer func() {
			_ = s.cache.ReleaseReservationLock(ctx, experience.ID)
		}()
	}

	handle, err := s.ledger.TryReserve(ctx, experience.ID, input.People)
	if err != nil {
		return nil, err
	}

	booking, err := s.buildBooking(input)
	if err != nil {
		_ = s.ledger.Release(ctx, handle)
		return nil, err
	}

	if err := s.persistWithCodeRetry(ctx, booking); err != nil {
		_ = s.ledger.Release(ctx, handle)
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	if err := s.ledger.Commit(ctx, handle); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, kafka.EventReservationConfirmed, booking); err != nil {
		log.Printf("WARNING: failed to publish %s for booking %s: %v", kafka.EventReservationConfirmed, booking.ID, err)
	}
	return booking, nil
}

func (s *ReservationService) buildBooking(input ReserveInput) (*domain.Booking, error) {
	id := uuid.NewString()

	code, err := s.codec.BookingCode(id)
	if err != nil {
		return nil, err
	}
	tokens, err := s.codec.CheckInTokens(input.People)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:            id,
		ExperienceID:  input.ExperienceID,
		SubjectID:     input.SubjectID,
		People:        input.People,
		Status:        domain.BookingStatusConfirmed,
		BookingCode:   code,
		PaymentMethod: input.PaymentMethod,
		ContactEmail:  input.ContactEmail,
	}
	for _, token := range tokens {
		booking.CheckInTokens = append(booking.CheckInTokens, domain.CheckInToken{Token: token, BookingID: id})
	}
	return booking, nil
}

// persistWithCodeRetry regenerates the booking code's random suffix when the
// repository reports a per-experience collision.
func (s *ReservationService) persistWithCodeRetry(ctx context.Context, booking *domain.Booking) error {
	var err error
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		err = s.bookings.CreateConfirmed(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrCodeConflict) {
			return err
		}
		code, codeErr := s.codec.BookingCode(booking.ID)
		if codeErr != nil {
			return codeErr
		}
		booking.BookingCode = code
	}
	return err
}

// Cancel releases the booking's seats back to the experience. It is
// idempotent: cancelling an already-cancelled booking succeeds without a
// second release. A fully checked-in booking cannot be cancelled.
func (s *ReservationService) Cancel(ctx context.Context, bookingID string, actor auth.Identity) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	experience, err := s.experiences.GetByID(ctx, current.ExperienceID)
	if err != nil {
		return nil, err
	}
	if actor.SubjectID != current.SubjectID && actor.SubjectID != experience.HostID {
		return nil, domain.ErrForbidden
	}

	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}
	if !current.Cancellable() {
		return nil, domain.ErrInvalidState
	}
	if !experience.EventDate.After(s.now()) {
		return nil, domain.ErrInvalidState
	}

	// The repository flips the status and credits the seats in one
	// transaction: either both happen or the booking stays cancellable.
	updated, err := s.bookings.CancelAndRelease(ctx, bookingID,
		domain.BookingStatusPending, domain.BookingStatusConfirmed)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			// Lost a race: a concurrent cancel or check-in got there first.
			latest, readErr := s.bookings.GetByID(ctx, bookingID)
			if readErr == nil && latest.Status == domain.BookingStatusCancelled {
				return latest, nil
			}
			return nil, domain.ErrInvalidState
		}
		return nil, err
	}

	if err := s.publish(ctx, kafka.EventReservationCancelled, updated); err != nil {
		log.Printf("WARNING: failed to publish %s for booking %s: %v", kafka.EventReservationCancelled, updated.ID, err)
	}
	return updated, nil
}

// CheckIn redeems one check-in token. The count of attendees still expected
// is returned; zero means the booking just became fully checked in.
func (s *ReservationService) CheckIn(ctx context.Context, bookingID, token string) (int, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	switch current.Status {
	case domain.BookingStatusConfirmed, domain.BookingStatusCheckedIn:
	default:
		return 0, domain.ErrInvalidState
	}

	remaining, err := s.bookings.RedeemToken(ctx, bookingID, token)
	if err != nil {
		return 0, err
	}

	if remaining == 0 {
		current.Status = domain.BookingStatusCheckedIn
		if err := s.publish(ctx, kafka.EventAttendeeCheckedIn, current); err != nil {
			log.Printf("WARNING: failed to publish %s for booking %s: %v", kafka.EventAttendeeCheckedIn, current.ID, err)
		}
	}
	return remaining, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		ExperienceID: booking.ExperienceID,
		SubjectID:    booking.SubjectID,
		People:       booking.People,
		Status:       string(booking.Status),
		BookingCode:  booking.BookingCode,
		ContactEmail: booking.ContactEmail,
		OccurredAt:   s.now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

func validateReserveInput(input ReserveInput) error {
	if input.ExperienceID == "" {
		return domain.NewValidationError("experience_id", "is required")
	}
	if input.SubjectID == "" {
		return domain.NewValidationError("subject_id", "is required")
	}
	if input.People < 1 {
		return domain.NewValidationError("people", "must be at least 1")
	}
	if !input.TermsAccepted {
		return domain.NewValidationError("terms_accepted", "terms must be accepted")
	}
	if input.ContactEmail == "" {
		return domain.NewValidationError("contact_email", "is required")
	}
	return nil
}

var _ ReservationUseCase = (*ReservationService)(nil)
