package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCheckedIn BookingStatus = "CHECKED_IN"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID            string
	ExperienceID  string
	SubjectID     string
	People        int
	Status        BookingStatus
	BookingCode   string
	CheckInTokens []CheckInToken
	PaymentMethod string
	ContactEmail  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CheckInToken is a single-use secret redeemed at the door for one attendee.
type CheckInToken struct {
	Token     string
	BookingID string
	UsedAt    *time.Time
}

// RemainingCheckIns counts tokens not yet redeemed.
func (b *Booking) RemainingCheckIns() int {
	remaining := 0
	for _, t := range b.CheckInTokens {
		if t.UsedAt == nil {
			remaining++
		}
	}
	return remaining
}

// Cancellable reports whether the booking may still be cancelled.
func (b *Booking) Cancellable() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
