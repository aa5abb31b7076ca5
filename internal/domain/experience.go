package domain

import "time"

type ExperienceStatus string

const (
	ExperienceStatusActive    ExperienceStatus = "ACTIVE"
	ExperienceStatusClosed    ExperienceStatus = "CLOSED"
	ExperienceStatusCancelled ExperienceStatus = "CANCELLED"
)

type Experience struct {
	ID                string
	HostID            string
	Title             string
	Description       string
	Capacity          int
	RemainingCapacity int
	Status            ExperienceStatus
	EventDate         time.Time
	PricePerSeatCents int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Bookable reports whether new reservations may be accepted.
func (e *Experience) Bookable(now time.Time) bool {
	return e.Status == ExperienceStatusActive && e.EventDate.After(now)
}
