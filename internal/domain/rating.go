package domain

import "time"

type Rating struct {
	ID        string
	BookingID string
	SubjectID string
	Score     int
	Comment   string
	CreatedAt time.Time
}

// AggregateRating is the running {count, sum} kept per experience so the
// average never requires a rescan of rating rows.
type AggregateRating struct {
	ExperienceID string
	Count        int64
	Sum          int64
	UpdatedAt    time.Time
}

func (a *AggregateRating) Average() float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.Sum) / float64(a.Count)
}
