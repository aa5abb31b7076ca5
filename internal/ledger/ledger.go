package ledger

import (
	"context"
)

// Handle records one successful capacity reservation until the owning
// booking is durably written (Commit) or compensated (Release). The pre/post
// values are kept for audit.
type Handle struct {
	ExperienceID    string
	People          int
	RemainingBefore int
	RemainingAfter  int

	committed bool
	released  bool
}

// Committed reports whether the reservation was finalised.
func (h *Handle) Committed() bool { return h.committed }

// Released reports whether the reservation was compensated.
func (h *Handle) Released() bool { return h.released }

// Ledger is the single gate through which an experience's remaining capacity
// is mutated. TryReserve is atomic with respect to concurrent callers on the
// same experience id: remaining capacity can never go negative.
type Ledger interface {
	// TryReserve checks people against the remaining capacity and decrements
	// it in one step. On shortfall it returns *domain.InsufficientCapacityError
	// carrying the current remaining count.
	TryReserve(ctx context.Context, experienceID string, people int) (*Handle, error)
	// Commit marks the handle final once the booking record is durable.
	Commit(ctx context.Context, h *Handle) error
	// Release compensates an uncommitted reservation, clamped so remaining
	// capacity never exceeds the published capacity. Releasing the same
	// handle twice is a no-op. Cancellation does not go through the ledger:
	// the booking repository credits the seats inside the same transaction
	// that flips the booking's status.
	Release(ctx context.Context, h *Handle) error
}
