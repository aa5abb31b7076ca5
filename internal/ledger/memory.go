package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/Veronika2030/supperspot/internal/domain"
)

// entry guards one experience's counters. The buffered channel is the
// per-key exclusive lock; acquisition is bounded so contention surfaces as
// ErrBusy instead of a deadlock.
type entry struct {
	sem       chan struct{}
	capacity  int
	remaining int
}

// Memory is an in-process Ledger keyed by experience id. Operations on
// different experiences never contend with each other.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxWait time.Duration
}

func NewMemory(maxWait time.Duration) *Memory {
	if maxWait <= 0 {
		maxWait = time.Second
	}
	return &Memory{
		entries: make(map[string]*entry),
		maxWait: maxWait,
	}
}

// Register seeds the ledger with an experience's counters. Re-registering an
// existing id overwrites its counters.
func (m *Memory) Register(experienceID string, capacity, remaining int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sem := make(chan struct{}, 1)
	sem <- struct{}{}
	m.entries[experienceID] = &entry{sem: sem, capacity: capacity, remaining: remaining}
}

// Remaining reports the current remaining capacity. It takes the entry's
// lock like every mutation does, so it is safe to call while reservations
// are in flight.
func (m *Memory) Remaining(experienceID string) (int, error) {
	e, err := m.lookup(experienceID)
	if err != nil {
		return 0, err
	}
	if err := m.acquire(context.Background(), e); err != nil {
		return 0, err
	}
	defer func() { e.sem <- struct{}{} }()
	return e.remaining, nil
}

func (m *Memory) lookup(experienceID string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[experienceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *Memory) acquire(ctx context.Context, e *entry) error {
	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case <-e.sem:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return domain.ErrBusy
	}
}

func (m *Memory) TryReserve(ctx context.Context, experienceID string, people int) (*Handle, error) {
	e, err := m.lookup(experienceID)
	if err != nil {
		return nil, err
	}
	if err := m.acquire(ctx, e); err != nil {
		return nil, err
	}
	defer func() { e.sem <- struct{}{} }()

	if people > e.remaining {
		return nil, &domain.InsufficientCapacityError{
			ExperienceID: experienceID,
			Requested:    people,
			Remaining:    e.remaining,
		}
	}

	before := e.remaining
	e.remaining -= people
	return &Handle{
		ExperienceID:    experienceID,
		People:          people,
		RemainingBefore: before,
		RemainingAfter:  e.remaining,
	}, nil
}

func (m *Memory) Commit(_ context.Context, h *Handle) error {
	if h.released {
		return domain.ErrInvalidState
	}
	h.committed = true
	return nil
}

func (m *Memory) Release(ctx context.Context, h *Handle) error {
	if h.released {
		return nil
	}
	if err := m.ReleaseSeats(ctx, h.ExperienceID, h.People); err != nil {
		return err
	}
	h.released = true
	return nil
}

func (m *Memory) ReleaseSeats(ctx context.Context, experienceID string, people int) error {
	e, err := m.lookup(experienceID)
	if err != nil {
		return err
	}
	if err := m.acquire(ctx, e); err != nil {
		return err
	}
	defer func() { e.sem <- struct{}{} }()

	e.remaining += people
	if e.remaining > e.capacity {
		e.remaining = e.capacity
	}
	return nil
}

var _ Ledger = (*Memory)(nil)
