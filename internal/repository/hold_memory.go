package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// MemoryHoldRepo keeps reservation holds in process memory behind a mutex.
// It implements the same contract as HoldRepo — conditional insert with at
// most one active hold per slot tuple, lazy expiry on every access — and is
// used by tests and as the fallback when the service runs without a
// database. It is only safe for a single-instance deployment since the lock
// is process-local.
type MemoryHoldRepo struct {
	mu    sync.Mutex
	holds map[string]*model.ReservationHold
	clock booking.Clock
}

// NewMemoryHoldRepo returns an empty in-memory hold store.
func NewMemoryHoldRepo(clock booking.Clock) *MemoryHoldRepo {
	return &MemoryHoldRepo{holds: make(map[string]*model.ReservationHold), clock: clock}
}

// pruneLocked drops expired holds. Callers must hold mu.
func (r *MemoryHoldRepo) pruneLocked() int64 {
	now := r.clock.Now()
	var n int64
	for id, h := range r.holds {
		if !h.Active(now) {
			delete(r.holds, id)
			n++
		}
	}
	return n
}

// GetHold returns a live hold by id; expired and unknown ids are both
// ErrNotFound.
func (r *MemoryHoldRepo) GetHold(ctx context.Context, id string) (*model.ReservationHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	h, ok := r.holds[id]
	if !ok {
		return nil, fmt.Errorf("%w: hold %s", booking.ErrNotFound, id)
	}
	cp := *h
	return &cp, nil
}

// ListActive returns the live holds for the exact slot tuple.
func (r *MemoryHoldRepo) ListActive(ctx context.Context, providerID, serviceID string, date schedule.Date, t schedule.TimeOfDay) ([]model.ReservationHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	var out []model.ReservationHold
	for _, h := range r.holds {
		if h.ProviderID == providerID && h.ServiceID == serviceID && h.Date.Equal(date) && h.Time == t {
			out = append(out, *h)
		}
	}
	return out, nil
}

// InsertHold stores the hold unless an active hold already occupies the slot
// tuple. The check and the write happen under one lock acquisition, so two
// concurrent inserts for the identical tuple resolve to exactly one winner.
func (r *MemoryHoldRepo) InsertHold(ctx context.Context, h *model.ReservationHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	for _, existing := range r.holds {
		if existing.ProviderID == h.ProviderID && existing.ServiceID == h.ServiceID &&
			existing.Date.Equal(h.Date) && existing.Time == h.Time {
			return fmt.Errorf("%w: slot already held", booking.ErrConflict)
		}
	}
	cp := *h
	r.holds[h.ID] = &cp
	return nil
}

// DeleteHold removes a hold by id; unknown ids report ErrNotFound.
func (r *MemoryHoldRepo) DeleteHold(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holds[id]; !ok {
		return fmt.Errorf("%w: hold %s", booking.ErrNotFound, id)
	}
	delete(r.holds, id)
	return nil
}

// PruneExpired discards expired holds and reports how many were removed.
func (r *MemoryHoldRepo) PruneExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(), nil
}
