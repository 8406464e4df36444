package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evlats/bookable/internal/model"
)

// HoldTTL is how long a reservation hold stays live after creation. It gives
// the customer a fixed window to complete payment before the slot is offered
// to anyone else.
const HoldTTL = 10 * time.Minute

// HoldManager creates and releases reservation holds. A hold passes through
// exactly one of three terminal outcomes: committed (consumed by a booking),
// released (explicit delete), or expired (time-based, enforced lazily by the
// hold store on every access — there is no background sweeper, so an expired
// hold may linger in storage until the next read or write touches it, but it
// can never again block a conflict check or a new hold).
type HoldManager struct {
	Holds   HoldStore
	Checker *ConflictChecker
	Clock   Clock
}

// Create places a hold on the slot described by q for the given customer.
// It fails with ErrConflict when the slot is already held or at capacity at
// creation time, and also when a concurrent hold for the identical tuple
// wins the store's conditional insert: exactly one of two racing calls
// succeeds, the loser sees ErrConflict.
func (m *HoldManager) Create(ctx context.Context, q SlotQuery, customerID string) (*model.ReservationHold, error) {
	ok, err := m.Checker.IsAvailable(ctx, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictf("time slot is currently being reserved or booked")
	}
	now := m.Clock.Now()
	h := &model.ReservationHold{
		ID:         uuid.NewString(),
		ProviderID: q.ProviderID,
		ServiceID:  q.ServiceID,
		Date:       q.Date,
		Time:       q.Time,
		CustomerID: customerID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(HoldTTL),
	}
	if err := m.Holds.InsertHold(ctx, h); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: time slot is currently being reserved", ErrConflict)
		}
		return nil, err
	}
	return h, nil
}

// Release deletes a hold by id. Deleting an unknown id yields ErrNotFound;
// callers treat that as informational rather than fatal, which makes release
// idempotent from the client's point of view.
func (m *HoldManager) Release(ctx context.Context, id string) error {
	return m.Holds.DeleteHold(ctx, id)
}
