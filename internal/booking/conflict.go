package booking

import (
	"context"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// SlotQuery identifies one candidate slot plus the parameters of the service
// being booked into it. ExcludeAppointmentID is set when rescheduling so the
// appointment being moved does not count against its own slot; IgnoreHoldID
// is set when committing a booking against a hold the caller already owns.
type SlotQuery struct {
	ProviderID           string
	ServiceID            string
	Date                 schedule.Date
	Time                 schedule.TimeOfDay
	DurationMinutes      int
	Capacity             int
	ExcludeAppointmentID string
	IgnoreHoldID         string
}

// ConflictChecker decides whether a slot may still accept a booking. Two
// independent checks must both pass:
//
//  1. Exclusivity: any active hold on the exact (provider, service, date,
//     time) tuple blocks the slot for everyone else, irrespective of
//     capacity. A hold reserves the literal slot so a concurrent buyer
//     cannot take the slot mid-checkout.
//  2. Capacity: the number of non-cancelled appointments whose interval
//     overlaps the candidate's must stay below the service capacity, which
//     is what allows group services to share a start time.
//
// Holds being stricter than capacity is deliberate and must stay consistent
// across every path that consults this type.
type ConflictChecker struct {
	Appointments AppointmentStore
	Holds        HoldStore
}

// IsAvailable reports whether the slot described by q can accept one more
// booking right now. Expired holds never block: the hold store discards them
// on every read.
func (c *ConflictChecker) IsAvailable(ctx context.Context, q SlotQuery) (bool, error) {
	if q.DurationMinutes <= 0 {
		return false, validationf("durationMinutes must be positive")
	}
	if q.Capacity < 1 {
		return false, validationf("capacity must be at least 1")
	}

	holds, err := c.Holds.ListActive(ctx, q.ProviderID, q.ServiceID, q.Date, q.Time)
	if err != nil {
		return false, err
	}
	for _, h := range holds {
		if q.IgnoreHoldID == "" || h.ID != q.IgnoreHoldID {
			return false, nil
		}
	}

	appts, err := c.Appointments.ListForDay(ctx, q.ProviderID, q.ServiceID, q.Date)
	if err != nil {
		return false, err
	}
	start := q.Time
	end := q.Time.Add(q.DurationMinutes)
	count := 0
	for i := range appts {
		a := &appts[i]
		if a.Status == model.StatusCancelled {
			continue
		}
		if q.ExcludeAppointmentID != "" && a.ID == q.ExcludeAppointmentID {
			continue
		}
		if a.Time < end && a.Time.Add(q.DurationMinutes) > start {
			count++
		}
	}
	return count < q.Capacity, nil
}
