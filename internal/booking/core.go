package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// Role identifies which side of an appointment the caller is on. Identities
// and roles arrive already validated from the transport layer; the core only
// enforces what each role may do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

// DefaultSlotInterval is the slot step used when the caller does not specify
// one.
const DefaultSlotInterval = 30

// Core wires the five booking components together behind the operations the
// transport layer calls. It owns no state of its own: everything mutable
// lives behind the store interfaces, so multiple instances of the service
// can run against the same backing store.
type Core struct {
	Services     ServiceStore
	Providers    ProviderStore
	Resolver     ScheduleResolver
	Appointments AppointmentStore
	Holds        HoldStore
	Payments     PaymentStore
	Clock        Clock

	checker *ConflictChecker
	holds   *HoldManager
}

// NewCore constructs the booking core. All dependencies must be non-nil
// except Payments, which may be nil when the deployment has no payment
// records (cancellations then compute a zero refund).
func NewCore(services ServiceStore, providers ProviderStore, resolver ScheduleResolver, appointments AppointmentStore, holds HoldStore, payments PaymentStore, clock Clock) *Core {
	if services == nil || providers == nil || resolver == nil || appointments == nil || holds == nil || clock == nil {
		panic("nil dependency passed to NewCore")
	}
	checker := &ConflictChecker{Appointments: appointments, Holds: holds}
	return &Core{
		Services:     services,
		Providers:    providers,
		Resolver:     resolver,
		Appointments: appointments,
		Holds:        holds,
		Payments:     payments,
		Clock:        clock,
		checker:      checker,
		holds:        &HoldManager{Holds: holds, Checker: checker, Clock: clock},
	}
}

// serviceFor loads the service and checks it is offered by the provider the
// caller selected, closing the cross-provider booking hole.
func (c *Core) serviceFor(ctx context.Context, providerID, serviceID string) (*model.Service, error) {
	svc, err := c.Services.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != providerID {
		return nil, validationf("service does not belong to the selected provider")
	}
	return svc, nil
}

// effectiveCapacity normalises stored capacity: historical rows carry 0 for
// "default", which means a single concurrent booking.
func effectiveCapacity(svc *model.Service) int {
	if svc.Capacity < 1 {
		return 1
	}
	return svc.Capacity
}

// ResolveSlots returns the bookable start times for (provider, service,
// date): the effective schedule is resolved, candidate slots are generated
// for the service duration, and slots that are held or at capacity are
// filtered out. The result is empty (never nil) for a closed day.
func (c *Core) ResolveSlots(ctx context.Context, providerID, serviceID string, date schedule.Date, intervalMinutes int) ([]schedule.TimeOfDay, error) {
	svc, err := c.serviceFor(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.DurationMinutes <= 0 {
		return nil, validationf("service duration must be positive")
	}
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultSlotInterval
	}

	sched, err := c.Resolver.Resolve(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	out := make([]schedule.TimeOfDay, 0)
	capacity := effectiveCapacity(svc)
	for _, t := range schedule.Slots(sched, svc.DurationMinutes, intervalMinutes) {
		ok, err := c.checker.IsAvailable(ctx, SlotQuery{
			ProviderID:      providerID,
			ServiceID:       serviceID,
			Date:            date,
			Time:            t,
			DurationMinutes: svc.DurationMinutes,
			Capacity:        capacity,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// RequestHold places a 10 minute exclusive hold on the slot for the
// customer. ErrConflict is returned when the slot is already held, already
// at capacity, or when a concurrent request for the same slot wins the race.
func (c *Core) RequestHold(ctx context.Context, providerID, serviceID string, date schedule.Date, t schedule.TimeOfDay, customerID string) (*model.ReservationHold, error) {
	svc, err := c.serviceFor(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}
	sched, err := c.Resolver.Resolve(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if !withinSchedule(sched, t, svc.DurationMinutes) {
		return nil, conflictf("slot is outside the provider's working hours")
	}
	return c.holds.Create(ctx, SlotQuery{
		ProviderID:      providerID,
		ServiceID:       serviceID,
		Date:            date,
		Time:            t,
		DurationMinutes: svc.DurationMinutes,
		Capacity:        effectiveCapacity(svc),
	}, customerID)
}

// ReleaseHold deletes a hold by id. An unknown id yields ErrNotFound, which
// callers may report without treating the release as failed.
func (c *Core) ReleaseHold(ctx context.Context, holdID string) error {
	return c.holds.Release(ctx, holdID)
}

// BookingRequest carries everything needed to commit an appointment. HoldID
// is optional: when present it must name an active hold owned by the booking
// customer on exactly this slot.
type BookingRequest struct {
	CustomerID string
	ProviderID string
	ServiceID  string
	Date       schedule.Date
	Time       schedule.TimeOfDay
	Notes      string
	HoldID     string
}

// CommitBooking re-validates the slot and inserts the appointment as
// pending. The appointment store performs a transactional capacity re-check
// at insert time, so a conflict discovered there surfaces as ErrConflict
// rather than a double booking. The hold, when given, is consumed only after
// the insert succeeds: if the commit fails for any reason the hold stays
// intact and the customer can retry the same slot until it expires.
func (c *Core) CommitBooking(ctx context.Context, req BookingRequest) (*model.Appointment, error) {
	svc, err := c.serviceFor(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, validationf("service is currently unavailable")
	}

	sched, err := c.Resolver.Resolve(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, err
	}
	if !withinSchedule(sched, req.Time, svc.DurationMinutes) {
		return nil, conflictf("slot is outside the provider's working hours")
	}

	if req.HoldID != "" {
		hold, err := c.Holds.GetHold(ctx, req.HoldID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, conflictf("invalid or expired reservation hold")
			}
			return nil, err
		}
		if hold.CustomerID != req.CustomerID ||
			hold.ProviderID != req.ProviderID ||
			hold.ServiceID != req.ServiceID ||
			!hold.Date.Equal(req.Date) ||
			hold.Time != req.Time {
			return nil, conflictf("invalid or expired reservation hold")
		}
	}

	capacity := effectiveCapacity(svc)
	ok, err := c.checker.IsAvailable(ctx, SlotQuery{
		ProviderID:      req.ProviderID,
		ServiceID:       req.ServiceID,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: svc.DurationMinutes,
		Capacity:        capacity,
		IgnoreHoldID:    req.HoldID,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictf("time slot is no longer available")
	}

	appt := &model.Appointment{
		ID:         uuid.NewString(),
		CustomerID: req.CustomerID,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Time:       req.Time,
		Status:     model.StatusPending,
		Notes:      req.Notes,
		CreatedAt:  c.Clock.Now(),
	}
	if err := c.Appointments.CreateAppointment(ctx, appt, svc.DurationMinutes, capacity); err != nil {
		return nil, err
	}

	if req.HoldID != "" {
		// Consumed. The hold may already have expired mid-commit; that is
		// fine, the booking is in.
		if err := c.Holds.DeleteHold(ctx, req.HoldID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return appt, nil
}

// GetAppointment returns the appointment when the actor is one of its two
// participants, ErrForbidden otherwise.
func (c *Core) GetAppointment(ctx context.Context, id, actorID string) (*model.Appointment, error) {
	appt, err := c.Appointments.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.CustomerID != actorID && appt.ProviderID != actorID {
		return nil, ErrForbidden
	}
	return appt, nil
}

// cancellationInputs gathers the records the policy engine needs. A missing
// service or provider record degrades to nil rather than failing, matching
// how cancellations must keep working for retired services.
func (c *Core) cancellationInputs(ctx context.Context, appt *model.Appointment) (*model.Service, *model.Provider, *model.Payment, error) {
	svc, err := c.Services.GetService(ctx, appt.ServiceID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, nil, err
	}
	provider, err := c.Providers.GetProvider(ctx, appt.ProviderID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, nil, err
	}
	var payment *model.Payment
	if c.Payments != nil {
		payment, err = c.Payments.GetCompletedByAppointment(ctx, appt.ID)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return svc, provider, payment, nil
}

// ComputeCancellation reports what cancelling the appointment would cost
// right now, without changing anything.
func (c *Core) ComputeCancellation(ctx context.Context, appointmentID string) (CancellationResult, error) {
	appt, err := c.Appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return CancellationResult{}, err
	}
	svc, provider, payment, err := c.cancellationInputs(ctx, appt)
	if err != nil {
		return CancellationResult{}, err
	}
	return ComputeCancellation(appt, svc, provider, payment, c.Clock.Now()), nil
}

// CancelAppointment cancels on behalf of either participant, computes the
// fee under the applicable policy, flags the completed payment for refund
// when a fee applies, and marks the appointment cancelled. Cancelling a
// terminal appointment is ErrConflict.
func (c *Core) CancelAppointment(ctx context.Context, appointmentID, actorID string, role Role) (CancellationResult, error) {
	appt, err := c.Appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return CancellationResult{}, err
	}
	if err := requireParticipant(appt, actorID, role); err != nil {
		return CancellationResult{}, err
	}
	if appt.Status.Terminal() {
		return CancellationResult{}, conflictf("appointment is already %s", appt.Status)
	}

	svc, provider, payment, err := c.cancellationInputs(ctx, appt)
	if err != nil {
		return CancellationResult{}, err
	}
	result := ComputeCancellation(appt, svc, provider, payment, c.Clock.Now())

	if payment != nil && result.FeeAmount > 0 {
		if err := c.Payments.MarkRefunded(ctx, payment.ID); err != nil {
			return CancellationResult{}, err
		}
	}
	if err := c.Appointments.UpdateStatus(ctx, appt.ID, model.StatusCancelled); err != nil {
		return CancellationResult{}, err
	}
	return result, nil
}

// UpdateStatus applies a role-gated lifecycle transition and returns the
// updated appointment.
func (c *Core) UpdateStatus(ctx context.Context, appointmentID, actorID string, role Role, to model.AppointmentStatus) (*model.Appointment, error) {
	appt, err := c.Appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(appt, actorID, role); err != nil {
		return nil, err
	}
	if err := checkTransition(appt.Status, to, role); err != nil {
		return nil, err
	}
	if err := c.Appointments.UpdateStatus(ctx, appt.ID, to); err != nil {
		return nil, err
	}
	appt.Status = to
	return appt, nil
}

// UpdateNotes replaces the appointment notes on behalf of a participant.
// Notes stay editable on terminal appointments; they are bookkeeping, not
// lifecycle.
func (c *Core) UpdateNotes(ctx context.Context, appointmentID, actorID string, role Role, notes string) (*model.Appointment, error) {
	appt, err := c.Appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(appt, actorID, role); err != nil {
		return nil, err
	}
	if err := c.Appointments.UpdateNotes(ctx, appt.ID, notes); err != nil {
		return nil, err
	}
	appt.Notes = notes
	return appt, nil
}

// Reschedule moves a pending or confirmed appointment to a new slot. The
// conflict check excludes the appointment's own id so it does not collide
// with itself, and the new slot must lie within the provider's effective
// schedule for the target date.
func (c *Core) Reschedule(ctx context.Context, appointmentID, actorID string, role Role, date schedule.Date, t schedule.TimeOfDay) (*model.Appointment, error) {
	appt, err := c.Appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(appt, actorID, role); err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, conflictf("appointment is already %s", appt.Status)
	}
	svc, err := c.Services.GetService(ctx, appt.ServiceID)
	if err != nil {
		return nil, err
	}

	sched, err := c.Resolver.Resolve(ctx, appt.ProviderID, date)
	if err != nil {
		return nil, err
	}
	if !withinSchedule(sched, t, svc.DurationMinutes) {
		return nil, conflictf("slot is outside the provider's working hours")
	}

	ok, err := c.checker.IsAvailable(ctx, SlotQuery{
		ProviderID:           appt.ProviderID,
		ServiceID:            appt.ServiceID,
		Date:                 date,
		Time:                 t,
		DurationMinutes:      svc.DurationMinutes,
		Capacity:             effectiveCapacity(svc),
		ExcludeAppointmentID: appt.ID,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictf("time slot is no longer available")
	}
	if err := c.Appointments.Reschedule(ctx, appt.ID, date, t); err != nil {
		return nil, err
	}
	appt.Date = date
	appt.Time = t
	return appt, nil
}

// withinSchedule reports whether a slot of the given duration fits inside
// the open schedule without touching a break.
func withinSchedule(s schedule.EffectiveSchedule, t schedule.TimeOfDay, durationMinutes int) bool {
	if !s.Open || t < s.Start || t.Add(durationMinutes) > s.End {
		return false
	}
	for _, b := range s.Breaks {
		if b.Overlaps(t, t.Add(durationMinutes)) {
			return false
		}
	}
	return true
}

// requireParticipant checks the actor is the side of the appointment their
// role claims.
func requireParticipant(appt *model.Appointment, actorID string, role Role) error {
	switch role {
	case RoleCustomer:
		if appt.CustomerID != actorID {
			return ErrForbidden
		}
	case RoleProvider:
		if appt.ProviderID != actorID {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
	return nil
}

// checkTransition enforces the appointment lifecycle: pending is the only
// entry state, the provider moves appointments forward to confirmed or
// completed, either party may cancel, and terminal states accept nothing.
func checkTransition(from, to model.AppointmentStatus, role Role) error {
	if !model.ValidStatus(to) {
		return validationf("unknown status %q", to)
	}
	if from.Terminal() {
		return conflictf("appointment is already %s", from)
	}
	switch to {
	case model.StatusCancelled:
		return nil
	case model.StatusConfirmed:
		if role != RoleProvider {
			return ErrForbidden
		}
		if from != model.StatusPending {
			return conflictf("cannot confirm a %s appointment", from)
		}
	case model.StatusCompleted:
		if role != RoleProvider {
			return ErrForbidden
		}
	case model.StatusPending:
		return validationf("cannot transition back to pending")
	}
	return nil
}
