package booking

import (
	"context"
	"time"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// The store interfaces below are the core's only view of persistence. The
// production implementations live in internal/repository (MySQL, plus an
// in-memory hold store); tests supply small fakes. Methods that look up a
// single record by id return ErrNotFound when the id is unknown; lookups
// where absence is a normal outcome (weekly template, exception, payment)
// return (nil, nil) instead.

// ServiceStore resolves bookable services.
type ServiceStore interface {
	GetService(ctx context.Context, id string) (*model.Service, error)
}

// ProviderStore resolves the provider view needed for default policies.
type ProviderStore interface {
	GetProvider(ctx context.Context, id string) (*model.Provider, error)
}

// AvailabilityStore reads a provider's weekly template and date exceptions.
type AvailabilityStore interface {
	// GetWeekly returns the weekly row for a lowercase day name, or
	// (nil, nil) when the provider has none for that weekday.
	GetWeekly(ctx context.Context, providerID, dayOfWeek string) (*model.WeeklyAvailability, error)
	// GetException returns the exception for the exact date, or (nil, nil).
	GetException(ctx context.Context, providerID string, date schedule.Date) (*model.AvailabilityException, error)
}

// AppointmentStore reads and writes committed bookings. CreateAppointment
// must re-check capacity transactionally immediately before the insert and
// return ErrConflict when the overlap count has reached capacity, so that
// two racing bookings cannot both slip past the checker.
type AppointmentStore interface {
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	// ListForDay returns all appointments (any status) for the service on
	// the given date; callers filter cancelled ones.
	ListForDay(ctx context.Context, providerID, serviceID string, date schedule.Date) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, appt *model.Appointment, durationMinutes, capacity int) error
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error
	UpdateNotes(ctx context.Context, id, notes string) error
	Reschedule(ctx context.Context, id string, date schedule.Date, t schedule.TimeOfDay) error
}

// HoldStore manages reservation holds. Every method discards expired holds
// before answering, which is the only expiry mechanism there is — no
// background sweeper. InsertHold must be an atomic conditional insert: when
// an active hold already exists for the same (provider, service, date, time)
// it returns ErrConflict, guaranteeing exactly one winner under concurrency.
type HoldStore interface {
	GetHold(ctx context.Context, id string) (*model.ReservationHold, error)
	ListActive(ctx context.Context, providerID, serviceID string, date schedule.Date, t schedule.TimeOfDay) ([]model.ReservationHold, error)
	InsertHold(ctx context.Context, h *model.ReservationHold) error
	DeleteHold(ctx context.Context, id string) error
	PruneExpired(ctx context.Context) (int64, error)
}

// PaymentStore exposes the completed payment attached to an appointment, if
// any, and lets a cancellation flag it for refund. Settlement is external.
type PaymentStore interface {
	GetCompletedByAppointment(ctx context.Context, appointmentID string) (*model.Payment, error)
	MarkRefunded(ctx context.Context, id string) error
}

// Clock abstracts wall-clock time so expiry and fee computations are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

// UTCClock is the production Clock.
type UTCClock struct{}

// Now returns the current time in UTC.
func (UTCClock) Now() time.Time { return time.Now().UTC() }

// ScheduleResolver yields the effective daily schedule for a provider and
// date. Resolver is the canonical implementation; the repository package
// wraps it with a Redis cache since the result only changes when the weekly
// template or the exception record changes.
type ScheduleResolver interface {
	Resolve(ctx context.Context, providerID string, date schedule.Date) (schedule.EffectiveSchedule, error)
}
