package booking

import (
	"context"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// Resolver merges a provider's recurring weekly template with a
// date-specific exception into one effective daily schedule. Resolution is a
// pure function of the two records: an exception always wins over the weekly
// template for its date, and a missing or disabled template means the day is
// closed. There are no side effects, so the result is cacheable per
// (provider, date) until either record changes.
type Resolver struct {
	Availability AvailabilityStore
}

// NewResolver constructs a Resolver over the given availability store.
func NewResolver(store AvailabilityStore) *Resolver {
	if store == nil {
		panic("nil availability store passed to NewResolver")
	}
	return &Resolver{Availability: store}
}

// Resolve returns the effective schedule for the provider on the date.
func (r *Resolver) Resolve(ctx context.Context, providerID string, date schedule.Date) (schedule.EffectiveSchedule, error) {
	exc, err := r.Availability.GetException(ctx, providerID, date)
	if err != nil {
		return schedule.Closed(), err
	}
	if exc != nil {
		return EffectiveFromException(exc)
	}
	weekly, err := r.Availability.GetWeekly(ctx, providerID, date.DayName())
	if err != nil {
		return schedule.Closed(), err
	}
	if weekly == nil || !weekly.IsAvailable {
		return schedule.Closed(), nil
	}
	return schedule.EffectiveSchedule{
		Open:   true,
		Start:  weekly.StartTime,
		End:    weekly.EndTime,
		Breaks: weekly.Breaks,
	}, nil
}

// EffectiveFromException converts an exception into the effective schedule
// for its date. A day-off exception closes the day outright. An available
// exception is fully authoritative: the weekly template is not consulted, so
// both times must be present on the record itself.
func EffectiveFromException(exc *model.AvailabilityException) (schedule.EffectiveSchedule, error) {
	if !exc.IsAvailable {
		return schedule.Closed(), nil
	}
	if exc.StartTime == nil || exc.EndTime == nil {
		return schedule.Closed(), validationf("exception for %s is available but missing startTime or endTime", exc.Date)
	}
	if *exc.EndTime <= *exc.StartTime {
		return schedule.Closed(), validationf("exception for %s: endTime must be after startTime", exc.Date)
	}
	return schedule.EffectiveSchedule{
		Open:   true,
		Start:  *exc.StartTime,
		End:    *exc.EndTime,
		Breaks: exc.Breaks,
	}, nil
}
