package booking

import (
	"sort"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// ValidateWeekly checks the invariants of a weekly availability row before it
// is written: a known weekday name, endTime after startTime, and breaks that
// are non-overlapping and fully inside the working window. Breaks are sorted
// ascending in place so the stored form matches the documented "ordered set".
func ValidateWeekly(w *model.WeeklyAvailability) error {
	if !schedule.ValidDayName(w.DayOfWeek) {
		return validationf("invalid day of week %q", w.DayOfWeek)
	}
	if w.EndTime <= w.StartTime {
		return validationf("endTime must be after startTime")
	}
	return validateBreaks(w.Breaks, w.StartTime, w.EndTime)
}

// ValidateException checks an exception row before it is written. A day-off
// exception needs no times; an available one must carry a complete window.
func ValidateException(e *model.AvailabilityException) error {
	if e.Date.IsZero() {
		return validationf("date is required")
	}
	if !e.IsAvailable {
		return nil
	}
	if e.StartTime == nil || e.EndTime == nil {
		return validationf("startTime and endTime are required when isAvailable=true")
	}
	if *e.EndTime <= *e.StartTime {
		return validationf("endTime must be after startTime")
	}
	return validateBreaks(e.Breaks, *e.StartTime, *e.EndTime)
}

func validateBreaks(breaks []schedule.Range, start, end schedule.TimeOfDay) error {
	sort.Slice(breaks, func(i, j int) bool { return breaks[i].Start < breaks[j].Start })
	for i, b := range breaks {
		if !b.Within(start, end) {
			return validationf("break %s is outside the working window %s-%s", b, start, end)
		}
		if i > 0 && breaks[i-1].End > b.Start {
			return validationf("breaks %s and %s overlap", breaks[i-1], b)
		}
	}
	return nil
}
