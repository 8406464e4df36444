// Package schedule provides the value types and pure slot arithmetic used by
// the booking core: times of day ("HH:MM"), calendar dates ("yyyy-mm-dd"),
// break ranges and effective daily schedules. All interval comparisons are
// half-open: a slot [t, t+duration) touches a break [bs, be) only when
// t < be && t+duration > bs.
package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight. It replaces
// the "HH:MM" string splitting that was previously repeated at every call
// site. The zero value is midnight.
type TimeOfDay int

// ParseTimeOfDay parses a 24-hour "HH:MM" string. Hours must be 00-23 and
// minutes 00-59; anything else is rejected.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := twoDigits(s[0:2])
	if err != nil || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := twoDigits(s[3:5])
	if err != nil || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// twoDigits converts a two character ASCII digit string to an int.
func twoDigits(s string) (int, error) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), nil
}

// String renders the time back in "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add returns the time shifted forward by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

// Minutes returns the raw minutes-since-midnight value.
func (t TimeOfDay) Minutes() int { return int(t) }

// MarshalJSON encodes the time as an "HH:MM" JSON string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an "HH:MM" JSON string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Range is a half-open [Start, End) window within a day, used for breaks.
type Range struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseRange parses the stored "HH:MM-HH:MM" break encoding.
func ParseRange(s string) (Range, error) {
	if len(s) != 11 || s[5] != '-' {
		return Range{}, fmt.Errorf("invalid range %q: want HH:MM-HH:MM", s)
	}
	start, err := ParseTimeOfDay(s[0:5])
	if err != nil {
		return Range{}, err
	}
	end, err := ParseTimeOfDay(s[6:11])
	if err != nil {
		return Range{}, err
	}
	if end <= start {
		return Range{}, fmt.Errorf("invalid range %q: end must be after start", s)
	}
	return Range{Start: start, End: end}, nil
}

// ParseRanges parses a slice of "HH:MM-HH:MM" strings, as persisted on the
// breaks field of availability records.
func ParseRanges(ss []string) ([]Range, error) {
	out := make([]Range, 0, len(ss))
	for _, s := range ss {
		r, err := ParseRange(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// String renders the range in its stored "HH:MM-HH:MM" form.
func (r Range) String() string { return r.Start.String() + "-" + r.End.String() }

// Overlaps reports whether [start, end) intersects the range, half-open on
// both sides so back-to-back intervals do not collide.
func (r Range) Overlaps(start, end TimeOfDay) bool {
	return start < r.End && end > r.Start
}

// Within reports whether the range lies entirely inside [start, end).
func (r Range) Within(start, end TimeOfDay) bool {
	return r.Start >= start && r.End <= end
}

// MarshalJSON encodes the range as its "HH:MM-HH:MM" string.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes an "HH:MM-HH:MM" JSON string.
func (r *Range) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseRange(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Date is a calendar date with no time component, persisted as "yyyy-mm-dd".
// It carries a UTC midnight instant internally so weekday and datetime
// arithmetic stay consistent across the codebase.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// ParseDate parses a "yyyy-mm-dd" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want yyyy-mm-dd", s)
	}
	return Date{t: t.UTC()}, nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date as "yyyy-mm-dd".
func (d Date) String() string { return d.t.Format(dateLayout) }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Weekday returns the weekday of the date.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// DayName returns the lowercase English weekday name ("monday" .. "sunday"),
// the form under which weekly availability rows are keyed.
func (d Date) DayName() string {
	switch d.t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// At combines the date with a time of day into a UTC instant.
func (d Date) At(t TimeOfDay) time.Time {
	return d.t.Add(time.Duration(t.Minutes()) * time.Minute)
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// MarshalJSON encodes the date as a "yyyy-mm-dd" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "yyyy-mm-dd" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ValidDayName reports whether s is one of the seven lowercase weekday names.
func ValidDayName(s string) bool {
	switch s {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}
