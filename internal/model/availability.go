package model

import "github.com/evlats/bookable/internal/schedule"

// WeeklyAvailability is a provider's recurring working window for one weekday.
// There is at most one row per (provider, day_of_week). Breaks are half-open
// windows that must lie inside [StartTime, EndTime).
//
// Fields:
//  ID          – primary key identifier.
//  ProviderID  – owning provider.
//  DayOfWeek   – lowercase weekday name ("monday" .. "sunday").
//  StartTime   – start of the working window.
//  EndTime     – end of the working window (exclusive, after StartTime).
//  Breaks      – non-overlapping pauses inside the window (e.g. lunch).
//  IsAvailable – false disables the whole weekday without deleting the row.
type WeeklyAvailability struct {
	ID          string             `json:"id"`
	ProviderID  string             `json:"providerId"`
	DayOfWeek   string             `json:"dayOfWeek"`
	StartTime   schedule.TimeOfDay `json:"startTime"`
	EndTime     schedule.TimeOfDay `json:"endTime"`
	Breaks      []schedule.Range   `json:"breaks"`
	IsAvailable bool               `json:"isAvailable"`
}

// AvailabilityException overrides the weekly template for a single date.
// IsAvailable=false marks a day off and the time fields are ignored. When
// IsAvailable=true the exception is fully authoritative for that date: both
// times must be present and the weekly template is not consulted.
type AvailabilityException struct {
	ID          string              `json:"id"`
	ProviderID  string              `json:"providerId"`
	Date        schedule.Date       `json:"date"`
	StartTime   *schedule.TimeOfDay `json:"startTime,omitempty"`
	EndTime     *schedule.TimeOfDay `json:"endTime,omitempty"`
	Breaks      []schedule.Range    `json:"breaks"`
	IsAvailable bool                `json:"isAvailable"`
	Note        string              `json:"note,omitempty"`
}
