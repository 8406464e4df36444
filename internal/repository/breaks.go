// Package repository contains the data access layer: MySQL-backed stores for
// availability, services, appointments, holds and payments, an in-memory hold
// store for development and tests, and a Redis cache around schedule
// resolution. All stores satisfy the interfaces declared in the booking
// package and report failures through that package's sentinel errors so that
// errors.Is works uniformly from store to handler.
package repository

import (
	"strings"

	"github.com/evlats/bookable/internal/schedule"
)

// encodeBreaks serialises break ranges into the stored "HH:MM-HH:MM" comma
// separated form.
func encodeBreaks(breaks []schedule.Range) string {
	if len(breaks) == 0 {
		return ""
	}
	parts := make([]string, len(breaks))
	for i, b := range breaks {
		parts[i] = b.String()
	}
	return strings.Join(parts, ",")
}

// decodeBreaks parses the stored comma separated form back into ranges.
func decodeBreaks(s string) ([]schedule.Range, error) {
	if s == "" {
		return nil, nil
	}
	return schedule.ParseRanges(strings.Split(s, ","))
}
