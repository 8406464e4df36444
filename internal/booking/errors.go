// Package booking implements the availability, slot-generation, conflict,
// reservation-hold and cancellation-fee core of the platform. It is pure
// domain logic over a set of store interfaces; persistence, transport and
// authentication live in other packages. All failures surface as one of the
// four sentinel errors below so that handlers can translate them into HTTP
// statuses with errors.Is, and none of them are retried internally: a
// Conflict must reach the client so it can pick a different slot.
package booking

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a provider, service, appointment or hold id
// does not resolve to a record. Handlers translate this into 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned for malformed input: bad date/time strings,
// endTime not after startTime, breaks outside the working window,
// non-positive duration or capacity. Handlers translate this into 400.
var ErrValidation = errors.New("invalid input")

// ErrConflict is returned when a slot is already booked or held, a service's
// capacity is exhausted, or a hold has expired or belongs to someone else.
// Handlers translate this into 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when a role-gated operation is attempted by the
// wrong party, e.g. a customer trying to mark an appointment completed.
// Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// validationf wraps ErrValidation with a formatted message.
func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// conflictf wraps ErrConflict with a formatted message.
func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
