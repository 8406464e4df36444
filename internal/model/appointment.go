package model

import (
	"time"

	"github.com/evlats/bookable/internal/schedule"
)

// AppointmentStatus enumerates the appointment lifecycle. An appointment is
// created as pending by a customer booking, the provider moves it to
// confirmed or completed, and either party may cancel. Completed and
// cancelled are terminal.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Appointment is a committed booking of one customer against one provider's
// service. It is a relation entity: the customer and the provider both
// reference it, and status changes are role-gated in the booking core.
type Appointment struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customerId"`
	ProviderID string             `json:"providerId"`
	ServiceID  string             `json:"serviceId"`
	Date       schedule.Date      `json:"date"`
	Time       schedule.TimeOfDay `json:"time"`
	Status     AppointmentStatus  `json:"status"`
	Notes      string             `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// StartsAt returns the appointment's start instant in UTC.
func (a *Appointment) StartsAt() time.Time { return a.Date.At(a.Time) }
