package model

import (
	"time"

	"github.com/evlats/bookable/internal/schedule"
)

// ReservationHold is a short-lived exclusive lock on one exact slot
// (provider, service, date, time). It exists only to close the race between
// "slot shown as free" and "slot actually booked": while a customer checks
// out, nobody else can take the same slot. Holds are never promoted; they are
// deleted on booking commit, on explicit release, or lazily once ExpiresAt
// has passed.
type ReservationHold struct {
	ID         string             `json:"id"`
	ProviderID string             `json:"providerId"`
	ServiceID  string             `json:"serviceId"`
	Date       schedule.Date      `json:"date"`
	Time       schedule.TimeOfDay `json:"time"`
	CustomerID string             `json:"customerId"`
	CreatedAt  time.Time          `json:"createdAt"`
	ExpiresAt  time.Time          `json:"expiresAt"`
}

// Active reports whether the hold is still live at the given instant.
func (h *ReservationHold) Active(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}
