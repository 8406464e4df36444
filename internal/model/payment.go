package model

import "time"

// Payment is the read-only view of a completed payment the cancellation
// engine needs to compute a refund. Settlement, commissions and gateway
// integration are handled outside this service.
type Payment struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointmentId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
