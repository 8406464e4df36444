// Package queue defines the message payloads exchanged over the broker and
// the background consumer that turns booking events into an append-only log.
package queue

// AppointmentBookedEvent is published to the appointment.booked queue when a
// booking commits. It carries enough for downstream consumers (notification,
// analytics) to act without querying the primary database.
type AppointmentBookedEvent struct {
	AppointmentID string `json:"appointment_id"`
	CustomerID    string `json:"customer_id"`
	ProviderID    string `json:"provider_id"`
	ServiceID     string `json:"service_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	BookedAt      string `json:"booked_at"`
}

// AppointmentCancelledEvent is published to the appointment.cancelled queue
// when either party cancels, including the fee the policy engine computed.
type AppointmentCancelledEvent struct {
	AppointmentID string  `json:"appointment_id"`
	CustomerID    string  `json:"customer_id"`
	ProviderID    string  `json:"provider_id"`
	ServiceID     string  `json:"service_id"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	FeeAmount     float64 `json:"cancellation_fee"`
	RefundAmount  float64 `json:"refund_amount"`
	Reason        string  `json:"reason"`
	CancelledAt   string  `json:"cancelled_at"`
}
