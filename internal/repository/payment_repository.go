package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evlats/bookable/internal/model"
)

// PaymentRepo exposes the completed payment attached to an appointment so
// the cancellation engine can compute refunds, and lets a fee-bearing
// cancellation flag that payment as refunded. Charging and settlement happen
// in the payment gateway integration, outside this service.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// GetCompletedByAppointment returns the completed payment for the
// appointment, or (nil, nil) when none exists — an unpaid booking cancels
// with a zero refund.
func (r *PaymentRepo) GetCompletedByAppointment(ctx context.Context, appointmentID string) (*model.Payment, error) {
	const q = `SELECT id, appointment_id, amount, currency, status, created_at
	           FROM payments WHERE appointment_id = ? AND status = 'completed'
	           ORDER BY created_at DESC LIMIT 1`
	var p model.Payment
	err := r.db.QueryRowContext(ctx, q, appointmentID).Scan(
		&p.ID, &p.AppointmentID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkRefunded flags the payment for the refund pipeline.
func (r *PaymentRepo) MarkRefunded(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = 'refunded' WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "payment")
}
