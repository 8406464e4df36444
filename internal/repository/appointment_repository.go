package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// AppointmentRepo persists appointments. Dates and times keep their string
// shapes ("yyyy-mm-dd", "HH:MM") in the table. The insert path re-checks
// capacity inside a transaction with the day's rows locked, which is what
// makes a booking commit safe against a concurrent commit for the same slot
// even across multiple service instances.
type AppointmentRepo struct {
	db *sql.DB
}

// NewAppointmentRepo returns an AppointmentRepo bound to the database.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

const apptColumns = `id, customer_id, provider_id, service_id, date, time, status, notes, created_at`

// GetAppointment loads one appointment by id.
func (r *AppointmentRepo) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: appointment %s", booking.ErrNotFound, id)
	}
	return a, err
}

// ListForDay returns every appointment for the service on the date,
// regardless of status; the conflict checker filters cancelled rows.
func (r *AppointmentRepo) ListForDay(ctx context.Context, providerID, serviceID string, date schedule.Date) ([]model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments
	           WHERE provider_id = ? AND service_id = ? AND date = ? ORDER BY time`
	rows, err := r.db.QueryContext(ctx, q, providerID, serviceID, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListByCustomer returns the customer's appointments, newest first.
func (r *AppointmentRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments
	           WHERE customer_id = ? ORDER BY date DESC, time DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListByProvider returns the provider's calendar, newest first.
func (r *AppointmentRepo) ListByProvider(ctx context.Context, providerID string) ([]model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments
	           WHERE provider_id = ? ORDER BY date DESC, time DESC`
	rows, err := r.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// CreateAppointment inserts the appointment after re-counting overlapping
// non-cancelled rows for the same (provider, service, date) under a row
// lock. When the count has already reached capacity the transaction rolls
// back and ErrConflict is returned: the caller's earlier availability check
// passed, someone else got there first.
func (r *AppointmentRepo) CreateAppointment(ctx context.Context, appt *model.Appointment, durationMinutes, capacity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the day's rows for this service so two commits serialize.
	const countQ = `SELECT time FROM appointments
	                WHERE provider_id = ? AND service_id = ? AND date = ? AND status <> 'cancelled'
	                FOR UPDATE`
	rows, err := tx.QueryContext(ctx, countQ, appt.ProviderID, appt.ServiceID, appt.Date.String())
	if err != nil {
		return err
	}
	start := appt.Time
	end := appt.Time.Add(durationMinutes)
	overlapping := 0
	for rows.Next() {
		var ts string
		if scanErr := rows.Scan(&ts); scanErr != nil {
			rows.Close()
			return scanErr
		}
		t, parseErr := schedule.ParseTimeOfDay(ts)
		if parseErr != nil {
			rows.Close()
			return parseErr
		}
		if t < end && t.Add(durationMinutes) > start {
			overlapping++
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if overlapping >= capacity {
		return fmt.Errorf("%w: service capacity reached for this time slot", booking.ErrConflict)
	}

	const ins = `INSERT INTO appointments (id, customer_id, provider_id, service_id, date, time, status, notes, created_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins,
		appt.ID, appt.CustomerID, appt.ProviderID, appt.ServiceID,
		appt.Date.String(), appt.Time.String(), string(appt.Status), appt.Notes, appt.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateStatus sets the appointment status.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return requireAffected(res, "appointment")
}

// UpdateNotes replaces the appointment notes.
func (r *AppointmentRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET notes = ? WHERE id = ?`, notes, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "appointment")
}

// Reschedule moves the appointment to a new date and time.
func (r *AppointmentRepo) Reschedule(ctx context.Context, id string, date schedule.Date, t schedule.TimeOfDay) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET date = ?, time = ? WHERE id = ?`, date.String(), t.String(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, "appointment")
}

func scanAppointment(s scanner) (*model.Appointment, error) {
	var a model.Appointment
	var date, ts, status string
	var notes sql.NullString
	if err := s.Scan(&a.ID, &a.CustomerID, &a.ProviderID, &a.ServiceID, &date, &ts, &status, &notes, &a.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if a.Date, err = schedule.ParseDate(date); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if a.Time, err = schedule.ParseTimeOfDay(ts); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	a.Status = model.AppointmentStatus(status)
	a.Notes = notes.String
	return &a, nil
}

func collectAppointments(rows *sql.Rows) ([]model.Appointment, error) {
	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
