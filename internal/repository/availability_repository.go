package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// AvailabilityRepo provides access to the weekly_availability and
// availability_exceptions tables. Rows are unique per (provider, day_of_week)
// and (provider, date) respectively; writes are upserts against those keys.
// Times are stored as "HH:MM" strings and dates as "yyyy-mm-dd" strings, the
// same shapes the records had in the previous store, so existing data
// migrates unchanged.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo returns an AvailabilityRepo bound to the database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// GetWeekly returns the weekly row for the lowercase day name, or (nil, nil)
// when the provider has no template for that weekday.
func (r *AvailabilityRepo) GetWeekly(ctx context.Context, providerID, dayOfWeek string) (*model.WeeklyAvailability, error) {
	const q = `SELECT id, provider_id, day_of_week, start_time, end_time, breaks, is_available
	           FROM weekly_availability WHERE provider_id = ? AND day_of_week = ?`
	row := r.db.QueryRowContext(ctx, q, providerID, dayOfWeek)
	w, err := scanWeekly(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

// ListWeekly returns all weekly rows for the provider ordered by weekday.
func (r *AvailabilityRepo) ListWeekly(ctx context.Context, providerID string) ([]model.WeeklyAvailability, error) {
	const q = `SELECT id, provider_id, day_of_week, start_time, end_time, breaks, is_available
	           FROM weekly_availability WHERE provider_id = ?
	           ORDER BY FIELD(day_of_week, 'monday','tuesday','wednesday','thursday','friday','saturday','sunday')`
	rows, err := r.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WeeklyAvailability
	for rows.Next() {
		w, err := scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// UpsertWeekly inserts or replaces the provider's row for a weekday and
// populates the record's ID.
func (r *AvailabilityRepo) UpsertWeekly(ctx context.Context, w *model.WeeklyAvailability) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	const q = `INSERT INTO weekly_availability (id, provider_id, day_of_week, start_time, end_time, breaks, is_available)
	           VALUES (?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE start_time = VALUES(start_time), end_time = VALUES(end_time),
	                                   breaks = VALUES(breaks), is_available = VALUES(is_available)`
	_, err := r.db.ExecContext(ctx, q,
		w.ID, w.ProviderID, w.DayOfWeek,
		w.StartTime.String(), w.EndTime.String(), encodeBreaks(w.Breaks), w.IsAvailable)
	return err
}

// DeleteWeekly removes a weekly row owned by the provider. Unknown ids and
// rows owned by someone else both report ErrNotFound.
func (r *AvailabilityRepo) DeleteWeekly(ctx context.Context, id, providerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM weekly_availability WHERE id = ? AND provider_id = ?`, id, providerID)
	if err != nil {
		return err
	}
	return requireAffected(res, "availability")
}

// GetException returns the exception for the exact date, or (nil, nil).
func (r *AvailabilityRepo) GetException(ctx context.Context, providerID string, date schedule.Date) (*model.AvailabilityException, error) {
	const q = `SELECT id, provider_id, date, start_time, end_time, breaks, is_available, note
	           FROM availability_exceptions WHERE provider_id = ? AND date = ?`
	row := r.db.QueryRowContext(ctx, q, providerID, date.String())
	e, err := scanException(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// ListExceptions returns all exceptions for the provider ordered by date.
func (r *AvailabilityRepo) ListExceptions(ctx context.Context, providerID string) ([]model.AvailabilityException, error) {
	const q = `SELECT id, provider_id, date, start_time, end_time, breaks, is_available, note
	           FROM availability_exceptions WHERE provider_id = ? ORDER BY date`
	rows, err := r.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AvailabilityException
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpsertException inserts or replaces the provider's exception for a date
// and populates the record's ID.
func (r *AvailabilityRepo) UpsertException(ctx context.Context, e *model.AvailabilityException) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var start, end interface{}
	if e.StartTime != nil {
		start = e.StartTime.String()
	}
	if e.EndTime != nil {
		end = e.EndTime.String()
	}
	const q = `INSERT INTO availability_exceptions (id, provider_id, date, start_time, end_time, breaks, is_available, note)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE start_time = VALUES(start_time), end_time = VALUES(end_time),
	                                   breaks = VALUES(breaks), is_available = VALUES(is_available), note = VALUES(note)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.ProviderID, e.Date.String(), start, end,
		encodeBreaks(e.Breaks), e.IsAvailable, e.Note)
	return err
}

// DeleteException removes an exception owned by the provider.
func (r *AvailabilityRepo) DeleteException(ctx context.Context, id, providerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_exceptions WHERE id = ? AND provider_id = ?`, id, providerID)
	if err != nil {
		return err
	}
	return requireAffected(res, "exception")
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWeekly(s scanner) (*model.WeeklyAvailability, error) {
	var w model.WeeklyAvailability
	var start, end, breaks string
	if err := s.Scan(&w.ID, &w.ProviderID, &w.DayOfWeek, &start, &end, &breaks, &w.IsAvailable); err != nil {
		return nil, err
	}
	var err error
	if w.StartTime, err = schedule.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("weekly_availability %s: %w", w.ID, err)
	}
	if w.EndTime, err = schedule.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("weekly_availability %s: %w", w.ID, err)
	}
	if w.Breaks, err = decodeBreaks(breaks); err != nil {
		return nil, fmt.Errorf("weekly_availability %s: %w", w.ID, err)
	}
	return &w, nil
}

func scanException(s scanner) (*model.AvailabilityException, error) {
	var e model.AvailabilityException
	var date, breaks string
	var start, end, note sql.NullString
	if err := s.Scan(&e.ID, &e.ProviderID, &date, &start, &end, &breaks, &e.IsAvailable, &note); err != nil {
		return nil, err
	}
	var err error
	if e.Date, err = schedule.ParseDate(date); err != nil {
		return nil, fmt.Errorf("availability_exception %s: %w", e.ID, err)
	}
	if start.Valid {
		t, err := schedule.ParseTimeOfDay(start.String)
		if err != nil {
			return nil, fmt.Errorf("availability_exception %s: %w", e.ID, err)
		}
		e.StartTime = &t
	}
	if end.Valid {
		t, err := schedule.ParseTimeOfDay(end.String)
		if err != nil {
			return nil, fmt.Errorf("availability_exception %s: %w", e.ID, err)
		}
		e.EndTime = &t
	}
	if e.Breaks, err = decodeBreaks(breaks); err != nil {
		return nil, fmt.Errorf("availability_exception %s: %w", e.ID, err)
	}
	e.Note = note.String
	return &e, nil
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", booking.ErrNotFound, what)
	}
	return nil
}
