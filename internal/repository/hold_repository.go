package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// HoldRepo persists reservation holds in MySQL. The table carries a unique
// key on (provider_id, service_id, date, time), so the insert itself is the
// atomic conditional write that guarantees at most one active hold per slot:
// a second concurrent insert for the same tuple fails with a duplicate-key
// error and surfaces as ErrConflict. A naive read-then-write in application
// code would reintroduce exactly the race holds exist to prevent.
//
// Expiry is lazy. Every method deletes expired rows for the tuples it is
// about to touch before doing its real work; there is no background sweeper,
// so a row may outlive its expires_at until the next access, but it can
// never block a conflict check or a new hold once stale.
type HoldRepo struct {
	db    *sql.DB
	clock booking.Clock
}

// NewHoldRepo returns a HoldRepo using the given clock for expiry
// comparisons.
func NewHoldRepo(db *sql.DB, clock booking.Clock) *HoldRepo {
	return &HoldRepo{db: db, clock: clock}
}

const holdColumns = `id, provider_id, service_id, date, time, customer_id, created_at, expires_at`

// GetHold returns a hold by id; ids that are unknown or expired both report
// ErrNotFound, so callers never observe a dead hold.
func (r *HoldRepo) GetHold(ctx context.Context, id string) (*model.ReservationHold, error) {
	if _, err := r.PruneExpired(ctx); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+holdColumns+` FROM reservation_holds WHERE id = ?`, id)
	h, err := scanHold(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: hold %s", booking.ErrNotFound, id)
	}
	return h, err
}

// ListActive returns the live holds for the exact slot tuple.
func (r *HoldRepo) ListActive(ctx context.Context, providerID, serviceID string, date schedule.Date, t schedule.TimeOfDay) ([]model.ReservationHold, error) {
	if _, err := r.PruneExpired(ctx); err != nil {
		return nil, err
	}
	const q = `SELECT ` + holdColumns + ` FROM reservation_holds
	           WHERE provider_id = ? AND service_id = ? AND date = ? AND time = ?`
	rows, err := r.db.QueryContext(ctx, q, providerID, serviceID, date.String(), t.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReservationHold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

// InsertHold writes the hold. ErrConflict means another active hold owns the
// slot tuple — the caller lost the race.
func (r *HoldRepo) InsertHold(ctx context.Context, h *model.ReservationHold) error {
	if _, err := r.PruneExpired(ctx); err != nil {
		return err
	}
	const q = `INSERT INTO reservation_holds (id, provider_id, service_id, date, time, customer_id, created_at, expires_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		h.ID, h.ProviderID, h.ServiceID, h.Date.String(), h.Time.String(),
		h.CustomerID, h.CreatedAt, h.ExpiresAt)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: slot already held", booking.ErrConflict)
	}
	return err
}

// DeleteHold removes a hold by id; unknown ids report ErrNotFound.
func (r *HoldRepo) DeleteHold(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservation_holds WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "hold")
}

// PruneExpired discards every hold whose expires_at has passed and returns
// the number of rows removed.
func (r *HoldRepo) PruneExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reservation_holds WHERE expires_at <= ?`, r.clock.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanHold(s scanner) (*model.ReservationHold, error) {
	var h model.ReservationHold
	var date, ts string
	if err := s.Scan(&h.ID, &h.ProviderID, &h.ServiceID, &date, &ts, &h.CustomerID, &h.CreatedAt, &h.ExpiresAt); err != nil {
		return nil, err
	}
	var err error
	if h.Date, err = schedule.ParseDate(date); err != nil {
		return nil, fmt.Errorf("hold %s: %w", h.ID, err)
	}
	if h.Time, err = schedule.ParseTimeOfDay(ts); err != nil {
		return nil, fmt.Errorf("hold %s: %w", h.ID, err)
	}
	return &h, nil
}
