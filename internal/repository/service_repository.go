package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/model"
)

// ServiceRepo reads bookable services. Cancellation policy fields live as
// nullable columns on the services row; a NULL free_cancel_hours means the
// service has no policy of its own and the provider default applies.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a ServiceRepo bound to the database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// GetService loads one service by id.
func (r *ServiceRepo) GetService(ctx context.Context, id string) (*model.Service, error) {
	const q = `SELECT id, provider_id, name, description, duration_minutes, price, category, capacity, is_active,
	                  free_cancel_hours, late_cancel_fee_pct, no_show_fee_pct, deposit_pct
	           FROM services WHERE id = ?`
	var s model.Service
	var desc, category sql.NullString
	var freeHours, latePct, noShowPct, depositPct sql.NullFloat64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.ProviderID, &s.Name, &desc, &s.DurationMinutes, &s.Price, &category, &s.Capacity, &s.IsActive,
		&freeHours, &latePct, &noShowPct, &depositPct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: service %s", booking.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	s.Description = desc.String
	s.Category = category.String
	s.CancellationPolicy = policyFromColumns(freeHours, latePct, noShowPct, depositPct)
	return &s, nil
}

// ProviderRepo reads the provider slice the booking core needs: name and the
// default cancellation policy.
type ProviderRepo struct {
	db *sql.DB
}

// NewProviderRepo returns a ProviderRepo bound to the database.
func NewProviderRepo(db *sql.DB) *ProviderRepo { return &ProviderRepo{db: db} }

// GetProvider loads one provider by id.
func (r *ProviderRepo) GetProvider(ctx context.Context, id string) (*model.Provider, error) {
	const q = `SELECT id, name, free_cancel_hours, late_cancel_fee_pct, no_show_fee_pct, deposit_pct
	           FROM providers WHERE id = ?`
	var p model.Provider
	var freeHours, latePct, noShowPct, depositPct sql.NullFloat64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &freeHours, &latePct, &noShowPct, &depositPct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: provider %s", booking.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	p.CancellationPolicy = policyFromColumns(freeHours, latePct, noShowPct, depositPct)
	return &p, nil
}

// policyFromColumns builds a policy from the nullable columns; a NULL
// free_cancel_hours means no policy at all.
func policyFromColumns(freeHours, latePct, noShowPct, depositPct sql.NullFloat64) *model.CancellationPolicy {
	if !freeHours.Valid {
		return nil
	}
	return &model.CancellationPolicy{
		FreeCancelHours:  freeHours.Float64,
		LateCancelFeePct: latePct.Float64,
		NoShowFeePct:     noShowPct.Float64,
		DepositPct:       depositPct.Float64,
	}
}
