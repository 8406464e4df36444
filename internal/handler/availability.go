package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/repository"
)

// AvailabilityHandler exposes a provider's weekly availability template and
// per-date exceptions. All routes here are provider-scoped: the provider id
// is always the authenticated caller, never a body field, so a provider
// cannot edit someone else's calendar. Writes invalidate the schedule cache
// so slot queries see the change immediately.
type AvailabilityHandler struct {
	Repo  *repository.AvailabilityRepo
	Cache *repository.ScheduleCache
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(repo *repository.AvailabilityRepo, cache *repository.ScheduleCache) *AvailabilityHandler {
	return &AvailabilityHandler{Repo: repo, Cache: cache}
}

// ListWeekly returns the caller's weekly template ordered by weekday.
// GET /v1/availability
func (h *AvailabilityHandler) ListWeekly(c echo.Context) error {
	rows, err := h.Repo.ListWeekly(c.Request().Context(), actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	if rows == nil {
		rows = []model.WeeklyAvailability{}
	}
	return c.JSON(http.StatusOK, rows)
}

// UpsertWeekly creates or replaces the caller's template for one weekday.
// PUT /v1/availability
func (h *AvailabilityHandler) UpsertWeekly(c echo.Context) error {
	var w model.WeeklyAvailability
	if err := c.Bind(&w); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	w.ID = ""
	w.ProviderID = actorID(c)
	if err := booking.ValidateWeekly(&w); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	if err := h.Repo.UpsertWeekly(ctx, &w); err != nil {
		return writeError(c, err)
	}
	// A weekly change affects an unbounded set of dates.
	h.Cache.InvalidateProvider(ctx, w.ProviderID)
	return c.JSON(http.StatusOK, w)
}

// DeleteWeekly removes one weekday row from the caller's template.
// DELETE /v1/availability/:id
func (h *AvailabilityHandler) DeleteWeekly(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Repo.DeleteWeekly(ctx, c.Param("id"), actorID(c)); err != nil {
		return writeError(c, err)
	}
	h.Cache.InvalidateProvider(ctx, actorID(c))
	return c.NoContent(http.StatusNoContent)
}

// ListExceptions returns the caller's date exceptions ordered by date.
// GET /v1/availability/exceptions
func (h *AvailabilityHandler) ListExceptions(c echo.Context) error {
	rows, err := h.Repo.ListExceptions(c.Request().Context(), actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	if rows == nil {
		rows = []model.AvailabilityException{}
	}
	return c.JSON(http.StatusOK, rows)
}

// UpsertException creates or replaces the caller's exception for one date.
// PUT /v1/availability/exceptions
func (h *AvailabilityHandler) UpsertException(c echo.Context) error {
	var e model.AvailabilityException
	if err := c.Bind(&e); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	e.ID = ""
	e.ProviderID = actorID(c)
	if err := booking.ValidateException(&e); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	if err := h.Repo.UpsertException(ctx, &e); err != nil {
		return writeError(c, err)
	}
	h.Cache.InvalidateDate(ctx, e.ProviderID, e.Date)
	return c.JSON(http.StatusOK, e)
}

// DeleteException removes one exception owned by the caller.
// DELETE /v1/availability/exceptions/:id
func (h *AvailabilityHandler) DeleteException(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Repo.DeleteException(ctx, c.Param("id"), actorID(c)); err != nil {
		return writeError(c, err)
	}
	// The deleted row's date is gone with it, so evict everything for the
	// provider rather than tracking it separately.
	h.Cache.InvalidateProvider(ctx, actorID(c))
	return c.NoContent(http.StatusNoContent)
}
