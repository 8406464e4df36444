package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/queue"
	"github.com/evlats/bookable/internal/repository"
	"github.com/evlats/bookable/internal/schedule"
	queue_publisher "github.com/evlats/bookable/internal/service"
)

// AppointmentHandler exposes slot discovery, reservation holds and the
// appointment lifecycle. The booking core makes every decision; this layer
// parses requests, resolves the caller's identity and publishes domain events
// after commits.
type AppointmentHandler struct {
	Core *booking.Core
	Repo *repository.AppointmentRepo
}

// NewAppointmentHandler constructs the handler.
func NewAppointmentHandler(core *booking.Core, repo *repository.AppointmentRepo) *AppointmentHandler {
	return &AppointmentHandler{Core: core, Repo: repo}
}

// AvailableSlots lists the bookable start times for a provider's service on
// one date. Public: customers browse slots before authenticating.
// GET /v1/slots?providerId=&serviceId=&date=&interval=
func (h *AppointmentHandler) AvailableSlots(c echo.Context) error {
	providerID := c.QueryParam("providerId")
	serviceID := c.QueryParam("serviceId")
	if providerID == "" || serviceID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "providerId and serviceId are required"})
	}
	date, err := schedule.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected yyyy-mm-dd"})
	}
	interval := 0
	if s := c.QueryParam("interval"); s != "" {
		if interval, err = strconv.Atoi(s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interval"})
		}
	}

	slots, err := h.Core.ResolveSlots(c.Request().Context(), providerID, serviceID, date, interval)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"providerId": providerID,
		"serviceId":  serviceID,
		"date":       date,
		"slots":      slots,
	})
}

type holdRequest struct {
	ProviderID string             `json:"providerId"`
	ServiceID  string             `json:"serviceId"`
	Date       schedule.Date      `json:"date"`
	Time       schedule.TimeOfDay `json:"time"`
}

// CreateHold places a short exclusive hold on a slot for the caller.
// POST /v1/holds
func (h *AppointmentHandler) CreateHold(c echo.Context) error {
	var req holdRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ProviderID == "" || req.ServiceID == "" || req.Date.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "providerId, serviceId and date are required"})
	}
	hold, err := h.Core.RequestHold(c.Request().Context(), req.ProviderID, req.ServiceID, req.Date, req.Time, actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, hold)
}

// ReleaseHold frees a hold before it expires.
// DELETE /v1/holds/:id
func (h *AppointmentHandler) ReleaseHold(c echo.Context) error {
	if err := h.Core.ReleaseHold(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type bookingRequest struct {
	ProviderID string             `json:"providerId"`
	ServiceID  string             `json:"serviceId"`
	Date       schedule.Date      `json:"date"`
	Time       schedule.TimeOfDay `json:"time"`
	Notes      string             `json:"notes"`
	HoldID     string             `json:"holdId"`
}

// Create commits a booking for the caller and publishes the booked event.
// POST /v1/appointments
func (h *AppointmentHandler) Create(c echo.Context) error {
	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ProviderID == "" || req.ServiceID == "" || req.Date.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "providerId, serviceId and date are required"})
	}
	appt, err := h.Core.CommitBooking(c.Request().Context(), booking.BookingRequest{
		CustomerID: actorID(c),
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
		HoldID:     req.HoldID,
	})
	if err != nil {
		return writeError(c, err)
	}

	// The booking is committed; event delivery is best effort and must not
	// delay or fail the response.
	go func(a model.Appointment) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishAppointmentBooked(ctx, queue.AppointmentBookedEvent{
			AppointmentID: a.ID,
			CustomerID:    a.CustomerID,
			ProviderID:    a.ProviderID,
			ServiceID:     a.ServiceID,
			Date:          a.Date.String(),
			Time:          a.Time.String(),
			Status:        string(a.Status),
			BookedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}(*appt)

	return c.JSON(http.StatusCreated, appt)
}

// List returns the caller's appointments: their own bookings for a customer,
// their calendar for a provider.
// GET /v1/appointments
func (h *AppointmentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		rows []model.Appointment
		err  error
	)
	switch actorRole(c) {
	case booking.RoleProvider:
		rows, err = h.Repo.ListByProvider(ctx, actorID(c))
	default:
		rows, err = h.Repo.ListByCustomer(ctx, actorID(c))
	}
	if err != nil {
		return writeError(c, err)
	}
	if rows == nil {
		rows = []model.Appointment{}
	}
	return c.JSON(http.StatusOK, rows)
}

// Get returns one appointment to one of its participants.
// GET /v1/appointments/:id
func (h *AppointmentHandler) Get(c echo.Context) error {
	appt, err := h.Core.GetAppointment(c.Request().Context(), c.Param("id"), actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, appt)
}

// CancellationQuote reports what cancelling would cost right now without
// changing anything, so clients can show the fee before the user confirms.
// GET /v1/appointments/:id/cancellation
func (h *AppointmentHandler) CancellationQuote(c echo.Context) error {
	// Participant check first so the quote does not leak other bookings.
	if _, err := h.Core.GetAppointment(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return writeError(c, err)
	}
	result, err := h.Core.ComputeCancellation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type updateRequest struct {
	Status *model.AppointmentStatus `json:"status"`
	Date   *schedule.Date           `json:"date"`
	Time   *schedule.TimeOfDay      `json:"time"`
	Notes  *string                  `json:"notes"`
}

// Update applies a partial update: a lifecycle transition, a reschedule to a
// new date/time, a notes change, or any combination. Transitions run first so
// a reschedule cannot slip past a terminal-state check.
// PATCH /v1/appointments/:id
func (h *AppointmentHandler) Update(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Status == nil && req.Date == nil && req.Time == nil && req.Notes == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if (req.Date == nil) != (req.Time == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time must be provided together"})
	}

	ctx := c.Request().Context()
	id, actor, role := c.Param("id"), actorID(c), actorRole(c)

	var appt *model.Appointment
	var err error
	if req.Status != nil {
		if appt, err = h.Core.UpdateStatus(ctx, id, actor, role, *req.Status); err != nil {
			return writeError(c, err)
		}
	}
	if req.Date != nil {
		if appt, err = h.Core.Reschedule(ctx, id, actor, role, *req.Date, *req.Time); err != nil {
			return writeError(c, err)
		}
	}
	if req.Notes != nil {
		if appt, err = h.Core.UpdateNotes(ctx, id, actor, role, *req.Notes); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, appt)
}

// Cancel cancels the appointment, returns the fee breakdown, and publishes
// the cancelled event.
// DELETE /v1/appointments/:id
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	id, actor, role := c.Param("id"), actorID(c), actorRole(c)

	// Snapshot before cancelling; the event needs the slot details.
	appt, err := h.Core.GetAppointment(ctx, id, actor)
	if err != nil {
		return writeError(c, err)
	}
	result, err := h.Core.CancelAppointment(ctx, id, actor, role)
	if err != nil {
		return writeError(c, err)
	}

	go func(a model.Appointment, r booking.CancellationResult) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishAppointmentCancelled(pubCtx, queue.AppointmentCancelledEvent{
			AppointmentID: a.ID,
			CustomerID:    a.CustomerID,
			ProviderID:    a.ProviderID,
			ServiceID:     a.ServiceID,
			Date:          a.Date.String(),
			Time:          a.Time.String(),
			FeeAmount:     r.FeeAmount,
			RefundAmount:  r.RefundAmount,
			Reason:        r.Reason,
			CancelledAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}(*appt, result)

	return c.JSON(http.StatusOK, echo.Map{
		"status":       model.StatusCancelled,
		"cancellation": result,
	})
}
