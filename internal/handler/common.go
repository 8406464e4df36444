// Package handler contains the HTTP handlers for the booking API. Handlers
// parse and validate transport concerns (path params, JSON bodies, the
// authenticated identity) and delegate every decision to the booking core;
// errors come back as sentinel-wrapped values and are mapped to HTTP status
// codes in one place.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/evlats/bookable/internal/booking"
)

// actorID returns the authenticated user id stored by the JWT middleware.
func actorID(c echo.Context) string {
	if id, ok := c.Get("user_id").(string); ok {
		return id
	}
	return ""
}

// actorRole returns the caller's role claim as a booking.Role.
func actorRole(c echo.Context) booking.Role {
	if r, ok := c.Get("role").(string); ok {
		return booking.Role(r)
	}
	return ""
}

// writeError maps core sentinel errors to HTTP responses. The wrapped message
// is safe to show: the core phrases it for API consumers. Anything that is
// not a sentinel is an internal failure and returns an opaque 500.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
