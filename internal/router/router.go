package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/evlats/bookable/internal/handler"
	"github.com/evlats/bookable/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication: the
// health check and public slot discovery, so customers can browse a
// provider's open times before signing in.
func RegisterRoutes(e *echo.Echo, appts *handler.AppointmentHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/slots", appts.AvailableSlots)
}

// RegisterBooking registers the authenticated booking surface. Holds and
// appointment creation are customer actions; availability management is
// provider-only; the appointment lifecycle routes accept both sides and the
// core decides per-transition what each role may do.
func RegisterBooking(e *echo.Echo, appts *handler.AppointmentHandler, avail *handler.AvailabilityHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("customer", "provider"))

	// Reservation holds: customers pin a slot while completing checkout.
	customer := auth.Group("", middleware.RequireRole("customer"))
	customer.POST("/holds", appts.CreateHold)
	customer.DELETE("/holds/:id", appts.ReleaseHold)
	customer.POST("/appointments", appts.Create)

	// Appointment lifecycle, shared by both participants.
	auth.GET("/appointments", appts.List)
	auth.GET("/appointments/:id", appts.Get)
	auth.GET("/appointments/:id/cancellation", appts.CancellationQuote)
	auth.PATCH("/appointments/:id", appts.Update)
	auth.DELETE("/appointments/:id", appts.Cancel)

	// Availability management, provider-only.
	provider := auth.Group("/availability", middleware.RequireRole("provider"))
	provider.GET("", avail.ListWeekly)
	provider.PUT("", avail.UpsertWeekly)
	provider.DELETE("/:id", avail.DeleteWeekly)
	provider.GET("/exceptions", avail.ListExceptions)
	provider.PUT("/exceptions", avail.UpsertException)
	provider.DELETE("/exceptions/:id", avail.DeleteException)
}
