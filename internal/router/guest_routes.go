package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dinner-reservation/internal/handler"
	"github.com/iliyamo/dinner-reservation/internal/middleware"
)

// RegisterGuest registers the booking endpoints under /v1. All routes
// require a valid JWT; both roles are accepted since hosts book seats at
// other people's dinners too. Callers can book seats on a dinner, view
// their own reservations, change a booking and cancel it.
func RegisterGuest(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("host", "guest"),
	)
	// Note: dinner browsing and search are registered on the public router
	// so that visitors can look around before signing up. Guest-specific
	// endpoints begin here.
	g.POST("/reservations", h.Create)
	g.GET("/reservations", h.Mine)
	g.PUT("/reservations/:id", h.Update)
	g.PATCH("/reservations/:id", h.Update)
	g.DELETE("/reservations/:id", h.Cancel)
}
