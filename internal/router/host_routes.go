package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dinner-reservation/internal/handler"    // host handlers
	"github.com/iliyamo/dinner-reservation/internal/middleware" // JWT + role middlewares
)

// RegisterHost registers host-scoped endpoints under /v1/host.
// All routes require a valid JWT and the host role; ownership of the
// targeted dinner is validated inside the handlers.
func RegisterHost(e *echo.Echo, h *handler.HostDinnerHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/host",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("host"),
	)

	// ---- Dinners ----
	g.POST("/dinners", h.Create)
	g.GET("/dinners", h.Mine)
	g.PUT("/dinners/:id", h.Update)
	g.PATCH("/dinners/:id", h.Update) // allow partial updates via PATCH as well
	g.DELETE("/dinners/:id", h.Delete)

	// ---- Guest lists ----
	// Reservations on one of the caller's dinners.
	g.GET("/dinners/:id/reservations", h.GuestList)
}
