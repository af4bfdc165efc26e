package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/dinner-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/dinner-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler. This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware. Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login
	// and refresh. Each handler generates or exchanges tokens itself.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented token is revoked and
	// a fresh pair is issued.
	g.POST("/refresh", a.Refresh)
	// Issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a JSON body with a `refresh_token` and invalidates it,
	// so no JWT is required on this route.
	g.POST("/logout", a.Logout)

	// Session state is readable without a token: it reports whether anyone
	// is logged in and as what role, which page-level code uses to decide
	// navigation.
	e.GET("/v1/session", a.SessionState)

	// Routes that require a valid access token. All handlers registered on
	// this group execute the JWTAuth middleware first. Both roles are
	// accepted here; the role-specific route files narrow further.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("host", "guest"))
	auth.GET("/me", a.Me)
	// Authenticated logout without a body revokes every refresh token the
	// caller holds.
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints. These routes
// return derived guest counts on every dinner and apply no JWT or role
// middleware so visitors can browse before signing up. Optional middleware
// (response caching, rate limiting) can be passed in.
func RegisterPublic(e *echo.Echo, p *handler.PublicDinnerHandler, img *handler.ImageHandler, cache ...echo.MiddlewareFunc) {
	// The response cache covers the read-only browse routes. Search stays
	// uncached because each hit also records the term in recent searches.
	e.GET("/v1/dinners", p.Upcoming, cache...)
	// Public dinners that have not started and still have free seats.
	e.GET("/v1/dinners/available", p.Available, cache...)
	// Dinner details by id.
	e.GET("/v1/dinners/:id", p.Detail, cache...)
	// Free-text and structured search over the upcoming set.
	e.GET("/v1/search/dinners", p.Search)
	// The five most recent search terms, newest first.
	e.GET("/v1/search/recent", p.RecentSearches)
	// Photo suggestions for the dinner form; serves placeholders when the
	// upstream proxy is down.
	e.GET("/v1/images/search", img.Search, cache...)
}
