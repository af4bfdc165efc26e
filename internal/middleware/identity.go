package middleware

// identity.go defines helpers shared by middleware and handlers for reading
// the authenticated identity that JWTAuth stored in the Echo context.

import (
	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id, or "" when the request
// carries no valid token.
func UserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}

// Role returns the authenticated user's role ("host" or "guest"), or ""
// when the request carries no valid token.
func Role(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}
