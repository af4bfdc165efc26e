package handler

import (
	"errors"   // sentinel error comparison
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // token expiry timestamps

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/dinner-reservation/internal/config"     // app configuration
	"github.com/iliyamo/dinner-reservation/internal/data"       // data manager (load guard)
	"github.com/iliyamo/dinner-reservation/internal/repository" // entity repositories
	"github.com/iliyamo/dinner-reservation/internal/session"    // current-user session
	"github.com/iliyamo/dinner-reservation/internal/utils"      // hashing, token issuing
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Data    *data.Manager
	Users   *repository.UserRepo
	Tokens  *repository.TokenRepo
	Session *session.Manager
}

func NewAuthHandler(cfg config.Config, m *data.Manager, u *repository.UserRepo, t *repository.TokenRepo, s *session.Manager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Data: m, Users: u, Tokens: t, Session: s}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Type     string `json:"type"` // host | guest
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register: create user, install the session and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}

	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	u, err := h.Users.Register(repository.NewUser{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
		Type:     req.Type,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		// A persistence failure is a warning, not a registration failure:
		// the account exists in memory for the rest of the session.
		c.Logger().Warnf("register: persist failed: %v", err)
	}

	h.Session.Set(u)

	return h.issueTokens(c, http.StatusCreated, u.ID, u.Name, u.Email, u.Type)
}

// Login: verify credentials, install the session and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	u, ok := h.Users.Authenticate(req.Email, req.Password)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	h.Session.Set(u)

	return h.issueTokens(c, http.StatusOK, u.ID, u.Name, u.Email, u.Type)
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	userID, err := h.Tokens.ValidateRefresh(hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(hash)

	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	u, ok := h.Users.FindByID(userID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	return h.issueTokens(c, http.StatusOK, u.ID, u.Name, u.Email, u.Type)
}

// RefreshAccess issues a new access token without rotating the refresh
// token. Useful for clients that refresh proactively and do not want to
// re-store a rotated token on every renewal.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	userID, err := h.Tokens.ValidateRefresh(utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	u, ok := h.Users.FindByID(userID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Type, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout: revoke the supplied refresh token (or all of the caller's tokens
// when only a bearer token is given) and clear the current session.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		h.Session.Clear()
		return c.NoContent(http.StatusNoContent)
	}

	// Fall back to the authenticated identity when no refresh token was
	// supplied; this revokes every session the user holds.
	uid, _ := c.Get("user_id").(string)
	if uid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
	}
	if err := h.Tokens.RevokeAllForUser(uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	h.Session.Clear()
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

// SessionState reports the current-session outputs page-level code reads to
// decide navigation: whether someone is logged in and as what.
func (h *AuthHandler) SessionState(c echo.Context) error {
	su, ok := h.Session.Get()
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"logged_in": false, "user_type": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"logged_in": true,
		"user_type": su.Type,
		"user": userPart{
			ID:    su.ID,
			Name:  su.Name,
			Email: su.Email,
			Type:  su.Type,
		},
	})
}

func (h *AuthHandler) issueTokens(c echo.Context, status int, id, name, email, role string) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(id, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(status, authResp{
		User:    userPart{ID: id, Name: name, Email: email, Type: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}
