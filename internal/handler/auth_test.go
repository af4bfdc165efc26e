package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/dinner-reservation/internal/config"
	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
	"github.com/iliyamo/dinner-reservation/internal/repository"
	"github.com/iliyamo/dinner-reservation/internal/session"
	"github.com/iliyamo/dinner-reservation/internal/store"
)

func authFixture(t *testing.T) *AuthHandler {
	t.Helper()
	st := store.NewMemory()
	if err := st.Put(data.KeyUsers, []model.User{{ID: "h1", Email: "h@example.com"}}); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(data.KeyDinners, []model.Dinner{{ID: "d1", Title: "x"}}); err != nil {
		t.Fatal(err)
	}
	dm := data.NewManager(st, "")
	if err := dm.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{
		JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost,
	}
	return NewAuthHandler(cfg, dm,
		repository.NewUserRepo(dm, cfg.BcryptCost),
		repository.NewTokenRepo(st),
		session.NewManager(st),
	)
}

func doPOST(t *testing.T, h echo.HandlerFunc, target, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	var out map[string]json.RawMessage
	if len(rec.Body.Bytes()) > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestRegisterLoginFlow(t *testing.T) {
	h := authFixture(t)

	rec, body := doPOST(t, h.Register, "/v1/auth/register",
		`{"name":"Ada","email":"Ada@Example.com","password":"s3cret","type":"host"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body %s", rec.Code, rec.Body.String())
	}
	var u userPart
	if err := json.Unmarshal(body["user"], &u); err != nil {
		t.Fatal(err)
	}
	if u.Email != "ada@example.com" || u.Type != "host" {
		t.Fatalf("user: got %+v", u)
	}
	var access tokenPart
	if err := json.Unmarshal(body["access"], &access); err != nil || access.Token == "" {
		t.Fatalf("access token missing: %v", err)
	}

	// Registration installs the session immediately.
	su, ok := h.Session.Get()
	if !ok || su.Type != "host" {
		t.Fatalf("session after register: got (%+v, %v)", su, ok)
	}

	// Login with the wrong password fails; the right one succeeds.
	rec, _ = doPOST(t, h.Login, "/v1/auth/login", `{"email":"ada@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: got %d, want 401", rec.Code)
	}
	rec, _ = doPOST(t, h.Login, "/v1/auth/login", `{"email":"ADA@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	h := authFixture(t)
	payload := `{"name":"Ada","email":"ada@example.com","password":"x","type":"guest"}`
	if rec, _ := doPOST(t, h.Register, "/v1/auth/register", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", rec.Code)
	}
	if rec, _ := doPOST(t, h.Register, "/v1/auth/register", payload); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: got %d, want 409", rec.Code)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	h := authFixture(t)
	_, body := doPOST(t, h.Register, "/v1/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"x","type":"guest"}`)
	var refresh tokenPart
	if err := json.Unmarshal(body["refresh"], &refresh); err != nil || refresh.Token == "" {
		t.Fatalf("refresh token missing: %v", err)
	}

	rec, body2 := doPOST(t, h.Refresh, "/v1/auth/refresh",
		`{"refresh_token":"`+refresh.Token+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: got %d, body %s", rec.Code, rec.Body.String())
	}
	var rotated tokenPart
	if err := json.Unmarshal(body2["refresh"], &rotated); err != nil {
		t.Fatal(err)
	}
	if rotated.Token == refresh.Token {
		t.Fatal("refresh token was not rotated")
	}

	// The old token is revoked.
	rec, _ = doPOST(t, h.Refresh, "/v1/auth/refresh", `{"refresh_token":"`+refresh.Token+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replay: got %d, want 401", rec.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	h := authFixture(t)
	_, body := doPOST(t, h.Register, "/v1/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"x","type":"guest"}`)
	var refresh tokenPart
	if err := json.Unmarshal(body["refresh"], &refresh); err != nil {
		t.Fatal(err)
	}
	if !h.Session.IsLoggedIn() {
		t.Fatal("expected a live session after register")
	}

	rec, _ := doPOST(t, h.Logout, "/v1/auth/logout", `{"refresh_token":"`+refresh.Token+`"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: got %d, body %s", rec.Code, rec.Body.String())
	}
	if h.Session.IsLoggedIn() {
		t.Fatal("session still live after logout")
	}
	// The revoked token can no longer refresh.
	rec, _ = doPOST(t, h.Refresh, "/v1/auth/refresh", `{"refresh_token":"`+refresh.Token+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: got %d, want 401", rec.Code)
	}
}

func TestSessionStateEndpoint(t *testing.T) {
	h := authFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
	rec := httptest.NewRecorder()
	if err := h.SessionState(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	var out struct {
		LoggedIn bool   `json:"logged_in"`
		UserType string `json:"user_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.LoggedIn {
		t.Fatal("logged_in before any login")
	}

	doPOST(t, h.Register, "/v1/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"x","type":"host"}`)

	rec = httptest.NewRecorder()
	if err := h.SessionState(e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/session", nil), rec)); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if !out.LoggedIn || out.UserType != "host" {
		t.Fatalf("session state: got %+v, want logged-in host", out)
	}
}
