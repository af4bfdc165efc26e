package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
	"github.com/iliyamo/dinner-reservation/internal/repository"
	"github.com/iliyamo/dinner-reservation/internal/store"
)

// recordingInvalidator counts invalidation calls in place of the Redis
// listing cache.
type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) InvalidateListings(context.Context) { r.calls++ }

func hostFixture(t *testing.T) (*HostDinnerHandler, *recordingInvalidator) {
	t.Helper()
	st := store.NewMemory()
	if err := st.Put(data.KeyDinners, []model.Dinner{
		{ID: "d1", Title: "Popular Table", HostID: "h1",
			Date: "2099-05-22", Time: "18:00", Price: 30, MaxGuests: 8, IsPublic: true},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(data.KeyUsers, []model.User{
		{ID: "h1", Name: "Tiffany Chen", Email: "tiffany@example.com", Type: model.RoleHost},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(data.KeyReservations, []model.Reservation{
		{ID: "r1", DinnerID: "d1", Seats: 5, Status: model.ReservationConfirmed},
	}); err != nil {
		t.Fatal(err)
	}
	dm := data.NewManager(st, "")
	if err := dm.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	inv := &recordingInvalidator{}
	h := NewHostDinnerHandler(dm,
		repository.NewDinnerRepo(dm),
		repository.NewReservationRepo(dm),
		repository.NewUserRepo(dm, 4),
		inv)
	return h, inv
}

func hostRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, pathParam ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "h1")
	c.Set("role", "host")
	if len(pathParam) == 2 {
		c.SetParamNames(pathParam[0])
		c.SetParamValues(pathParam[1])
	}
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func TestCreateDinnerDropsCachedListings(t *testing.T) {
	h, inv := hostFixture(t)
	rec := hostRequest(t, h.Create, http.MethodPost, "/v1/host/dinners",
		`{"title":"Dumpling Workshop","date":"2099-06-01","time":"19:00","maxGuests":8,"price":25}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if inv.calls != 1 {
		t.Fatalf("listing invalidations: got %d, want 1", inv.calls)
	}
}

func TestUpdateDinnerDropsCachedListings(t *testing.T) {
	h, inv := hostFixture(t)
	rec := hostRequest(t, h.Update, http.MethodPatch, "/v1/host/dinners/d1",
		`{"title":"Renamed Table"}`, "id", "d1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if inv.calls != 1 {
		t.Fatalf("listing invalidations: got %d, want 1", inv.calls)
	}
}

func TestDeleteDinnerDropsCachedListings(t *testing.T) {
	h, inv := hostFixture(t)
	rec := hostRequest(t, h.Delete, http.MethodDelete, "/v1/host/dinners/d1", "", "id", "d1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204 (%s)", rec.Code, rec.Body.String())
	}
	if inv.calls != 1 {
		t.Fatalf("listing invalidations: got %d, want 1", inv.calls)
	}
}

func TestUpdateDinnerRejectsShrinkBelowBooked(t *testing.T) {
	h, inv := hostFixture(t)
	// Five seats are booked on d1; shrinking below that must be refused.
	rec := hostRequest(t, h.Update, http.MethodPatch, "/v1/host/dinners/d1",
		`{"maxGuests":4}`, "id", "d1")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409 (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if string(body["booked_seats"]) != "5" {
		t.Fatalf("booked_seats: got %s, want 5", body["booked_seats"])
	}
	if inv.calls != 0 {
		t.Fatalf("listing invalidations after rejected update: got %d, want 0", inv.calls)
	}
	if d, _ := h.Dinners.FindByID("d1"); d.MaxGuests != 8 {
		t.Fatalf("MaxGuests after rejected shrink: got %d, want 8", d.MaxGuests)
	}
}
