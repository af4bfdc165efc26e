package repository

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
	"github.com/iliyamo/dinner-reservation/internal/store"
)

// newTestData builds a loaded Manager over an in-memory store seeded with
// the given collections.
func newTestData(t *testing.T, dinners []model.Dinner, users []model.User, reservations []model.Reservation) *data.Manager {
	t.Helper()
	st := store.NewMemory()
	if err := st.Put(data.KeyDinners, dinners); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(data.KeyUsers, users); err != nil {
		t.Fatal(err)
	}
	if len(reservations) > 0 {
		if err := st.Put(data.KeyReservations, reservations); err != nil {
			t.Fatal(err)
		}
	}
	m := data.NewManager(st, "")
	if err := m.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	return m
}

// dateIn returns the calendar date the given number of days from now.
func dateIn(days int) string {
	return time.Now().AddDate(0, 0, days).Format(model.DateLayout)
}

var testHosts = []model.User{
	{ID: "h1", Name: "Tiffany Chen", Email: "tiffany@example.com", Type: model.RoleHost},
	{ID: "h2", Name: "Marco Alvarez", Email: "marco@example.com", Type: model.RoleHost},
}
