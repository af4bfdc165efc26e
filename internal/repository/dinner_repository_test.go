package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
)

func TestUpcomingDateOnlyComparison(t *testing.T) {
	dinners := []model.Dinner{
		{ID: "past", Title: "Yesterday", Date: dateIn(-1), Time: "18:00", IsPublic: true, MaxGuests: 4},
		// Today with a time that has already passed still counts as
		// upcoming: only the calendar date is compared here.
		{ID: "today", Title: "Today", Date: dateIn(0), Time: "00:01", IsPublic: true, MaxGuests: 4},
		{ID: "future", Title: "Tomorrow", Date: dateIn(1), Time: "18:00", IsPublic: true, MaxGuests: 4},
		{ID: "badDate", Title: "Broken", Date: "not-a-date", Time: "18:00", IsPublic: true, MaxGuests: 4},
	}
	repo := NewDinnerRepo(newTestData(t, dinners, testHosts, nil))

	got := map[string]bool{}
	for _, d := range repo.Upcoming(time.Now()) {
		got[d.ID] = true
	}
	if got["past"] {
		t.Error("past dinner included in upcoming")
	}
	if !got["today"] {
		t.Error("today's dinner missing from upcoming even though its time has passed")
	}
	if !got["future"] {
		t.Error("future dinner missing from upcoming")
	}
	if got["badDate"] {
		t.Error("dinner with malformed date included in upcoming")
	}
}

func TestAvailableFiltersDraftsFullAndStarted(t *testing.T) {
	dinners := []model.Dinner{
		{ID: "open", Title: "Open", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 4},
		{ID: "draft", Title: "Draft", Date: dateIn(2), Time: "18:00", IsPublic: false, MaxGuests: 4},
		{ID: "full", Title: "Full", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 2},
		{ID: "started", Title: "Started", Date: dateIn(-1), Time: "18:00", IsPublic: true, MaxGuests: 4},
	}
	reservations := []model.Reservation{
		{ID: "r1", DinnerID: "full", Seats: 2, Status: model.ReservationConfirmed},
	}
	repo := NewDinnerRepo(newTestData(t, dinners, testHosts, reservations))

	got := repo.Available(time.Now())
	if len(got) != 1 || got[0].ID != "open" {
		t.Fatalf("available: got %+v, want only the open dinner", got)
	}
}

func TestAvailableReflectsCancelledSeats(t *testing.T) {
	dinners := []model.Dinner{
		{ID: "d1", Title: "Tight Table", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 2},
	}
	reservations := []model.Reservation{
		{ID: "r1", DinnerID: "d1", Seats: 2, Status: model.ReservationConfirmed},
	}
	dm := newTestData(t, dinners, testHosts, reservations)
	dinnerRepo := NewDinnerRepo(dm)
	resRepo := NewReservationRepo(dm)

	if got := dinnerRepo.Available(time.Now()); len(got) != 0 {
		t.Fatalf("available before cancel: got %+v, want none", got)
	}
	if !resRepo.Cancel("r1") {
		t.Fatal("Cancel: reservation not found")
	}
	got := dinnerRepo.Available(time.Now())
	if len(got) != 1 || got[0].CurrentGuests != 0 {
		t.Fatalf("available after cancel: got %+v, want the dinner with 0 guests", got)
	}
}

func TestCreateRecordsSideLog(t *testing.T) {
	dm := newTestData(t, nil, testHosts, nil)
	repo := NewDinnerRepo(dm)

	d, err := repo.Create(NewDinner{
		Title: "Dumpling Workshop", Date: dateIn(3), Time: "19:00",
		MaxGuests: 8, HostID: "h1", HostName: "Tiffany Chen", IsPublic: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID == "" {
		t.Fatal("Create: missing id")
	}

	var side []model.Dinner
	if !dm.Store().Get(data.KeyNewDinners, &side) || len(side) != 1 || side[0].ID != d.ID {
		t.Fatalf("side-log: got %+v, want the created dinner", side)
	}
}

func TestUpdateDinnerRefreshesSideLog(t *testing.T) {
	dm := newTestData(t, nil, testHosts, nil)
	repo := NewDinnerRepo(dm)

	d, err := repo.Create(NewDinner{
		Title: "Old Title", Date: dateIn(3), Time: "19:00",
		MaxGuests: 8, HostID: "h1", HostName: "Tiffany Chen", IsPublic: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	newTitle := "New Title"
	if err := repo.Update(d.ID, DinnerPatch{Title: &newTitle}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, ok := repo.FindByID(d.ID)
	if !ok || got.Title != newTitle {
		t.Fatalf("FindByID after update: got %+v", got)
	}
	var side []model.Dinner
	dm.Store().Get(data.KeyNewDinners, &side)
	if len(side) != 1 || side[0].Title != newTitle {
		t.Fatalf("side-log after update: got %+v, want the edited title", side)
	}
}

func TestUpdateUnknownDinner(t *testing.T) {
	repo := NewDinnerRepo(newTestData(t, nil, testHosts, nil))
	title := "x"
	if err := repo.Update("nope", DinnerPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update unknown id: got %v, want ErrNotFound", err)
	}
}

func TestUpdateRejectsCapacityBelowBookedSeats(t *testing.T) {
	dinners := []model.Dinner{
		{ID: "d1", Title: "Popular Table", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 8},
	}
	reservations := []model.Reservation{
		{ID: "r1", DinnerID: "d1", Seats: 3, Status: model.ReservationConfirmed},
		{ID: "r2", DinnerID: "d1", Seats: 2, Status: model.ReservationConfirmed},
	}
	repo := NewDinnerRepo(newTestData(t, dinners, testHosts, reservations))

	shrink := 4 // five seats already booked
	err := repo.Update("d1", DinnerPatch{MaxGuests: &shrink})
	var overbook *OverbookError
	if !errors.As(err, &overbook) {
		t.Fatalf("Update shrink below booked: got %v, want OverbookError", err)
	}
	if overbook.Booked != 5 {
		t.Fatalf("OverbookError booked count: got %d, want 5", overbook.Booked)
	}
	if d, _ := repo.FindByID("d1"); d.MaxGuests != 8 {
		t.Fatalf("MaxGuests after rejected shrink: got %d, want 8", d.MaxGuests)
	}

	// Shrinking exactly to the booked count is allowed.
	exact := 5
	if err := repo.Update("d1", DinnerPatch{MaxGuests: &exact}); err != nil {
		t.Fatalf("Update shrink to booked count: %v", err)
	}
	if d, _ := repo.FindByID("d1"); d.MaxGuests != 5 {
		t.Fatalf("MaxGuests after shrink to booked count: got %d, want 5", d.MaxGuests)
	}
}

func TestConcurrentUpdatesPersistCleanly(t *testing.T) {
	const n = 8
	dinners := make([]model.Dinner, n)
	for i := range dinners {
		dinners[i] = model.Dinner{
			ID: fmt.Sprintf("d%d", i), Title: "untouched",
			Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 6,
		}
	}
	dm := newTestData(t, dinners, testHosts, nil)
	repo := NewDinnerRepo(dm)

	// Hammer each dinner from its own goroutine so patches run while other
	// updates are being written to the store.
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("d%d", i)
			for round := 0; round < 25; round++ {
				title := fmt.Sprintf("dinner-%d-round-%d", i, round)
				if err := repo.Update(id, DinnerPatch{Title: &title}); err != nil {
					t.Errorf("Update %s: %v", id, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	// A fresh manager on the same store must see every final title.
	reloaded := data.NewManager(dm.Store(), "")
	if err := reloaded.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("d%d", i)
		want := fmt.Sprintf("dinner-%d-round-24", i)
		d, ok := NewDinnerRepo(reloaded).FindByID(id)
		if !ok || d.Title != want {
			t.Fatalf("reloaded %s: got %q, want %q", id, d.Title, want)
		}
	}
}

func TestDeleteCascadesReservations(t *testing.T) {
	dinners := []model.Dinner{
		{ID: "d1", Title: "Doomed Dinner", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 6},
		{ID: "d2", Title: "Safe Dinner", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 6},
	}
	reservations := []model.Reservation{
		{ID: "r1", DinnerID: "d1", Seats: 2, Status: model.ReservationConfirmed},
		{ID: "r2", DinnerID: "d1", Seats: 1, Status: model.ReservationConfirmed},
		{ID: "r3", DinnerID: "d2", Seats: 1, Status: model.ReservationConfirmed},
	}
	dm := newTestData(t, dinners, testHosts, reservations)
	dinnerRepo := NewDinnerRepo(dm)
	resRepo := NewReservationRepo(dm)

	if !dinnerRepo.Delete("d1") {
		t.Fatal("Delete: dinner not found")
	}
	if _, ok := dinnerRepo.FindByID("d1"); ok {
		t.Fatal("deleted dinner still findable")
	}
	if got := resRepo.ByDinner("d1"); len(got) != 0 {
		t.Fatalf("reservations on deleted dinner: got %+v, want none", got)
	}
	if got := resRepo.ByDinner("d2"); len(got) != 1 {
		t.Fatalf("unrelated reservations: got %d, want 1 untouched", len(got))
	}
}

func TestByHostIncludesDrafts(t *testing.T) {
	dinners := []model.Dinner{
		{ID: "d1", HostID: "h1", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 6},
		{ID: "d2", HostID: "h1", Date: dateIn(2), Time: "18:00", IsPublic: false, MaxGuests: 6},
		{ID: "d3", HostID: "h2", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 6},
	}
	repo := NewDinnerRepo(newTestData(t, dinners, testHosts, nil))
	if got := repo.ByHost("h1"); len(got) != 2 {
		t.Fatalf("ByHost: got %d dinners, want 2 including the draft", len(got))
	}
}

func TestSearchRemembersTerm(t *testing.T) {
	dinners := []model.Dinner{
		{ID: "d1", Title: "Vegetarian Pasta Night", Date: dateIn(2), Time: "18:00", IsPublic: true, MaxGuests: 6},
	}
	dm := newTestData(t, dinners, testHosts, nil)
	repo := NewDinnerRepo(dm)

	if got := repo.Search(SearchQuery{Term: "pasta"}, time.Now()); len(got) != 1 {
		t.Fatalf("search pasta: got %d, want 1", len(got))
	}
	// A miss is still remembered.
	if got := repo.Search(SearchQuery{Term: "sushi"}, time.Now()); len(got) != 0 {
		t.Fatalf("search sushi: got %d, want 0", len(got))
	}
	recent := dm.RecentSearches()
	if len(recent) != 2 || recent[0] != "sushi" || recent[1] != "pasta" {
		t.Fatalf("recent searches: got %v, want [sushi pasta]", recent)
	}
}
