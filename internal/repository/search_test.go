package repository

import (
	"testing"
	"time"

	"github.com/iliyamo/dinner-reservation/internal/model"
)

func searchSet() []model.Dinner {
	return []model.Dinner{
		{
			ID: "pasta", Title: "Vegetarian Pasta Night", Description: "Homemade pasta",
			Category: "vegetarian", Cuisine: "italian", Location: "Berlin",
			HostName: "Tiffany Chen", Date: dateIn(1), Time: "18:00", Price: 27,
		},
		{
			ID: "tacos", Title: "Taco Tuesday", Description: "Build your own",
			Category: "mexican", Cuisine: "mexican", Location: "Madrid",
			HostName: "Marco Alvarez", Date: dateIn(3), Time: "19:00", Price: 22,
		},
		{
			ID: "omakase", Title: "Omakase Evening", Description: "Chef's choice sushi",
			Category: "japanese", Cuisine: "japanese", Location: "Berlin",
			HostName: "Yuki Tanaka", Date: dateIn(10), Time: "20:00", Price: 85,
		},
	}
}

func ids(dinners []model.Dinner) []string {
	out := make([]string, 0, len(dinners))
	for _, d := range dinners {
		out = append(out, d.ID)
	}
	return out
}

func TestFilterDinners(t *testing.T) {
	set := searchSet()
	now := time.Now()
	maxPrice := 30.0

	cases := []struct {
		name string
		q    SearchQuery
		want []string
	}{
		{"empty query keeps all", SearchQuery{}, []string{"pasta", "tacos", "omakase"}},
		{"term matches title", SearchQuery{Term: "pasta"}, []string{"pasta"}},
		{"term is case-insensitive", SearchQuery{Term: "TACO"}, []string{"tacos"}},
		{"term matches description", SearchQuery{Term: "sushi"}, []string{"omakase"}},
		{"term matches host name", SearchQuery{Term: "tiffany"}, []string{"pasta"}},
		{"term matches location", SearchQuery{Term: "berlin"}, []string{"pasta", "omakase"}},
		{"term miss", SearchQuery{Term: "barbecue"}, nil},
		{"category filter", SearchQuery{Category: "mexican"}, []string{"tacos"}},
		{"date filter", SearchQuery{Date: dateIn(3)}, []string{"tacos"}},
		{"max price", SearchQuery{MaxPrice: &maxPrice}, []string{"pasta", "tacos"}},
		{"this week", SearchQuery{ThisWeek: true}, []string{"pasta", "tacos"}},
		{"combined filters", SearchQuery{Term: "berlin", MaxPrice: &maxPrice}, []string{"pasta"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(FilterDinners(set, tc.q, now))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFilterDinnersToday(t *testing.T) {
	set := append(searchSet(), model.Dinner{
		ID: "tonight", Title: "Tonight Only", Date: dateIn(0), Time: "23:59", Price: 10,
	})
	got := ids(FilterDinners(set, SearchQuery{Today: true}, time.Now()))
	if len(got) != 1 || got[0] != "tonight" {
		t.Fatalf("today filter: got %v, want [tonight]", got)
	}
}

func TestRemainingSeatsClampedAtZero(t *testing.T) {
	d := model.Dinner{ID: "d1", MaxGuests: 2}
	reservations := []model.Reservation{
		{ID: "r1", DinnerID: "d1", Seats: 2},
		{ID: "r2", DinnerID: "d1", Seats: 1}, // overbooked legacy data
		{ID: "r3", DinnerID: "other", Seats: 5},
	}
	if got := RemainingSeats(d, reservations, ""); got != 0 {
		t.Fatalf("RemainingSeats: got %d, want 0", got)
	}
	if got := RemainingSeats(d, reservations, "r1"); got != 1 {
		t.Fatalf("RemainingSeats excluding r1: got %d, want 1", got)
	}
}
