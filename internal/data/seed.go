package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/iliyamo/dinner-reservation/internal/model"
)

// seedFetchTimeout bounds the seed document fetch so a dead host cannot
// stall startup.
const seedFetchTimeout = 10 * time.Second

// SeedDocument is the shape of the bundled seed JSON.
type SeedDocument struct {
	Dinners      []model.Dinner      `json:"dinners"`
	Reservations []model.Reservation `json:"reservations"`
	Users        []model.User        `json:"users"`
}

// fetchSeed retrieves the seed document.  Any failure (no URL configured,
// network error, bad status, malformed body) falls back to the built-in
// samples so the catalogue is never empty.
func (m *Manager) fetchSeed(ctx context.Context) SeedDocument {
	if m.seedURL == "" {
		return builtinSeed()
	}
	doc, err := m.fetchSeedURL(ctx)
	if err != nil {
		log.Printf("data: seed fetch failed, using built-in samples: %v", err)
		return builtinSeed()
	}
	return doc
}

func (m *Manager) fetchSeedURL(ctx context.Context) (SeedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.seedURL, nil)
	if err != nil {
		return SeedDocument{}, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return SeedDocument{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SeedDocument{}, fmt.Errorf("seed fetch: status %d", resp.StatusCode)
	}
	var doc SeedDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return SeedDocument{}, fmt.Errorf("seed decode: %w", err)
	}
	return doc, nil
}

// builtinSeed returns a small fixed catalogue used when neither a persisted
// snapshot nor the seed document is available.
func builtinSeed() SeedDocument {
	created := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	return SeedDocument{
		Dinners: []model.Dinner{
			{
				ID:          "1",
				Title:       "Vegetarian Pasta Night",
				Description: "Delicious homemade pasta with a variety of vegetarian sauces and toppings. Bring your appetite!",
				Category:    "vegetarian",
				Date:        "2025-05-22",
				Time:        "18:00",
				Price:       27,
				MaxGuests:   6,
				HostID:      "2",
				HostName:    "Tiffany Chen",
				Image:       "https://images.unsplash.com/photo-1556761223-4c4282c73f77",
				IsPublic:    true,
				CreatedAt:   created,
				UpdatedAt:   created,
			},
			{
				ID:          "2",
				Title:       "Breakfast for Dinner",
				Description: "Fluffy pancakes, crispy bacon and all the breakfast favourites, served at a much more civilised hour.",
				Category:    "casual",
				Date:        "2025-05-24",
				Time:        "19:00",
				Price:       19,
				MaxGuests:   8,
				HostID:      "3",
				HostName:    "Marco Alvarez",
				Image:       "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b",
				IsPublic:    true,
				CreatedAt:   created,
				UpdatedAt:   created,
			},
			{
				ID:          "3",
				Title:       "Taco Tuesday Fiesta",
				Description: "Build-your-own tacos with slow-cooked fillings, fresh salsas and plenty of lime.",
				Category:    "mexican",
				Date:        "2025-05-27",
				Time:        "18:30",
				Price:       22,
				MaxGuests:   10,
				HostID:      "2",
				HostName:    "Tiffany Chen",
				Image:       "https://images.unsplash.com/photo-1504674900247-0877df9cc836",
				IsPublic:    true,
				CreatedAt:   created,
				UpdatedAt:   created,
			},
		},
		Users: []model.User{
			{ID: "2", Name: "Tiffany Chen", Email: "tiffany@example.com", Type: model.RoleHost, CreatedAt: created},
			{ID: "3", Name: "Marco Alvarez", Email: "marco@example.com", Type: model.RoleHost, CreatedAt: created},
		},
	}
}
