package repository

import (
	"strings"
	"time"

	"github.com/iliyamo/dinner-reservation/internal/model"
)

// SearchQuery defines the text term and structured filters for dinner
// search. Filters combine: a dinner must pass every filter that is set.
type SearchQuery struct {
	Term     string   // case-insensitive match against the text fields
	Category string   // exact category
	Date     string   // exact calendar date, model.DateLayout
	MaxPrice *float64 // inclusive upper price bound
	ThisWeek bool     // starts between asOf and asOf+7d
	Today    bool     // date string equals asOf's date
}

// FilterDinners applies q to the given dinner set. It is a pure boolean
// inclusion filter, no ranking and no pagination; callers paginate the
// result if they need to. The set passed in is expected to already be the
// upcoming/available slice appropriate for the page.
func FilterDinners(dinners []model.Dinner, q SearchQuery, asOf time.Time) []model.Dinner {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	today := asOf.Format(model.DateLayout)
	weekEnd := asOf.Add(7 * 24 * time.Hour)

	out := make([]model.Dinner, 0, len(dinners))
	for _, d := range dinners {
		if term != "" && !matchesTerm(d, term) {
			continue
		}
		if q.Category != "" && d.Category != q.Category {
			continue
		}
		if q.Date != "" && d.Date != q.Date {
			continue
		}
		if q.MaxPrice != nil && d.Price > *q.MaxPrice {
			continue
		}
		if q.Today && d.Date != today {
			continue
		}
		if q.ThisWeek {
			starts, ok := d.StartsAt(asOf.Location())
			if !ok || starts.Before(asOf) || starts.After(weekEnd) {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// matchesTerm reports whether term appears in any of the searchable fields:
// title, description, category, cuisine, location, host name, or as a
// substring of the raw date string.
func matchesTerm(d model.Dinner, term string) bool {
	for _, field := range []string{
		d.Title,
		d.Description,
		d.Category,
		d.Cuisine,
		d.Location,
		d.HostName,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return strings.Contains(d.Date, term)
}
