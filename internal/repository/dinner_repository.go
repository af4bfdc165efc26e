package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
)

// DinnerRepo provides CRUD and query operations over the dinner collection.
// All reads fill the derived CurrentGuests field from the reservation
// collection before a dinner leaves the repository; the stored copy is
// ignored.
type DinnerRepo struct {
	data *data.Manager
}

// NewDinnerRepo returns a DinnerRepo bound to the given data manager.
func NewDinnerRepo(m *data.Manager) *DinnerRepo { return &DinnerRepo{data: m} }

// NewDinner carries the host-supplied fields for Create.
type NewDinner struct {
	Title       string
	Description string
	Category    string
	Cuisine     string
	Location    string
	Date        string
	Time        string
	Price       float64
	MaxGuests   int
	HostID      string
	HostName    string
	Image       string
	Attribution *model.ImageAttribution
	IsPublic    bool
}

// DinnerPatch holds optional updates for Update. Nil fields are left
// unchanged.
type DinnerPatch struct {
	Title       *string
	Description *string
	Category    *string
	Cuisine     *string
	Location    *string
	Date        *string
	Time        *string
	Price       *float64
	MaxGuests   *int
	Image       *string
	Attribution *model.ImageAttribution
	IsPublic    *bool
}

// Create assigns an id and timestamps, appends the dinner to the collection
// and records it in the newlyCreatedDinners side-log. The persistence error,
// if any, is non-fatal and returned alongside the created record.
func (r *DinnerRepo) Create(f NewDinner) (model.Dinner, error) {
	now := time.Now().UTC()
	d := model.Dinner{
		ID:               uuid.NewString(),
		Title:            f.Title,
		Description:      f.Description,
		Category:         f.Category,
		Cuisine:          f.Cuisine,
		Location:         f.Location,
		Date:             f.Date,
		Time:             f.Time,
		Price:            f.Price,
		MaxGuests:        f.MaxGuests,
		HostID:           f.HostID,
		HostName:         f.HostName,
		Image:            f.Image,
		ImageAttribution: f.Attribution,
		IsPublic:         f.IsPublic,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := r.data.Update(func(c *data.Collections) []string {
		c.Dinners = append(c.Dinners, d)
		return []string{data.KeyDinners}
	})
	r.data.AppendNewDinner(d)
	return d, err
}

// Update merges patch into the dinner with the given id and stamps
// UpdatedAt. ErrNotFound is returned for an unknown id, and a patch that
// would lower MaxGuests below the seats already booked is rejected with an
// OverbookError carrying the booked count. The booked check runs inside
// the same locked callback as the merge so a concurrent booking cannot
// slip in between.
func (r *DinnerRepo) Update(id string, patch DinnerPatch) error {
	var updated model.Dinner
	var opErr error
	persistErr := r.data.Update(func(c *data.Collections) []string {
		for i := range c.Dinners {
			if c.Dinners[i].ID != id {
				continue
			}
			if patch.MaxGuests != nil {
				booked := bookedSeats(id, c.Reservations)
				if *patch.MaxGuests < booked {
					opErr = &OverbookError{Booked: booked}
					return nil
				}
			}
			applyDinnerPatch(&c.Dinners[i], patch)
			c.Dinners[i].UpdatedAt = time.Now().UTC()
			updated = c.Dinners[i]
			return []string{data.KeyDinners}
		}
		opErr = ErrNotFound
		return nil
	})
	if opErr != nil {
		return opErr
	}
	r.data.ReplaceNewDinner(updated)
	return persistErr
}

func applyDinnerPatch(d *model.Dinner, p DinnerPatch) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Cuisine != nil {
		d.Cuisine = *p.Cuisine
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Time != nil {
		d.Time = *p.Time
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.MaxGuests != nil {
		d.MaxGuests = *p.MaxGuests
	}
	if p.Image != nil {
		d.Image = *p.Image
	}
	if p.Attribution != nil {
		d.ImageAttribution = p.Attribution
	}
	if p.IsPublic != nil {
		d.IsPublic = *p.IsPublic
	}
}

// Delete removes the dinner and cascades deletion of every reservation
// referencing it. Both happen inside one Update call, so from the caller's
// point of view the cascade is atomic: either the dinner existed and both
// collections changed, or nothing did.
func (r *DinnerRepo) Delete(id string) bool {
	found := false
	_ = r.data.Update(func(c *data.Collections) []string {
		kept := c.Dinners[:0]
		for _, d := range c.Dinners {
			if d.ID == id {
				found = true
				continue
			}
			kept = append(kept, d)
		}
		if !found {
			return nil
		}
		c.Dinners = kept
		keptRes := c.Reservations[:0]
		for _, res := range c.Reservations {
			if res.DinnerID != id {
				keptRes = append(keptRes, res)
			}
		}
		c.Reservations = keptRes
		return []string{data.KeyDinners, data.KeyReservations}
	})
	if found {
		r.data.RemoveNewDinner(id)
	}
	return found
}

// FindByID returns the dinner with the given id, with CurrentGuests derived.
func (r *DinnerRepo) FindByID(id string) (model.Dinner, bool) {
	var out model.Dinner
	found := false
	r.data.View(func(c data.Collections) {
		for _, d := range c.Dinners {
			if d.ID == id {
				out = withDerivedGuests(d, c.Reservations)
				found = true
				return
			}
		}
	})
	return out, found
}

// ByHost returns every dinner belonging to hostID, drafts included.
func (r *DinnerRepo) ByHost(hostID string) []model.Dinner {
	var out []model.Dinner
	r.data.View(func(c data.Collections) {
		for _, d := range c.Dinners {
			if d.HostID == hostID {
				out = append(out, withDerivedGuests(d, c.Reservations))
			}
		}
	})
	return out
}

// Upcoming returns dinners whose calendar date is on or after asOf's date.
// Only the date is compared here; Available uses the full date+time.
// Dinners with a malformed date are excluded.
func (r *DinnerRepo) Upcoming(asOf time.Time) []model.Dinner {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	var out []model.Dinner
	r.data.View(func(c data.Collections) {
		for _, d := range c.Dinners {
			dd, ok := d.Day(asOf.Location())
			if !ok || dd.Before(day) {
				continue
			}
			out = append(out, withDerivedGuests(d, c.Reservations))
		}
	})
	return out
}

// Available returns public dinners starting at or after asOf that still
// have free seats. This is the one canonical definition of "available"; no
// call site gets its own variant.
func (r *DinnerRepo) Available(asOf time.Time) []model.Dinner {
	var out []model.Dinner
	r.data.View(func(c data.Collections) {
		for _, d := range c.Dinners {
			if !d.IsPublic {
				continue
			}
			starts, ok := d.StartsAt(asOf.Location())
			if !ok || starts.Before(asOf) {
				continue
			}
			if RemainingSeats(d, c.Reservations, "") <= 0 {
				continue
			}
			out = append(out, withDerivedGuests(d, c.Reservations))
		}
	})
	return out
}

// Search filters the upcoming set with the given query. The term is also
// remembered in the recent-search list when non-empty.
func (r *DinnerRepo) Search(q SearchQuery, asOf time.Time) []model.Dinner {
	matches := FilterDinners(r.Upcoming(asOf), q, asOf)
	if q.Term != "" {
		r.data.RememberSearch(q.Term)
	}
	return matches
}

func withDerivedGuests(d model.Dinner, reservations []model.Reservation) model.Dinner {
	d.CurrentGuests = bookedSeats(d.ID, reservations)
	return d
}
