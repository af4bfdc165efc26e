package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
)

// ReservationRepo provides booking operations over the reservation
// collection. Every mutation recomputes remaining capacity fresh from the
// collection inside the same locked section; a cached guest count is never
// consulted, which keeps stale-capacity bugs out of the booking path.
type ReservationRepo struct {
	data *data.Manager
}

// NewReservationRepo returns a ReservationRepo bound to the given data
// manager.
func NewReservationRepo(m *data.Manager) *ReservationRepo {
	return &ReservationRepo{data: m}
}

// GuestBooking carries the guest-supplied fields for Create.
type GuestBooking struct {
	UserID      string
	GuestName   string
	Email       string
	Phone       string
	Seats       int
	Preferences []string
	Notes       string
}

// ReservationPatch holds optional updates for Update. Nil fields are left
// unchanged.
type ReservationPatch struct {
	Seats       *int
	Preferences *[]string
	Notes       *string
	Phone       *string
}

// GuestMatcher identifies a guest's reservations. The fallback chain is
// deliberately permissive so bookings made before the guest logged in are
// still found: userId match first, then case-insensitive email, then
// case-insensitive name.
type GuestMatcher struct {
	UserID string
	Email  string
	Name   string
}

// Create validates capacity for the dinner and appends the reservation.
// It returns ErrNotFound for an unknown dinner, ErrSeatCount for a
// non-positive seat request and *CapacityError when the dinner cannot take
// the requested seats; on failure the collection is left untouched.
func (r *ReservationRepo) Create(dinnerID string, g GuestBooking) (model.Reservation, error) {
	if g.Seats < 1 {
		return model.Reservation{}, ErrSeatCount
	}
	now := time.Now().UTC()
	res := model.Reservation{
		ID:          uuid.NewString(),
		DinnerID:    dinnerID,
		UserID:      g.UserID,
		GuestName:   g.GuestName,
		Email:       g.Email,
		Phone:       g.Phone,
		Seats:       g.Seats,
		Preferences: g.Preferences,
		Notes:       g.Notes,
		Status:      model.ReservationConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var opErr error
	persistErr := r.data.Update(func(c *data.Collections) []string {
		dinner, ok := findDinner(c.Dinners, dinnerID)
		if !ok {
			opErr = ErrNotFound
			return nil
		}
		available := RemainingSeats(dinner, c.Reservations, "")
		if g.Seats > available {
			opErr = &CapacityError{Available: available}
			return nil
		}
		c.Reservations = append(c.Reservations, res)
		return []string{data.KeyReservations}
	})
	if opErr != nil {
		return model.Reservation{}, opErr
	}
	return res, persistErr
}

// Update applies patch to an existing reservation, re-validating capacity
// with the reservation's own prior seats excluded from the booked sum.
func (r *ReservationRepo) Update(id string, patch ReservationPatch) (model.Reservation, error) {
	var (
		updated model.Reservation
		opErr   error
	)
	persistErr := r.data.Update(func(c *data.Collections) []string {
		idx := -1
		for i := range c.Reservations {
			if c.Reservations[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			opErr = ErrNotFound
			return nil
		}
		if patch.Seats != nil {
			if *patch.Seats < 1 {
				opErr = ErrSeatCount
				return nil
			}
			dinner, ok := findDinner(c.Dinners, c.Reservations[idx].DinnerID)
			if !ok {
				opErr = ErrNotFound
				return nil
			}
			available := RemainingSeats(dinner, c.Reservations, id)
			if *patch.Seats > available {
				opErr = &CapacityError{Available: available}
				return nil
			}
			c.Reservations[idx].Seats = *patch.Seats
		}
		if patch.Preferences != nil {
			c.Reservations[idx].Preferences = *patch.Preferences
		}
		if patch.Notes != nil {
			c.Reservations[idx].Notes = *patch.Notes
		}
		if patch.Phone != nil {
			c.Reservations[idx].Phone = *patch.Phone
		}
		c.Reservations[idx].UpdatedAt = time.Now().UTC()
		updated = c.Reservations[idx]
		return []string{data.KeyReservations}
	})
	if opErr != nil {
		return model.Reservation{}, opErr
	}
	return updated, persistErr
}

// Cancel deletes the reservation. Capacity is freed implicitly because it
// is always derived from the remaining rows.
func (r *ReservationRepo) Cancel(id string) bool {
	found := false
	_ = r.data.Update(func(c *data.Collections) []string {
		kept := c.Reservations[:0]
		for _, res := range c.Reservations {
			if res.ID == id {
				found = true
				continue
			}
			kept = append(kept, res)
		}
		if !found {
			return nil
		}
		c.Reservations = kept
		return []string{data.KeyReservations}
	})
	return found
}

// FindByID returns the reservation with the given id.
func (r *ReservationRepo) FindByID(id string) (model.Reservation, bool) {
	var out model.Reservation
	found := false
	r.data.View(func(c data.Collections) {
		for _, res := range c.Reservations {
			if res.ID == id {
				out = res
				found = true
				return
			}
		}
	})
	return out, found
}

// ByDinner returns every reservation referencing dinnerID.
func (r *ReservationRepo) ByDinner(dinnerID string) []model.Reservation {
	var out []model.Reservation
	r.data.View(func(c data.Collections) {
		for _, res := range c.Reservations {
			if res.DinnerID == dinnerID {
				out = append(out, res)
			}
		}
	})
	return out
}

// ByGuest returns the reservations matched by m's fallback chain.
func (r *ReservationRepo) ByGuest(m GuestMatcher) []model.Reservation {
	var out []model.Reservation
	r.data.View(func(c data.Collections) {
		for _, res := range c.Reservations {
			if matchesGuest(res, m) {
				out = append(out, res)
			}
		}
	})
	return out
}

func matchesGuest(res model.Reservation, m GuestMatcher) bool {
	if m.UserID != "" && res.UserID != "" {
		return res.UserID == m.UserID
	}
	if m.Email != "" && res.Email != "" {
		return strings.EqualFold(res.Email, m.Email)
	}
	if m.Name != "" && res.GuestName != "" {
		return strings.EqualFold(res.GuestName, m.Name)
	}
	return false
}

func findDinner(dinners []model.Dinner, id string) (model.Dinner, bool) {
	for _, d := range dinners {
		if d.ID == id {
			return d, true
		}
	}
	return model.Dinner{}, false
}
