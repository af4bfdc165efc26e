package repository

import "github.com/iliyamo/dinner-reservation/internal/model"

// RemainingSeats derives the free capacity of a dinner from the reservation
// collection. excludingID removes one reservation from the sum so that a
// modification can be validated against the capacity it would free up;
// pass "" when creating. The result is clamped at zero and must be
// recomputed on every booking path — a stored guest count is never trusted.
func RemainingSeats(d model.Dinner, reservations []model.Reservation, excludingID string) int {
	booked := 0
	for _, r := range reservations {
		if r.DinnerID != d.ID {
			continue
		}
		if excludingID != "" && r.ID == excludingID {
			continue
		}
		booked += r.Seats
	}
	remaining := d.MaxGuests - booked
	if remaining < 0 {
		return 0
	}
	return remaining
}

// bookedSeats is RemainingSeats' inverse used to fill the derived
// CurrentGuests field on dinners handed out of the repository.
func bookedSeats(dinnerID string, reservations []model.Reservation) int {
	total := 0
	for _, r := range reservations {
		if r.DinnerID == dinnerID {
			total += r.Seats
		}
	}
	return total
}
