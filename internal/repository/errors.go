// Package repository defines error types that are reused across the dinner,
// reservation and user repositories. These sentinel values allow higher
// layers such as handlers to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current user is
// not authorized to perform an operation on a resource owned by someone
// else, while ErrEmailExists signals a registration conflict.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references a missing id.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a registration uses an email already
// present in the user collection. Handlers should translate this into an
// HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")

// ErrSeatCount is returned when a booking asks for fewer than one seat.
var ErrSeatCount = errors.New("seats must be at least one")

// CapacityError rejects a booking or modification that would exceed a
// dinner's remaining capacity. Available carries the seat count that was
// still free at the time of the check so callers can report it.
type CapacityError struct {
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("requested seats exceed remaining capacity (%d available)", e.Available)
}

// OverbookError rejects lowering a dinner's MaxGuests below the seats
// already booked. Booked carries the current booked-seat sum so callers
// can report the smallest acceptable capacity.
type OverbookError struct {
	Booked int
}

func (e *OverbookError) Error() string {
	return fmt.Sprintf("max guests cannot drop below booked seats (%d booked)", e.Booked)
}
