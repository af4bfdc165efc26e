package model

import "time"

// ReservationConfirmed is the only status a persisted reservation carries.
// Cancellation deletes the row outright; capacity is always derived from the
// remaining rows, so nothing else needs to change on cancel.
const ReservationConfirmed = "confirmed"

// Reservation records a guest's seat booking against one dinner.  It lives
// in the `reservations` collection.
//
// Fields:
//  ID          – opaque unique identifier.
//  DinnerID    – id of the booked dinner (weak reference).
//  UserID      – id of the booking user; empty for bookings made without an
//                account.
//  GuestName   – name given at booking time.
//  Email       – contact email given at booking time.
//  Phone       – optional contact phone.
//  Seats       – number of seats booked, at least one.
//  Preferences – dietary tags, open vocabulary (vegetarian, vegan,
//                gluten-free, dairy-free, ...).
//  Notes       – optional free-text requests.
//  Status      – always ReservationConfirmed while the row exists.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
	ID          string    `json:"id"`
	DinnerID    string    `json:"dinnerId"`
	UserID      string    `json:"userId,omitempty"`
	GuestName   string    `json:"guestName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Seats       int       `json:"seats"`
	Preferences []string  `json:"preferences,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
