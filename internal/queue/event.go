// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in ReservationEvent.Type.
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a booking mutation. It contains
// enough information for downstream consumers to log or notify without
// querying the data layer, and the cancelled events double as the audit
// trail for reservations whose rows are deleted on cancel.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id"`
	DinnerID      string `json:"dinner_id"`
	DinnerTitle   string `json:"dinner_title"`
	HostName      string `json:"host_name"`
	GuestName     string `json:"guest_name"`
	Seats         int    `json:"seats"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	OccurredAt    string `json:"occurred_at"`
}
