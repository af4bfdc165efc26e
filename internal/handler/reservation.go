package handler

import (
	"context"  // detached contexts for async event publishing
	"errors"   // sentinel error comparison
	"net/http" // HTTP status codes and primitives
	"strings"  // input trimming
	"time"     // event timestamps

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/dinner-reservation/internal/data"       // data manager (load guard)
	"github.com/iliyamo/dinner-reservation/internal/middleware" // authenticated identity helpers
	"github.com/iliyamo/dinner-reservation/internal/model"      // entity types
	"github.com/iliyamo/dinner-reservation/internal/queue"      // event payloads
	"github.com/iliyamo/dinner-reservation/internal/repository" // entity repositories
	queue_publisher "github.com/iliyamo/dinner-reservation/internal/service"
)

// ReservationHandler serves guest booking endpoints. Bookings change the
// seat counts shown in the public listings, so every successful mutation
// drops the cached listing responses.
type ReservationHandler struct {
	Data         *data.Manager
	Dinners      *repository.DinnerRepo
	Reservations *repository.ReservationRepo
	Users        *repository.UserRepo
	Listings     ListingInvalidator
}

func NewReservationHandler(m *data.Manager, d *repository.DinnerRepo, r *repository.ReservationRepo, u *repository.UserRepo, inv ListingInvalidator) *ReservationHandler {
	return &ReservationHandler{Data: m, Dinners: d, Reservations: r, Users: u, Listings: inv}
}

func (h *ReservationHandler) invalidateListings(c echo.Context) {
	if h.Listings != nil {
		h.Listings.InvalidateListings(c.Request().Context())
	}
}

// ----- DTOs -----

type createReservationReq struct {
	DinnerID    string   `json:"dinnerId"`
	GuestName   string   `json:"guestName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Seats       int      `json:"seats"`
	Preferences []string `json:"preferences"`
	Notes       string   `json:"notes"`
}

type updateReservationReq struct {
	Seats       *int      `json:"seats"`
	Preferences *[]string `json:"preferences"`
	Notes       *string   `json:"notes"`
	Phone       *string   `json:"phone"`
}

// Create books seats on a dinner for the caller. Contact fields default to
// the account's own details when the body leaves them blank.
// POST /v1/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.DinnerID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dinnerId required"})
	}

	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	user, ok := h.Users.FindByID(middleware.UserID(c))
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
	}
	if req.GuestName == "" {
		req.GuestName = user.Name
	}
	if req.Email == "" {
		req.Email = user.Email
	}
	if req.Phone == "" {
		req.Phone = user.Phone
	}

	res, err := h.Reservations.Create(req.DinnerID, repository.GuestBooking{
		UserID:      user.ID,
		GuestName:   req.GuestName,
		Email:       req.Email,
		Phone:       req.Phone,
		Seats:       req.Seats,
		Preferences: req.Preferences,
		Notes:       req.Notes,
	})
	if isBookingError(err) {
		return h.bookingError(c, err)
	}
	if err != nil {
		// Booking landed in memory; only the save failed.
		c.Logger().Warnf("reservation: persist failed: %v", err)
	}

	h.invalidateListings(c)
	h.publishEvent(queue.EventReservationConfirmed, res)
	return c.JSON(http.StatusCreated, res)
}

// Mine lists the caller's reservations. Bookings made with matching contact
// details before the account existed are included via the fallback match.
// GET /v1/reservations
func (h *ReservationHandler) Mine(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	user, ok := h.Users.FindByID(middleware.UserID(c))
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
	}
	out := h.Reservations.ByGuest(repository.GuestMatcher{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if out == nil {
		out = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Update patches one of the caller's reservations, re-validating capacity
// when the seat count changes.
// PATCH /v1/reservations/:id
func (h *ReservationHandler) Update(c echo.Context) error {
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	id := c.Param("id")
	if !h.ownsReservation(c, id) {
		return nil
	}
	res, err := h.Reservations.Update(id, repository.ReservationPatch{
		Seats:       req.Seats,
		Preferences: req.Preferences,
		Notes:       req.Notes,
		Phone:       req.Phone,
	})
	if isBookingError(err) {
		return h.bookingError(c, err)
	}
	if err != nil {
		c.Logger().Warnf("reservation: persist failed: %v", err)
	}
	h.invalidateListings(c)
	return c.JSON(http.StatusOK, res)
}

// Cancel deletes the caller's reservation, freeing its seats, and publishes
// a cancellation event as the audit record.
// DELETE /v1/reservations/:id
func (h *ReservationHandler) Cancel(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	id := c.Param("id")
	if !h.ownsReservation(c, id) {
		return nil
	}
	res, _ := h.Reservations.FindByID(id)
	if !h.Reservations.Cancel(id) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	h.invalidateListings(c)
	h.publishEvent(queue.EventReservationCancelled, res)
	return c.NoContent(http.StatusNoContent)
}

// ownsReservation checks that the reservation exists and belongs to the
// caller, writing the error response itself on failure.
func (h *ReservationHandler) ownsReservation(c echo.Context, id string) bool {
	res, ok := h.Reservations.FindByID(id)
	if !ok {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		return false
	}
	user, ok := h.Users.FindByID(middleware.UserID(c))
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
		return false
	}
	if res.UserID != "" && res.UserID == user.ID {
		return true
	}
	if res.UserID == "" && strings.EqualFold(res.Email, user.Email) {
		return true
	}
	_ = c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	return false
}

// isBookingError reports whether err is a booking rejection rather than a
// persistence warning.
func isBookingError(err error) bool {
	var capErr *repository.CapacityError
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrSeatCount) ||
		errors.As(err, &capErr)
}

// bookingError maps booking rejections into HTTP responses. Capacity
// rejections carry the remaining seat count so clients can re-prompt.
func (h *ReservationHandler) bookingError(c echo.Context, err error) error {
	var capErr *repository.CapacityError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "dinner not found"})
	case errors.Is(err, repository.ErrSeatCount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be at least 1"})
	case errors.As(err, &capErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":           "not enough seats",
			"available_seats": capErr.Available,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
}

// publishEvent emits a reservation event without blocking the request.
func (h *ReservationHandler) publishEvent(kind string, res model.Reservation) {
	dinner, _ := h.Dinners.FindByID(res.DinnerID)
	ev := queue.ReservationEvent{
		Type:          kind,
		ReservationID: res.ID,
		DinnerID:      res.DinnerID,
		DinnerTitle:   dinner.Title,
		HostName:      dinner.HostName,
		GuestName:     res.GuestName,
		Seats:         res.Seats,
		Date:          dinner.Date,
		Time:          dinner.Time,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationEvent(ctx, ev)
	}()
}
