package handler

import (
	"context"  // detached contexts for async event publishing
	"errors"   // repository error classification
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

// ListingInvalidator drops cached public listing responses after a
// mutation so browse pages reflect the change immediately instead of
// after the cache TTL expires.
type ListingInvalidator interface {
	InvalidateListings(ctx context.Context)
}

// HostDinnerHandler serves host-only dinner management endpoints. Every
// mutation checks that the caller owns the target dinner before touching it.
type HostDinnerHandler struct {
	Data         *data.Manager
	Dinners      *repository.DinnerRepo
	Reservations *repository.ReservationRepo
	Users        *repository.UserRepo
	Listings     ListingInvalidator
}

func NewHostDinnerHandler(m *data.Manager, d *repository.DinnerRepo, r *repository.ReservationRepo, u *repository.UserRepo, inv ListingInvalidator) *HostDinnerHandler {
	return &HostDinnerHandler{Data: m, Dinners: d, Reservations: r, Users: u, Listings: inv}
}

func (h *HostDinnerHandler) invalidateListings(c echo.Context) {
	if h.Listings != nil {
		h.Listings.InvalidateListings(c.Request().Context())
	}
}

// ----- DTOs -----

type createDinnerReq struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	CuisineType string                  `json:"cuisineType"`
	Location    string                  `json:"location"`
	Date        string                  `json:"date"` // YYYY-MM-DD
	Time        string                  `json:"time"` // HH:MM
	Price       float64                 `json:"price"`
	MaxGuests   int                     `json:"maxGuests"`
	Image       string                  `json:"image"`
	Attribution *model.ImageAttribution `json:"imageAttribution"`
	IsPublic    *bool                   `json:"isPublic"`
}

type updateDinnerReq struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Category    *string                 `json:"category"`
	CuisineType *string                 `json:"cuisineType"`
	Location    *string                 `json:"location"`
	Date        *string                 `json:"date"`
	Time        *string                 `json:"time"`
	Price       *float64                `json:"price"`
	MaxGuests   *int                    `json:"maxGuests"`
	Image       *string                 `json:"image"`
	Attribution *model.ImageAttribution `json:"imageAttribution"`
	IsPublic    *bool                   `json:"isPublic"`
}

// Create adds a dinner owned by the caller. The host name is resolved from
// the user record so clients cannot spoof it.
// POST /v1/host/dinners
func (h *HostDinnerHandler) Create(c echo.Context) error {
	var req createDinnerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/date/time required"})
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if _, err := time.Parse(model.TimeLayout, req.Time); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
	}
	if req.MaxGuests < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "maxGuests must be at least 1"})
	}
	if req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative"})
	}

	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	hostID := middleware.UserID(c)
	host, ok := h.Users.FindByID(hostID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	d, err := h.Dinners.Create(repository.NewDinner{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Cuisine:     req.CuisineType,
		Location:    req.Location,
		Date:        req.Date,
		Time:        req.Time,
		Price:       req.Price,
		MaxGuests:   req.MaxGuests,
		HostID:      host.ID,
		HostName:    host.Name,
		Image:       req.Image,
		Attribution: req.Attribution,
		IsPublic:    isPublic,
	})
	if err != nil {
		c.Logger().Warnf("create dinner: persist failed: %v", err)
	}
	h.invalidateListings(c)
	return c.JSON(http.StatusCreated, d)
}

// Mine lists the caller's dinners, drafts included.
// GET /v1/host/dinners
func (h *HostDinnerHandler) Mine(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	out := h.Dinners.ByHost(middleware.UserID(c))
	if out == nil {
		out = []model.Dinner{}
	}
	return c.JSON(http.StatusOK, echo.Map{"dinners": out})
}

// Update patches one of the caller's dinners.
// PATCH /v1/host/dinners/:id
func (h *HostDinnerHandler) Update(c echo.Context) error {
	var req updateDinnerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Date != nil {
		if _, err := time.Parse(model.DateLayout, *req.Date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
	}
	if req.Time != nil {
		if _, err := time.Parse(model.TimeLayout, *req.Time); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
		}
	}
	if req.MaxGuests != nil && *req.MaxGuests < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "maxGuests must be at least 1"})
	}
	if req.Price != nil && *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative"})
	}

	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	id := c.Param("id")
	if _, ok := h.ownedBy(c, id); !ok {
		return nil
	}
	err := h.Dinners.Update(id, repository.DinnerPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Cuisine:     req.CuisineType,
		Location:    req.Location,
		Date:        req.Date,
		Time:        req.Time,
		Price:       req.Price,
		MaxGuests:   req.MaxGuests,
		Image:       req.Image,
		Attribution: req.Attribution,
		IsPublic:    req.IsPublic,
	})
	var overbook *repository.OverbookError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "dinner not found"})
	case errors.As(err, &overbook):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        "maxGuests cannot drop below booked seats",
			"booked_seats": overbook.Booked,
		})
	case err != nil:
		c.Logger().Warnf("update dinner: persist failed: %v", err)
	}
	h.invalidateListings(c)
	d, _ := h.Dinners.FindByID(id)
	return c.JSON(http.StatusOK, d)
}

// Delete removes one of the caller's dinners along with its reservations.
// A cancellation event is published for every reservation swept away so the
// guests can be notified downstream.
// DELETE /v1/host/dinners/:id
func (h *HostDinnerHandler) Delete(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	id := c.Param("id")
	dinner, ok := h.ownedBy(c, id)
	if !ok {
		return nil
	}
	cancelled := h.Reservations.ByDinner(id)
	if !h.Dinners.Delete(id) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "dinner not found"})
	}
	h.invalidateListings(c)
	for _, res := range cancelled {
		ev := queue.ReservationEvent{
			Type:          queue.EventReservationCancelled,
			ReservationID: res.ID,
			DinnerID:      dinner.ID,
			DinnerTitle:   dinner.Title,
			HostName:      dinner.HostName,
			GuestName:     res.GuestName,
			Seats:         res.Seats,
			Date:          dinner.Date,
			Time:          dinner.Time,
			OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		}
		go func(ev queue.ReservationEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = queue_publisher.PublishReservationEvent(ctx, ev)
		}(ev)
	}
	return c.NoContent(http.StatusNoContent)
}

// GuestList returns the reservations for one of the caller's dinners.
// GET /v1/host/dinners/:id/reservations
func (h *HostDinnerHandler) GuestList(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}

	id := c.Param("id")
	if _, ok := h.ownedBy(c, id); !ok {
		return nil
	}
	out := h.Reservations.ByDinner(id)
	if out == nil {
		out = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// ownedBy resolves the dinner and checks it belongs to the caller. On
// failure the error response has already been written and ok is false.
func (h *HostDinnerHandler) ownedBy(c echo.Context, dinnerID string) (model.Dinner, bool) {
	d, ok := h.Dinners.FindByID(dinnerID)
	if !ok {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "dinner not found"})
		return model.Dinner{}, false
	}
	if d.HostID != middleware.UserID(c) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "not your dinner"})
		return model.Dinner{}, false
	}
	return d, true
}
