package handler

import (
	"net/http" // HTTP status codes and primitives
	"strconv"  // query parameter parsing
	"time"     // "now" reference for upcoming/available

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/dinner-reservation/internal/data"       // data manager (load guard)
	"github.com/iliyamo/dinner-reservation/internal/model"      // entity types
	"github.com/iliyamo/dinner-reservation/internal/repository" // dinner queries
)

// PublicDinnerHandler serves the unauthenticated browse and search surface.
type PublicDinnerHandler struct {
	Data    *data.Manager
	Dinners *repository.DinnerRepo
}

func NewPublicDinnerHandler(m *data.Manager, d *repository.DinnerRepo) *PublicDinnerHandler {
	return &PublicDinnerHandler{Data: m, Dinners: d}
}

// Upcoming lists every dinner whose date is today or later, drafts included.
// GET /v1/dinners
func (h *PublicDinnerHandler) Upcoming(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	out := h.Dinners.Upcoming(time.Now())
	if out == nil {
		out = []model.Dinner{} // never null in the response body
	}
	return c.JSON(http.StatusOK, echo.Map{"dinners": out})
}

// Available lists public dinners that have not started and still have seats.
// GET /v1/dinners/available
func (h *PublicDinnerHandler) Available(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	out := h.Dinners.Available(time.Now())
	if out == nil {
		out = []model.Dinner{}
	}
	return c.JSON(http.StatusOK, echo.Map{"dinners": out})
}

// Detail returns one dinner with its derived guest count.
// GET /v1/dinners/:id
func (h *PublicDinnerHandler) Detail(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	d, ok := h.Dinners.FindByID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "dinner not found"})
	}
	return c.JSON(http.StatusOK, d)
}

// Search filters upcoming dinners by free-text term and the structured
// filters. A non-empty term is remembered in the recent-search list.
// GET /v1/search/dinners?q=&category=&date=&max_price=&this_week=&today=
func (h *PublicDinnerHandler) Search(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	q := repository.SearchQuery{
		Term:     c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Date:     c.QueryParam("date"),
		ThisWeek: c.QueryParam("this_week") == "true",
		Today:    c.QueryParam("today") == "true",
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price"})
		}
		q.MaxPrice = &p
	}
	out := h.Dinners.Search(q, time.Now())
	if out == nil {
		out = []model.Dinner{}
	}
	return c.JSON(http.StatusOK, echo.Map{"dinners": out, "count": len(out)})
}

// RecentSearches returns the remembered search terms, newest first.
// GET /v1/search/recent
func (h *PublicDinnerHandler) RecentSearches(c echo.Context) error {
	if err := h.Data.EnsureLoaded(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data not available"})
	}
	return c.JSON(http.StatusOK, echo.Map{"searches": h.Data.RecentSearches()})
}
