package handler

import (
	"net/http" // HTTP status codes and primitives
	"strings"  // input trimming

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/dinner-reservation/internal/images" // image search proxy client
)

// ImageHandler serves photo suggestions for the dinner creation form.
type ImageHandler struct {
	Images *images.Service
}

func NewImageHandler(s *images.Service) *ImageHandler {
	return &ImageHandler{Images: s}
}

// Search proxies an image search. It always answers 200 with a non-empty
// list; outages behind the proxy surface as placeholder entries, never as
// an error to the form.
// GET /v1/images/search?q=
func (h *ImageHandler) Search(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"images": h.Images.Search(c.Request().Context(), term),
	})
}
