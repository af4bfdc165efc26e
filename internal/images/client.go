// Package images talks to the Unsplash proxy that supplies listing photos.
// The proxy is an opaque, fallible collaborator: any failure (no endpoint
// configured, network error, non-2xx status, timeout, malformed body)
// degrades to a small fixed set of placeholder entries instead of
// propagating an error, so publishing a dinner never blocks on it.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// requestTimeout bounds every proxy call.
const requestTimeout = 10 * time.Second

// perPage is the number of suggestions requested from the proxy.
const perPage = 6

// Image is one photo suggestion returned to the host dashboard.
type Image struct {
	URL          string `json:"url"`
	Description  string `json:"description"`
	Photographer string `json:"photographer"`
	SourceURL    string `json:"sourceUrl"`
}

// Service queries the image search proxy.
type Service struct {
	endpoint string
	client   *http.Client
}

// NewService returns a Service for the given proxy endpoint. An empty
// endpoint is allowed; every search then yields placeholders.
func NewService(endpoint string) *Service {
	return &Service{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// apiResponse mirrors the subset of the proxy's Unsplash-shaped payload we
// consume.
type apiResponse struct {
	Results []struct {
		URLs struct {
			Small string `json:"small"`
		} `json:"urls"`
		AltDescription string `json:"alt_description"`
		User           struct {
			Name string `json:"name"`
		} `json:"user"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"results"`
}

// Search returns image suggestions for term. It never returns an error;
// every failure path falls back to Placeholders.
func (s *Service) Search(ctx context.Context, term string) []Image {
	if s.endpoint == "" {
		return Placeholders()
	}
	imgs, err := s.search(ctx, term)
	if err != nil {
		log.Printf("images: search %q failed, serving placeholders: %v", term, err)
		return Placeholders()
	}
	if len(imgs) == 0 {
		return Placeholders()
	}
	return imgs
}

func (s *Service) search(ctx context.Context, term string) ([]Image, error) {
	u := fmt.Sprintf("%s?q=%s&per_page=%d&orientation=landscape",
		s.endpoint, url.QueryEscape(term), perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("image search: status %d", resp.StatusCode)
	}
	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("image search: decode: %w", err)
	}
	out := make([]Image, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, Image{
			URL:          r.URLs.Small,
			Description:  r.AltDescription,
			Photographer: r.User.Name,
			SourceURL:    r.Links.HTML,
		})
	}
	return out, nil
}

// Placeholders is the fixed fallback set shown when the proxy is
// unavailable.
func Placeholders() []Image {
	return []Image{
		{
			URL:         "https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=400",
			Description: "Assorted dishes on a table",
		},
		{
			URL:         "https://images.unsplash.com/photo-1556761223-4c4282c73f77?w=400",
			Description: "Homemade pasta dinner",
		},
		{
			URL:         "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=400",
			Description: "Shared dinner spread",
		},
	}
}
