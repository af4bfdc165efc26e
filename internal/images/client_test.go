package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const proxyPayload = `{
	"results": [
		{
			"urls": {"small": "https://img.example.com/pasta-small.jpg"},
			"alt_description": "bowl of pasta on a wooden table",
			"user": {"name": "Jane Photographer"},
			"links": {"html": "https://unsplash.com/photos/abc123"}
		},
		{
			"urls": {"small": "https://img.example.com/tacos-small.jpg"},
			"alt_description": "street tacos",
			"user": {"name": "Tom Shutter"},
			"links": {"html": "https://unsplash.com/photos/def456"}
		}
	]
}`

func TestSearchMapsProxyResponse(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(proxyPayload))
	}))
	defer srv.Close()

	imgs := NewService(srv.URL).Search(context.Background(), "pasta night")
	if len(imgs) != 2 {
		t.Fatalf("images: got %d, want 2", len(imgs))
	}
	first := imgs[0]
	if first.URL != "https://img.example.com/pasta-small.jpg" {
		t.Errorf("URL: got %q", first.URL)
	}
	if first.Description != "bowl of pasta on a wooden table" {
		t.Errorf("Description: got %q", first.Description)
	}
	if first.Photographer != "Jane Photographer" {
		t.Errorf("Photographer: got %q", first.Photographer)
	}
	if first.SourceURL != "https://unsplash.com/photos/abc123" {
		t.Errorf("SourceURL: got %q", first.SourceURL)
	}
	if gotQuery != "q=pasta+night&per_page=6&orientation=landscape" {
		t.Errorf("query: got %q", gotQuery)
	}
}

func TestSearchFallsBackToPlaceholders(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}},
		{"empty result set", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results": []}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			imgs := NewService(srv.URL).Search(context.Background(), "pasta")
			if len(imgs) != len(Placeholders()) {
				t.Fatalf("got %d images, want the placeholder set", len(imgs))
			}
			if imgs[0].URL != Placeholders()[0].URL {
				t.Fatalf("got %q, want placeholder URL", imgs[0].URL)
			}
		})
	}
}

func TestSearchWithoutEndpoint(t *testing.T) {
	imgs := NewService("").Search(context.Background(), "pasta")
	if len(imgs) == 0 || imgs[0].URL != Placeholders()[0].URL {
		t.Fatal("empty endpoint must serve placeholders")
	}
}

func TestSearchTimeoutServesPlaceholders(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	imgs := NewService(srv.URL).Search(ctx, "pasta")
	if len(imgs) != len(Placeholders()) {
		t.Fatalf("got %d images, want the placeholder set", len(imgs))
	}
}
