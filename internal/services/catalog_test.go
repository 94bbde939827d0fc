package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newCatalogAgainst(t *testing.T, handler http.HandlerFunc) *Catalog {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCatalog(NewTMDBClient("test-key", server.URL), nil, zerolog.Nop())
}

func TestCatalog_GetMovie(t *testing.T) {
	catalog := newCatalogAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("expected api key on the request")
		}
		w.Write([]byte(`{"id": 27205, "title": "Inception"}`))
	})

	doc := catalog.GetMovie(context.Background(), "27205")
	if doc == nil {
		t.Fatal("expected a movie document")
	}

	var movie struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(doc, &movie); err != nil {
		t.Fatalf("failed to decode document: %v", err)
	}
	if movie.Title != "Inception" {
		t.Errorf("expected title Inception, got %q", movie.Title)
	}
}

func TestCatalog_GetMovie_UpstreamFailure(t *testing.T) {
	catalog := newCatalogAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if doc := catalog.GetMovie(context.Background(), "27205"); doc != nil {
		t.Fatalf("expected nil on upstream failure, got %s", doc)
	}
}

func TestCatalog_SearchDegradesToEmptyPage(t *testing.T) {
	catalog := newCatalogAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	page := catalog.SearchMovies(context.Background(), "inception", 3)
	if page == nil {
		t.Fatal("expected an empty page, not nil")
	}
	if page.Page != 3 || len(page.Results) != 0 {
		t.Errorf("expected empty page 3, got %+v", page)
	}
}

func TestCatalog_ListDegradesToEmpty(t *testing.T) {
	catalog := newCatalogAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if results := catalog.GetTrending(context.Background()); results == nil || len(results) != 0 {
		t.Errorf("expected empty trending list, got %v", results)
	}
	if results := catalog.GetTopRated(context.Background()); results == nil || len(results) != 0 {
		t.Errorf("expected empty top-rated list, got %v", results)
	}
}

func TestCatalog_TrendingPassthrough(t *testing.T) {
	catalog := newCatalogAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trending/movie/week" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"page": 1, "results": [{"id": 27205}], "total_pages": 1, "total_results": 1}`))
	})

	results := catalog.GetTrending(context.Background())
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
}
