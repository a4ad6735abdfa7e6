package tmdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tvcatalog/internal/fetch"
	"tvcatalog/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestFindByIMDbSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "key" {
			t.Errorf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if r.URL.Path != "/find/tt0944947" || r.URL.Query().Get("external_source") != "imdb_id" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"movie_results":[],"tv_results":[{"id":1399,"name":"Game of Thrones"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US", tmdb.WithFetcher(fetch.New()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	results, ok := client.FindByIMDb(context.Background(), "tt0944947")
	if !ok || len(results) != 1 || results[0].ID != 1399 {
		t.Fatalf("unexpected results: %#v", results)
	}
}

func TestFindByIMDbNoTVResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tv_results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := client.FindByIMDb(context.Background(), "tt1"); ok {
		t.Fatal("expected empty tv results to report false")
	}
}

func TestExternalIDsAndDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/1399/external_ids":
			_, _ = w.Write([]byte(`{"id":1399,"imdb_id":"tt0944947","tvdb_id":121361}`))
		case "/discover/tv":
			q := r.URL.Query()
			if q.Get("first_air_date.gte") != "2024-04-22" || q.Get("first_air_date.lte") != "2024-05-01" || q.Get("page") != "2" {
				t.Errorf("unexpected discover query %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"results":[{"id":5,"name":"New"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()
	ids, ok := client.ExternalIDs(ctx, 1399)
	if !ok || ids.TVDBID != 121361 || ids.IMDbID != "tt0944947" {
		t.Fatalf("unexpected external ids: %#v", ids)
	}
	if _, ok := client.ExternalIDs(ctx, 7); ok {
		t.Fatal("expected 404 to report false")
	}
	resp, ok := client.DiscoverTV(ctx, "2024-04-22", "2024-05-01", 2)
	if !ok || resp.TotalPages != 3 || len(resp.Results) != 1 {
		t.Fatalf("unexpected discover response: %#v", resp)
	}
}
