package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/devflow/pkg/integrations"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
)

func TestNewClientMissingCredentials(t *testing.T) {
	tests := []Config{
		{},
		{APIKey: "key"},
		{EngineID: "cx"},
		{APIKey: "  ", EngineID: "cx"},
	}
	for _, cfg := range tests {
		_, err := NewClient(cfg)
		if !dferrors.Is(err, dferrors.ErrCodeConfiguration) {
			t.Errorf("NewClient(%+v) error = %v, want CONFIGURATION", cfg, err)
		}
		if !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("error should wrap ErrMissingCredentials: %v", err)
		}
	}
}

func TestClampResults(t *testing.T) {
	tests := []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {5, 5}, {10, 10}, {50, 10},
	}
	for _, tt := range tests {
		if got := ClampResults(tt.in); got != tt.want {
			t.Errorf("ClampResults(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	var gotNum, gotKey, gotCX, gotQ string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotNum, gotKey, gotCX, gotQ = q.Get("num"), q.Get("key"), q.Get("cx"), q.Get("q")
		w.Write([]byte(`{
		  "searchInformation": {"totalResults": "1234"},
		  "items": [
		    {"title": "Serilog 2.10.0", "link": "https://example.com/a", "snippet": "Compatible with net48",
		     "pagemap": {"metatags": [{"og:type": "article"}]}},
		    {"title": "Release notes", "link": "https://example.com/b", "snippet": "2.12.0 released"}
		  ]
		}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{APIKey: "k", EngineID: "cx", Endpoint: server.URL},
		integrations.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := c.Search(context.Background(), "serilog net48 compatibility 2.10.0", 25)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if gotNum != "10" || gotKey != "k" || gotCX != "cx" || gotQ != "serilog net48 compatibility 2.10.0" {
		t.Errorf("params num=%s key=%s cx=%s q=%s", gotNum, gotKey, gotCX, gotQ)
	}
	if resp.TotalResults != 1234 || len(resp.Results) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Results[0].Text() != "Serilog 2.10.0 Compatible with net48" {
		t.Errorf("Text() = %q", resp.Results[0].Text())
	}
	if resp.Results[0].Pagemap == nil {
		t.Error("pagemap should be preserved")
	}
}

func TestSearchNoItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"searchInformation": {"totalResults": "0"}}`))
	}))
	defer server.Close()

	c, _ := NewClient(Config{APIKey: "k", EngineID: "cx", Endpoint: server.URL},
		integrations.WithHTTPClient(server.Client()))
	resp, err := c.Search(context.Background(), "nothing", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %v", resp.Results)
	}
}

func TestSearchDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, _ := NewClient(Config{APIKey: "k", EngineID: "cx", Endpoint: server.URL},
		integrations.WithHTTPClient(server.Client()))
	_, err := c.Search(context.Background(), "q", 5)
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestSearchRateLimitedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, _ := NewClient(Config{APIKey: "k", EngineID: "cx", Endpoint: server.URL},
		integrations.WithHTTPClient(server.Client()))
	_, err := c.Search(context.Background(), "q", 5)
	if !errors.Is(err, integrations.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

type countingSearcher struct{ calls atomic.Int32 }

func (s *countingSearcher) Search(_ context.Context, query string, _ int) (*Response, error) {
	s.calls.Add(1)
	return &Response{Query: query}, nil
}

func TestRateLimited(t *testing.T) {
	inner := &countingSearcher{}
	if RateLimited(inner, 0) != Searcher(inner) {
		t.Error("perMinute <= 0 should return the searcher unchanged")
	}

	limited := RateLimited(inner, 2)
	ctx := context.Background()
	for range 2 {
		if _, err := limited.Search(ctx, "q", 1); err != nil {
			t.Fatalf("burst search failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := limited.Search(ctx, "q", 1); err == nil {
		t.Error("third search within the minute should wait past the deadline")
	}
	if inner.calls.Load() != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls.Load())
	}
}

func TestSearchTransportErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL + "/cse"
	server.Close()

	c, err := NewClient(Config{APIKey: "SECRET-KEY-123", EngineID: "cx", Endpoint: endpoint})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Search(context.Background(), "serilog net48", 5)
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if strings.Contains(err.Error(), "SECRET-KEY-123") {
		t.Errorf("error leaks the API key: %v", err)
	}
}
