package maven

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/devflow/pkg/cache"
	"github.com/matzehuels/devflow/pkg/integrations"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		coord        string
		wantGroup    string
		wantArtifact string
		wantErr      bool
	}{
		{"org.springframework:spring-core", "org.springframework", "spring-core", false},
		{"com.google.guava:guava:32.1.3-jre", "com.google.guava", "guava", false},
		{"invalid", "", "", true},
		{":guava", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			g, a, err := parseCoordinate(tt.coord)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseCoordinate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if g != tt.wantGroup || a != tt.wantArtifact {
				t.Errorf("parseCoordinate() = %q, %q", g, a)
			}
		})
	}
}

func TestClient_FetchArtifact(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		resp := searchResponse{}
		resp.Response.NumFound = 1
		resp.Response.Docs = []searchDoc{
			{GroupID: "com.google.guava", ArtifactID: "guava", LatestVersion: "33.2.1-jre", VersionCount: 120},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := testClient(t, server)

	info, err := c.FetchArtifact(context.Background(), "com.google.guava", "guava", false)
	if err != nil {
		t.Fatalf("FetchArtifact failed: %v", err)
	}
	if gotQuery != `g:"com.google.guava" AND a:"guava"` {
		t.Errorf("query = %q", gotQuery)
	}
	if info.Version != "33.2.1-jre" || info.VersionCount != 120 {
		t.Errorf("info = %+v", info)
	}
	if info.Coordinate() != "com.google.guava:guava" {
		t.Errorf("Coordinate() = %s", info.Coordinate())
	}
}

func TestClient_FetchArtifactFallsBackToVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"numFound":1,"docs":[{"g":"junit","a":"junit","v":"4.13.2"}]}}`))
	}))
	defer server.Close()

	info, err := testClient(t, server).FetchCoordinate(context.Background(), "junit:junit", false)
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != "4.13.2" {
		t.Errorf("Version = %q", info.Version)
	}
}

func TestClient_FetchArtifact_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	_, err := testClient(t, server).FetchArtifact(context.Background(), "org.missing", "artifact", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_FetchArtifact_InvalidCoordinate(t *testing.T) {
	c := NewClient(nil, time.Hour)
	if _, err := c.FetchArtifact(context.Background(), "", "guava", false); err == nil {
		t.Error("empty group id should fail")
	}
}

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c := NewClient(cache.NewNullCache(), time.Hour,
		integrations.WithHTTPClient(server.Client()),
		integrations.WithRetry(1, time.Millisecond))
	c.baseURL = server.URL
	return c
}
