package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/devflow/pkg/buildinfo"
	"github.com/matzehuels/devflow/pkg/cache"
	"github.com/matzehuels/devflow/pkg/integrations"
)

// DefaultSearchURL is the Maven Central solr search endpoint.
const DefaultSearchURL = "https://search.maven.org/solrsearch/select"

// ArtifactInfo holds the latest published version of a Java artifact.
type ArtifactInfo struct {
	GroupID      string `json:"group_id"`
	ArtifactID   string `json:"artifact_id"`
	Version      string `json:"version"`
	VersionCount int    `json:"version_count,omitempty"`
	Updated      int64  `json:"updated,omitempty"` // Unix millis of the latest upload
}

// Coordinate returns the Maven coordinate string "groupId:artifactId".
func (a *ArtifactInfo) Coordinate() string {
	return a.GroupID + ":" + a.ArtifactID
}

// Client provides access to the Maven Central search API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Maven Central client caching responses in backend for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "maven", cacheTTL,
			map[string]string{"User-Agent": buildinfo.UserAgent()}, opts...),
		baseURL: DefaultSearchURL,
	}
}

// FetchArtifact returns the latest version of groupID:artifactID.
//
// Returns [integrations.ErrNotFound] (wrapped) when Maven Central has no
// such artifact and [integrations.ErrNetwork] for HTTP failures.
func (c *Client) FetchArtifact(ctx context.Context, groupID, artifactID string, refresh bool) (*ArtifactInfo, error) {
	groupID, artifactID = strings.TrimSpace(groupID), strings.TrimSpace(artifactID)
	if groupID == "" || artifactID == "" {
		return nil, fmt.Errorf("invalid maven coordinate %q (expected groupId:artifactId)", groupID+":"+artifactID)
	}

	var info ArtifactInfo
	err := c.Cached(ctx, groupID+":"+artifactID, refresh, &info, func() error {
		return c.fetch(ctx, groupID, artifactID, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchCoordinate is FetchArtifact for a "groupId:artifactId" string.
func (c *Client) FetchCoordinate(ctx context.Context, coordinate string, refresh bool) (*ArtifactInfo, error) {
	groupID, artifactID, err := parseCoordinate(coordinate)
	if err != nil {
		return nil, err
	}
	return c.FetchArtifact(ctx, groupID, artifactID, refresh)
}

func (c *Client) fetch(ctx context.Context, groupID, artifactID string, info *ArtifactInfo) error {
	query := fmt.Sprintf("g:%q AND a:%q", groupID, artifactID)
	url := fmt.Sprintf("%s?q=%s&rows=1&wt=json", c.baseURL, integrations.URLEncode(query))

	var resp searchResponse
	if err := c.Get(ctx, url, &resp); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: maven artifact %s:%s", err, groupID, artifactID)
		}
		return err
	}
	if resp.Response.NumFound == 0 || len(resp.Response.Docs) == 0 {
		return fmt.Errorf("%w: maven artifact %s:%s", integrations.ErrNotFound, groupID, artifactID)
	}

	doc := resp.Response.Docs[0]
	version := doc.LatestVersion
	if version == "" {
		version = doc.Version
	}
	*info = ArtifactInfo{
		GroupID:      groupID,
		ArtifactID:   artifactID,
		Version:      version,
		VersionCount: doc.VersionCount,
		Updated:      doc.Timestamp,
	}
	return nil
}

func parseCoordinate(coord string) (groupID, artifactID string, err error) {
	parts := strings.Split(coord, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid maven coordinate %q (expected groupId:artifactId)", coord)
	}
	return parts[0], parts[1], nil
}

type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	GroupID       string `json:"g"`
	ArtifactID    string `json:"a"`
	Version       string `json:"v"`
	LatestVersion string `json:"latestVersion"`
	VersionCount  int    `json:"versionCount"`
	Timestamp     int64  `json:"timestamp"`
}
