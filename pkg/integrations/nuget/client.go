package nuget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/devflow/pkg/cache"
	"github.com/matzehuels/devflow/pkg/integrations"
	"github.com/matzehuels/devflow/pkg/registry"
)

// DefaultBaseURL is the public NuGet registration hive with gzip and SemVer 2.0 support.
const DefaultBaseURL = "https://api.nuget.org/v3/registration5-gz-semver2"

const userAgent = "devflow-package-management/1.0"

// Client provides access to the NuGet registration API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a NuGet client. Registration responses are cached in
// backend under the "nuget" namespace for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	headers := map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json",
	}
	return &Client{
		Client:  integrations.NewClient(backend, "nuget", cacheTTL, headers, opts...),
		baseURL: DefaultBaseURL,
	}
}

// FetchVersionCatalog implements [registry.Source] using cached data when available.
func (c *Client) FetchVersionCatalog(ctx context.Context, packageID string) ([]registry.VersionRecord, error) {
	return c.FetchRegistration(ctx, packageID, false)
}

// FetchRegistration returns every version of packageID listed in the
// registration index, in registry order.
//
// If refresh is true, the cache is bypassed.
//
// Returns:
//   - [integrations.ErrNotFound] (wrapped) if the package doesn't exist
//   - [integrations.ErrNetwork] (wrapped) for HTTP failures
//   - [integrations.ErrMalformed] (wrapped) for undecodable responses
func (c *Client) FetchRegistration(ctx context.Context, packageID string, refresh bool) ([]registry.VersionRecord, error) {
	id := integrations.NormalizePackageID(packageID)
	if id == "" {
		return nil, fmt.Errorf("%w: empty package id", integrations.ErrNotFound)
	}

	var records []registry.VersionRecord
	err := c.Cached(ctx, id, refresh, &records, func() error {
		var err error
		records, err = c.fetch(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) fetch(ctx context.Context, id string) ([]registry.VersionRecord, error) {
	url := fmt.Sprintf("%s/%s/index.json", c.baseURL, integrations.PathEscape(id))

	var index registrationIndex
	if err := c.Get(ctx, url, &index); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: nuget package %s", err, id)
		}
		return nil, err
	}

	var records []registry.VersionRecord
	for _, page := range index.Items {
		if len(page.Items) == 0 && page.ID != "" && page.Count > 0 {
			if err := c.Get(ctx, page.ID, &page); err != nil {
				return nil, fmt.Errorf("fetch registration page %s: %w", page.ID, err)
			}
		}
		for _, leaf := range page.Items {
			records = append(records, leaf.CatalogEntry.record())
		}
	}
	return records, nil
}

type registrationIndex struct {
	Count int                `json:"count"`
	Items []registrationPage `json:"items"`
}

type registrationPage struct {
	ID    string             `json:"@id"`
	Count int                `json:"count"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
	Items []registrationLeaf `json:"items"`
}

type registrationLeaf struct {
	CatalogEntry catalogEntry `json:"catalogEntry"`
}

type catalogEntry struct {
	ID               string            `json:"id"`
	Version          string            `json:"version"`
	Authors          stringList        `json:"authors"`
	Description      string            `json:"description"`
	ProjectURL       string            `json:"projectUrl"`
	LicenseURL       string            `json:"licenseUrl"`
	Tags             stringList        `json:"tags"`
	Published        string            `json:"published"`
	Downloads        int64             `json:"downloads"`
	DependencyGroups []dependencyGroup `json:"dependencyGroups"`
}

type dependencyGroup struct {
	TargetFramework string       `json:"targetFramework"`
	Dependencies    []dependency `json:"dependencies"`
}

type dependency struct {
	ID    string `json:"id"`
	Range string `json:"range"`
}

func (e catalogEntry) record() registry.VersionRecord {
	r := registry.VersionRecord{
		Version:   strings.TrimSpace(e.Version),
		Downloads: e.Downloads,
		Metadata: registry.Metadata{
			ID:          e.ID,
			Version:     e.Version,
			Authors:     e.Authors,
			Description: e.Description,
			ProjectURL:  e.ProjectURL,
			LicenseURL:  e.LicenseURL,
			Tags:        e.Tags,
		},
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		r.Published = t
	}
	for _, g := range e.DependencyGroups {
		group := registry.DependencyGroup{TargetFramework: g.TargetFramework}
		for _, d := range g.Dependencies {
			group.Dependencies = append(group.Dependencies, registry.Dependency{ID: d.ID, Range: d.Range})
		}
		r.DependencyGroups = append(r.DependencyGroups, group)
	}
	return r
}

// stringList decodes either a JSON array of strings or a single
// comma-separated string. NuGet uses both shapes for authors and tags.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = nil
	for _, part := range strings.Split(single, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

var _ registry.Source = (*Client)(nil)
