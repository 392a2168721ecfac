// Package registry defines the shape of package version records as they come
// out of a package registry, and the [Source] interface the resolver reads from.
//
// Records are produced by a registry client (see the nuget integration) and
// are treated as immutable once fetched.
package registry

import (
	"context"
	"time"

	"github.com/matzehuels/devflow/pkg/framework"
)

// Source fetches the full version catalog for a package.
//
// Implementations return [integrations.ErrNotFound] (wrapped) when the package does
// not exist and [integrations.ErrNetwork] (wrapped) for transport failures.
//
// [integrations.ErrNotFound]: github.com/matzehuels/devflow/pkg/integrations.ErrNotFound
// [integrations.ErrNetwork]: github.com/matzehuels/devflow/pkg/integrations.ErrNetwork
type Source interface {
	FetchVersionCatalog(ctx context.Context, packageID string) ([]VersionRecord, error)
}

// VersionRecord is one published version of a package.
type VersionRecord struct {
	Version          string            `json:"version"`
	Published        time.Time         `json:"published"`
	Downloads        int64             `json:"downloads"`
	DependencyGroups []DependencyGroup `json:"dependency_groups,omitempty"`
	Metadata         Metadata          `json:"metadata"`
}

// DependencyGroup lists a version's dependencies under one target framework.
// An empty TargetFramework means the group applies to every framework.
type DependencyGroup struct {
	TargetFramework string       `json:"target_framework,omitempty"`
	Dependencies    []Dependency `json:"dependencies,omitempty"`
}

// Dependency is an immediate dependency declaration.
type Dependency struct {
	ID    string `json:"id"`
	Range string `json:"range,omitempty"`
}

// Metadata holds descriptive fields of a version.
type Metadata struct {
	ID          string   `json:"id"`
	Version     string   `json:"version"`
	Authors     []string `json:"authors,omitempty"`
	Description string   `json:"description,omitempty"`
	ProjectURL  string   `json:"project_url,omitempty"`
	LicenseURL  string   `json:"license_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// SupportedFrameworks returns the normalized target frameworks declared by
// the record's dependency groups. Groups without a target are ignored.
func (r VersionRecord) SupportedFrameworks() framework.Set {
	s := make(framework.Set, len(r.DependencyGroups))
	for _, g := range r.DependencyGroups {
		if g.TargetFramework == "" {
			continue
		}
		s.Add(framework.Normalize(g.TargetFramework))
	}
	return s
}

// Find returns the record whose version string equals v.
func Find(records []VersionRecord, v string) (VersionRecord, bool) {
	for _, r := range records {
		if r.Version == v {
			return r, true
		}
	}
	return VersionRecord{}, false
}
