package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/devflow/pkg/framework"
	"github.com/matzehuels/devflow/pkg/registry"
	"github.com/matzehuels/devflow/pkg/vuln"
)

// DependencyInfo is one immediate dependency of a package version.
type DependencyInfo struct {
	ID           string `json:"id"`
	VersionRange string `json:"version_range"`
	Type         string `json:"type"`
}

// DependencyList is the result of [Resolver.Dependencies].
type DependencyList struct {
	PackageID       string           `json:"package_id"`
	Version         string           `json:"version"`
	TargetFramework string           `json:"target_framework"`
	Found           bool             `json:"found"`
	Dependencies    []DependencyInfo `json:"dependencies"`
}

// Dependencies lists the immediate dependencies packageID@ver declares for
// target. Group frameworks are compared in normalized form, so "net45"
// matches a group declared as ".NETFramework4.5". An unknown version yields
// an empty list with Found=false.
func (r *Resolver) Dependencies(ctx context.Context, packageID, ver, target string) (*DependencyList, error) {
	records, err := r.catalog(ctx, packageID)
	if err != nil {
		return nil, err
	}

	out := &DependencyList{
		PackageID:       packageID,
		Version:         ver,
		TargetFramework: target,
		Dependencies:    []DependencyInfo{},
	}
	rec, ok := findRecord(records, ver)
	if !ok {
		return out, nil
	}
	out.Found = true

	want := r.Graph.Normalize(target)
	for _, g := range rec.DependencyGroups {
		if g.TargetFramework == "" || r.Graph.Normalize(g.TargetFramework) != want {
			continue
		}
		for _, d := range g.Dependencies {
			out.Dependencies = append(out.Dependencies, DependencyInfo{
				ID:           d.ID,
				VersionRange: d.Range,
				Type:         "direct",
			})
		}
	}
	return out, nil
}

// MetadataInfo is the result of [Resolver.Metadata].
type MetadataInfo struct {
	PackageID           string             `json:"package_id"`
	Version             string             `json:"version"`
	Found               bool               `json:"found"`
	Metadata            *registry.Metadata `json:"metadata,omitempty"`
	Published           time.Time          `json:"published,omitzero"`
	Downloads           int64              `json:"downloads"`
	SupportedFrameworks []framework.ID     `json:"supported_frameworks,omitempty"`
}

// Metadata returns descriptive metadata for packageID@ver. An unknown
// version yields Found=false and no metadata.
func (r *Resolver) Metadata(ctx context.Context, packageID, ver string) (*MetadataInfo, error) {
	records, err := r.catalog(ctx, packageID)
	if err != nil {
		return nil, err
	}

	out := &MetadataInfo{PackageID: packageID, Version: ver}
	rec, ok := findRecord(records, ver)
	if !ok {
		return out, nil
	}
	md := rec.Metadata
	out.Found = true
	out.Metadata = &md
	out.Published = rec.Published
	out.Downloads = rec.Downloads
	out.SupportedFrameworks = rec.SupportedFrameworks().Sorted()
	return out, nil
}

// VulnerabilityReport is the result of [Resolver.Vulnerabilities].
type VulnerabilityReport struct {
	PackageID       string        `json:"package_id"`
	Version         string        `json:"version"`
	Found           bool          `json:"found"`
	Vulnerabilities []vuln.Record `json:"vulnerabilities"`
	LastChecked     time.Time     `json:"last_checked"`
}

// Vulnerabilities asks the configured provider about packageID@ver once the
// registry confirms the version exists. Registry failures surface exactly as
// in [Resolver.Metadata]; an unknown version yields Found=false and an empty
// list without consulting the provider.
func (r *Resolver) Vulnerabilities(ctx context.Context, packageID, ver string) (*VulnerabilityReport, error) {
	records, err := r.catalog(ctx, packageID)
	if err != nil {
		return nil, err
	}

	out := &VulnerabilityReport{
		PackageID:       packageID,
		Version:         ver,
		Vulnerabilities: []vuln.Record{},
		LastChecked:     time.Now().UTC(),
	}
	rec, ok := findRecord(records, ver)
	if !ok {
		return out, nil
	}
	out.Found = true

	recs, err := r.Vulns.Vulnerabilities(ctx, packageID, rec.Version)
	if err != nil {
		return nil, fmt.Errorf("vulnerabilities for %s@%s: %w", packageID, rec.Version, err)
	}
	if recs != nil {
		out.Vulnerabilities = recs
	}
	return out, nil
}
