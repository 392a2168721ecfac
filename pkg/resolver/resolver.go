// Package resolver answers version questions about a package from its
// registry version catalog.
//
// The central operation is [Resolver.CompatibleVersions]: every published
// version whose declared dependency groups are compatible with a target
// framework (per a [framework.Graph]) is collected and ordered newest first.
// Version strings that do not parse are logged and skipped; they never fail
// the request.
//
// An empty compatible set is a valid answer, not an error. Callers that
// want a second opinion fall back to text evidence (see the evidence
// package).
package resolver

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/devflow/pkg/framework"
	"github.com/matzehuels/devflow/pkg/registry"
	"github.com/matzehuels/devflow/pkg/version"
	"github.com/matzehuels/devflow/pkg/vuln"
)

// Resolver computes version, dependency, metadata and vulnerability views
// over a registry source. It holds no per-request state and is safe for
// concurrent use.
type Resolver struct {
	Source registry.Source
	Vulns  vuln.Provider
	Graph  *framework.Graph
	Logger *log.Logger
}

// New creates a resolver for the .NET framework graph.
// A nil vulns provider reports no vulnerabilities; a nil logger discards output.
func New(src registry.Source, vulns vuln.Provider, logger *log.Logger) *Resolver {
	if vulns == nil {
		vulns = vuln.NewStaticProvider()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Resolver{
		Source: src,
		Vulns:  vulns,
		Graph:  framework.DotNet,
		Logger: logger,
	}
}

// VersionInfo is one entry of a version listing.
type VersionInfo struct {
	Version   string    `json:"version"`
	Published time.Time `json:"published"`
	Downloads int64     `json:"downloads"`
}

// VersionList is the result of [Resolver.Versions].
type VersionList struct {
	PackageID string        `json:"package_id"`
	Versions  []VersionInfo `json:"versions"`
}

// Versions lists every valid published version of packageID, newest first.
func (r *Resolver) Versions(ctx context.Context, packageID string) (*VersionList, error) {
	records, err := r.catalog(ctx, packageID)
	if err != nil {
		return nil, err
	}

	valid := r.validRecords(packageID, records)
	out := &VersionList{PackageID: packageID, Versions: make([]VersionInfo, 0, len(valid))}
	for _, pr := range valid {
		out.Versions = append(out.Versions, VersionInfo{
			Version:   pr.record.Version,
			Published: pr.record.Published,
			Downloads: pr.record.Downloads,
		})
	}
	return out, nil
}

func (r *Resolver) catalog(ctx context.Context, packageID string) ([]registry.VersionRecord, error) {
	records, err := r.Source.FetchVersionCatalog(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("fetch versions for %s: %w", packageID, err)
	}
	return records, nil
}

type parsedRecord struct {
	record  registry.VersionRecord
	version version.Version
}

// validRecords drops records with unparseable versions (logging each) and
// returns the rest sorted newest first.
func (r *Resolver) validRecords(packageID string, records []registry.VersionRecord) []parsedRecord {
	out := make([]parsedRecord, 0, len(records))
	for _, rec := range records {
		v, err := version.Parse(rec.Version)
		if err != nil {
			r.Logger.Warn("skipping invalid version", "package", packageID, "version", rec.Version)
			continue
		}
		out = append(out, parsedRecord{record: rec, version: v})
	}
	slices.SortStableFunc(out, func(a, b parsedRecord) int {
		return b.version.Compare(a.version)
	})
	return out
}

// findRecord locates the record for v, matching the exact string first and
// then any record whose version parses to the same value.
func findRecord(records []registry.VersionRecord, v string) (registry.VersionRecord, bool) {
	v = strings.TrimSpace(v)
	if rec, ok := registry.Find(records, v); ok {
		return rec, true
	}
	want, err := version.Parse(v)
	if err != nil {
		return registry.VersionRecord{}, false
	}
	for _, rec := range records {
		if got, err := version.Parse(rec.Version); err == nil && got.Compare(want) == 0 {
			return rec, true
		}
	}
	return registry.VersionRecord{}, false
}
