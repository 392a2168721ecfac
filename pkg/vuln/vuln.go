// Package vuln defines vulnerability records and the provider interface the
// resolver queries for a package version.
//
// No vulnerability feed ships with devflow. [NewPlaceholderProvider] answers
// from a tiny fixed list and exists only so the lookup path can be exercised
// end to end; real deployments plug in their own [Provider].
package vuln

import (
	"context"
	"fmt"
	"strings"
)

// Severity is a normalized vulnerability severity.
type Severity string

const (
	SeverityUnknown  Severity = "unknown"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns an integer rank for comparison (Low=1, Critical=4).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a severity string case-insensitively.
// Accepts "moderate" as "medium".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium", "moderate":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityUnknown, fmt.Errorf("invalid severity: %s", s)
	}
}

// Record describes one known or reported vulnerability.
type Record struct {
	ID               string   `json:"id"`
	Severity         Severity `json:"severity"`
	Description      string   `json:"description"`
	Source           string   `json:"source"`
	AffectedVersions []string `json:"affected_versions,omitempty"`
	FixedVersions    []string `json:"fixed_versions,omitempty"`
}

// Provider looks up vulnerabilities for one package version.
// Implementations return an empty slice, not an error, when nothing is known.
type Provider interface {
	Vulnerabilities(ctx context.Context, packageID, version string) ([]Record, error)
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func(ctx context.Context, packageID, version string) ([]Record, error)

// Vulnerabilities calls f.
func (f ProviderFunc) Vulnerabilities(ctx context.Context, packageID, version string) ([]Record, error) {
	return f(ctx, packageID, version)
}

// StaticProvider answers from an in-memory table keyed by lower-cased
// package id and exact version string.
type StaticProvider struct {
	entries map[string][]Record
}

// NewStaticProvider creates an empty StaticProvider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{entries: make(map[string][]Record)}
}

// Add registers records for packageID at version.
func (p *StaticProvider) Add(packageID, version string, records ...Record) {
	k := staticKey(packageID, version)
	p.entries[k] = append(p.entries[k], records...)
}

// Vulnerabilities implements [Provider].
func (p *StaticProvider) Vulnerabilities(_ context.Context, packageID, version string) ([]Record, error) {
	recs := p.entries[staticKey(packageID, version)]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

func staticKey(packageID, version string) string {
	return strings.ToLower(strings.TrimSpace(packageID)) + "@" + strings.TrimSpace(version)
}

// NewPlaceholderProvider returns the built-in stand-in provider. It knows a
// single entry (Newtonsoft.Json 9.0.1) and is not a vulnerability feed.
func NewPlaceholderProvider() *StaticProvider {
	p := NewStaticProvider()
	p.Add("newtonsoft.json", "9.0.1", Record{
		ID:               "CVE-2023-1234",
		Severity:         SeverityHigh,
		Description:      "Deserialization vulnerability in Newtonsoft.Json 9.0.1",
		Source:           "placeholder",
		AffectedVersions: []string{"9.0.1"},
		FixedVersions:    []string{"13.0.1"},
	})
	return p
}
