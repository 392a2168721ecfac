package resolver

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/devflow/pkg/framework"
	"github.com/matzehuels/devflow/pkg/version"
)

// VersionDetail describes one compatible version.
type VersionDetail struct {
	Version             string    `json:"version"`
	Published           time.Time `json:"published"`
	Downloads           int64     `json:"downloads"`
	SupportedFrameworks []string  `json:"supported_frameworks"`
}

// Compatibility is the result of [Resolver.CompatibleVersions].
//
// LatestCompatible is empty when no version is compatible. CurrentCompatible
// and UpgradeAvailable are only set when a current version was supplied.
type Compatibility struct {
	PackageID          string          `json:"package_id"`
	TargetFramework    framework.ID    `json:"target_framework"`
	CompatibleVersions []string        `json:"compatible_versions"`
	LatestCompatible   string          `json:"latest_compatible,omitempty"`
	Details            []VersionDetail `json:"version_details"`
	CurrentVersion     string          `json:"current_version,omitempty"`
	CurrentCompatible  *bool           `json:"current_compatible,omitempty"`
	UpgradeAvailable   *bool           `json:"upgrade_available,omitempty"`
}

// CompatibleVersions returns the versions of packageID whose declared target
// frameworks are compatible with target, newest first.
//
// Records with unparseable versions are skipped. A registry failure returns
// an error and no partial result. Zero compatible versions is a successful,
// empty result.
func (r *Resolver) CompatibleVersions(ctx context.Context, packageID, target, currentVersion string) (*Compatibility, error) {
	targetID := r.Graph.Normalize(target)
	r.Logger.Debug("checking compatibility", "package", packageID, "target", targetID)

	records, err := r.catalog(ctx, packageID)
	if err != nil {
		return nil, err
	}

	out := &Compatibility{
		PackageID:          packageID,
		TargetFramework:    targetID,
		CompatibleVersions: []string{},
		Details:            []VersionDetail{},
	}
	var compatible []version.Version
	for _, pr := range r.validRecords(packageID, records) {
		supported := pr.record.SupportedFrameworks()
		if !r.Graph.IsCompatible(targetID, supported) {
			continue
		}
		compatible = append(compatible, pr.version)
		out.CompatibleVersions = append(out.CompatibleVersions, pr.record.Version)
		out.Details = append(out.Details, VersionDetail{
			Version:             pr.record.Version,
			Published:           pr.record.Published,
			Downloads:           pr.record.Downloads,
			SupportedFrameworks: supported.Strings(),
		})
	}
	if len(out.CompatibleVersions) > 0 {
		out.LatestCompatible = out.CompatibleVersions[0]
	}

	if currentVersion != "" {
		r.assessCurrent(out, currentVersion, compatible)
	}

	r.Logger.Info("resolved compatible versions",
		"package", packageID,
		"target", targetID,
		"count", len(out.CompatibleVersions))
	return out, nil
}

// assessCurrent sets the current-version fields; compatible holds the parsed
// compatible versions, newest first.
func (r *Resolver) assessCurrent(out *Compatibility, current string, compatible []version.Version) {
	out.CurrentVersion = current
	cur, err := version.Parse(current)
	if err != nil {
		r.Logger.Warn("current version is not a valid version", "version", current)
		return
	}

	found := slices.ContainsFunc(compatible, func(v version.Version) bool { return v.Compare(cur) == 0 })
	upgrade := len(compatible) > 0 && cur.Less(compatible[0])
	out.CurrentCompatible = &found
	out.UpgradeAvailable = &upgrade
}
