package service

import (
	"context"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/evidence"
	"github.com/matzehuels/devflow/pkg/resolver"
	"github.com/matzehuels/devflow/pkg/vuln"
)

// Sources of a compatible-versions answer.
const (
	SourceRegistry = "registry"
	SourceSearch   = evidence.SourceSearch
)

// VersionsResult is the result of GetVersions.
type VersionsResult struct {
	Envelope
	*resolver.VersionList
}

// CompatibleVersionsResult is the result of GetCompatibleVersions.
//
// Source is "registry" unless the registry had no compatible version and the
// search fallback found some, in which case it is "search" and Fallback
// holds the mined versions.
type CompatibleVersionsResult struct {
	Envelope
	*resolver.Compatibility
	Source   string                     `json:"source,omitempty"`
	Fallback *evidence.FallbackVersions `json:"fallback,omitempty"`
}

// DependenciesResult is the result of GetDependencies.
type DependenciesResult struct {
	Envelope
	*resolver.DependencyList
}

// VulnerabilitiesResult is the result of GetVulnerabilities.
type VulnerabilitiesResult struct {
	Envelope
	*resolver.VulnerabilityReport
}

// MetadataResult is the result of GetMetadata.
type MetadataResult struct {
	Envelope
	*resolver.MetadataInfo
}

// CompatibleOptions tunes GetCompatibleVersions.
type CompatibleOptions struct {
	CurrentVersion string
	NoFallback     bool
}

// GetVersions lists every published version of packageID, newest first.
func (s *Service) GetVersions(ctx context.Context, packageID string) VersionsResult {
	packageID = clean(packageID)
	var out *resolver.VersionList
	env := s.run(ctx, "versions", packageID, func(ctx context.Context) (int, error) {
		if err := dferrors.ValidatePackageID(packageID); err != nil {
			return 0, err
		}
		list, err := s.Resolver.Versions(ctx, packageID)
		if isNotFound(err) {
			s.Logger.Info("package not found", "package", packageID)
			list, err = &resolver.VersionList{PackageID: packageID, Versions: []resolver.VersionInfo{}}, nil
		}
		if err != nil {
			return 0, err
		}
		out = list
		return len(list.Versions), nil
	})
	return VersionsResult{Envelope: env, VersionList: out}
}

// GetCompatibleVersions lists the versions of packageID compatible with
// target. When none are found and the fallback is enabled (and not disabled
// by opts), search evidence is consulted; a failing fallback is logged and
// the registry answer stands.
func (s *Service) GetCompatibleVersions(ctx context.Context, packageID, target string, opts CompatibleOptions) CompatibleVersionsResult {
	packageID, target = clean(packageID), clean(target)
	current := clean(opts.CurrentVersion)

	var out CompatibleVersionsResult
	env := s.run(ctx, "compatible", subject(packageID, target), func(ctx context.Context) (int, error) {
		if err := dferrors.ValidatePackageID(packageID); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateFramework(target); err != nil {
			return 0, err
		}
		if err := validateOptionalVersion(current); err != nil {
			return 0, err
		}

		compat, err := s.Resolver.CompatibleVersions(ctx, packageID, target, current)
		if isNotFound(err) {
			s.Logger.Info("package not found", "package", packageID)
			compat, err = &resolver.Compatibility{
				PackageID:          packageID,
				TargetFramework:    s.Resolver.Graph.Normalize(target),
				CompatibleVersions: []string{},
				Details:            []resolver.VersionDetail{},
			}, nil
		}
		if err != nil {
			return 0, err
		}
		out.Compatibility = compat
		out.Source = SourceRegistry

		if len(compat.CompatibleVersions) > 0 || !s.Fallback || opts.NoFallback || s.Checker == nil {
			return len(compat.CompatibleVersions), nil
		}

		s.Logger.Info("no compatible versions in registry, trying search", "package", packageID, "target", target)
		fb, err := s.Checker.CompatibleVersions(ctx, packageID, target)
		if err != nil {
			s.Logger.Warn("search fallback failed", "package", packageID, "error", err)
			return 0, nil
		}
		out.Fallback = fb
		if len(fb.CompatibleVersions) > 0 {
			out.Source = SourceSearch
		}
		return len(fb.CompatibleVersions), nil
	})
	out.Envelope = env
	if !env.OK() {
		out.Compatibility, out.Fallback, out.Source = nil, nil, ""
	}
	return out
}

// GetDependencies lists the immediate dependencies of packageID@ver for target.
func (s *Service) GetDependencies(ctx context.Context, packageID, ver, target string) DependenciesResult {
	packageID, ver, target = clean(packageID), clean(ver), clean(target)
	var out *resolver.DependencyList
	env := s.run(ctx, "dependencies", subject(packageID, ver), func(ctx context.Context) (int, error) {
		if err := dferrors.ValidatePackageID(packageID); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateVersionString(ver); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateFramework(target); err != nil {
			return 0, err
		}
		deps, err := s.Resolver.Dependencies(ctx, packageID, ver, target)
		if isNotFound(err) {
			deps, err = &resolver.DependencyList{
				PackageID:       packageID,
				Version:         ver,
				TargetFramework: target,
				Dependencies:    []resolver.DependencyInfo{},
			}, nil
		}
		if err != nil {
			return 0, err
		}
		out = deps
		return len(deps.Dependencies), nil
	})
	return DependenciesResult{Envelope: env, DependencyList: out}
}

// GetVulnerabilities reports known vulnerabilities of packageID@ver from the
// configured provider. The registry is consulted first, so an unknown package
// or version is a success with Found=false.
func (s *Service) GetVulnerabilities(ctx context.Context, packageID, ver string) VulnerabilitiesResult {
	packageID, ver = clean(packageID), clean(ver)
	var out *resolver.VulnerabilityReport
	env := s.run(ctx, "vulnerabilities", subject(packageID, ver), func(ctx context.Context) (int, error) {
		if err := dferrors.ValidatePackageID(packageID); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateVersionString(ver); err != nil {
			return 0, err
		}
		report, err := s.Resolver.Vulnerabilities(ctx, packageID, ver)
		if isNotFound(err) {
			report, err = &resolver.VulnerabilityReport{
				PackageID:       packageID,
				Version:         ver,
				Vulnerabilities: []vuln.Record{},
			}, nil
		}
		if err != nil {
			return 0, err
		}
		out = report
		return len(report.Vulnerabilities), nil
	})
	return VulnerabilitiesResult{Envelope: env, VulnerabilityReport: out}
}

// GetMetadata returns descriptive metadata of packageID@ver.
func (s *Service) GetMetadata(ctx context.Context, packageID, ver string) MetadataResult {
	packageID, ver = clean(packageID), clean(ver)
	var out *resolver.MetadataInfo
	env := s.run(ctx, "metadata", subject(packageID, ver), func(ctx context.Context) (int, error) {
		if err := dferrors.ValidatePackageID(packageID); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateVersionString(ver); err != nil {
			return 0, err
		}
		md, err := s.Resolver.Metadata(ctx, packageID, ver)
		if isNotFound(err) {
			md, err = &resolver.MetadataInfo{PackageID: packageID, Version: ver}, nil
		}
		if err != nil {
			return 0, err
		}
		out = md
		if !md.Found {
			return 0, nil
		}
		return 1, nil
	})
	return MetadataResult{Envelope: env, MetadataInfo: out}
}
