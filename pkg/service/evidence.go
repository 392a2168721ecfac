package service

import (
	"context"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/evidence"
	"github.com/matzehuels/devflow/pkg/store"
)

// EvidenceResult is the result of the search-based compatibility checks.
// CheckID identifies the stored history record, when one was written.
type EvidenceResult struct {
	Envelope
	*evidence.Report
	CheckID string `json:"check_id,omitempty"`
}

// FallbackResult is the result of CompatibleVersionsFallback.
type FallbackResult struct {
	Envelope
	*evidence.FallbackVersions
	CheckID string `json:"check_id,omitempty"`
}

// CheckCompatibility gathers search evidence on whether NuGet package
// packageName at currentVersion works on target.
func (s *Service) CheckCompatibility(ctx context.Context, packageName, currentVersion, target string) EvidenceResult {
	packageName, currentVersion, target = clean(packageName), clean(currentVersion), clean(target)
	var out EvidenceResult
	out.Envelope = s.run(ctx, "check", subject(packageName, currentVersion), func(ctx context.Context) (int, error) {
		if err := dferrors.ValidatePackageID(packageName); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateVersionString(currentVersion); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateFramework(target); err != nil {
			return 0, err
		}
		c, err := s.checker()
		if err != nil {
			return 0, err
		}
		report, err := c.CheckPackage(ctx, packageName, currentVersion, target)
		if err != nil {
			return 0, err
		}
		out.Report = report

		rec := store.NewRecord(store.KindNuGet, store.Query{
			Package: packageName, CurrentVersion: currentVersion, Target: target,
		})
		rec.Report = report
		out.CheckID = s.record(ctx, rec)
		return len(report.Compatibility.Evidence), nil
	})
	return out
}

// CheckMavenCompatibility gathers search evidence on whether a Maven
// artifact works on a Java runtime.
func (s *Service) CheckMavenCompatibility(ctx context.Context, groupID, artifactID, currentVersion, runtime string) EvidenceResult {
	return s.checkArtifact(ctx, evidence.EcosystemMaven, groupID, artifactID, currentVersion, runtime)
}

// CheckGradleCompatibility is the Gradle-worded variant of
// CheckMavenCompatibility.
func (s *Service) CheckGradleCompatibility(ctx context.Context, groupID, artifactID, currentVersion, runtime string) EvidenceResult {
	return s.checkArtifact(ctx, evidence.EcosystemGradle, groupID, artifactID, currentVersion, runtime)
}

func (s *Service) checkArtifact(ctx context.Context, eco evidence.Ecosystem, groupID, artifactID, currentVersion, runtime string) EvidenceResult {
	groupID, artifactID = clean(groupID), clean(artifactID)
	currentVersion, runtime = clean(currentVersion), clean(runtime)
	coordinate := groupID + ":" + artifactID

	var out EvidenceResult
	out.Envelope = s.run(ctx, "check-"+string(eco), subject(coordinate, currentVersion), func(ctx context.Context) (int, error) {
		if err := dferrors.ValidateCoordinate(groupID, artifactID); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateVersionString(currentVersion); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateFramework(runtime); err != nil {
			return 0, err
		}
		c, err := s.checker()
		if err != nil {
			return 0, err
		}
		report, err := c.CheckArtifact(ctx, eco, groupID, artifactID, currentVersion, runtime)
		if err != nil {
			return 0, err
		}
		out.Report = report

		kind := store.KindMaven
		if eco == evidence.EcosystemGradle {
			kind = store.KindGradle
		}
		rec := store.NewRecord(kind, store.Query{
			Package: coordinate, CurrentVersion: currentVersion, Target: runtime,
		})
		rec.Report = report
		out.CheckID = s.record(ctx, rec)
		return len(report.Compatibility.Evidence), nil
	})
	return out
}

// CompatibleVersionsFallback mines search results for versions of
// packageName said to be compatible with target. An empty answer is a
// success.
func (s *Service) CompatibleVersionsFallback(ctx context.Context, packageName, target string) FallbackResult {
	packageName, target = clean(packageName), clean(target)
	var out FallbackResult
	out.Envelope = s.run(ctx, "fallback", subject(packageName, target), func(ctx context.Context) (int, error) {
		if err := dferrors.ValidatePackageID(packageName); err != nil {
			return 0, err
		}
		if err := dferrors.ValidateFramework(target); err != nil {
			return 0, err
		}
		c, err := s.checker()
		if err != nil {
			return 0, err
		}
		fb, err := c.CompatibleVersions(ctx, packageName, target)
		if err != nil {
			return 0, err
		}
		out.FallbackVersions = fb

		rec := store.NewRecord(store.KindFallback, store.Query{Package: packageName, Target: target})
		rec.Fallback = fb
		out.CheckID = s.record(ctx, rec)
		return len(fb.CompatibleVersions), nil
	})
	return out
}

// HistoryResult is the result of RecentChecks.
type HistoryResult struct {
	Envelope
	Checks []store.Record `json:"checks,omitempty"`
}

// RecentChecks returns up to limit recorded checks, newest first.
func (s *Service) RecentChecks(ctx context.Context, limit int) HistoryResult {
	var out HistoryResult
	out.Envelope = s.run(ctx, "history", "", func(ctx context.Context) (int, error) {
		recs, err := s.History.Recent(ctx, limit)
		if err != nil {
			return 0, err
		}
		out.Checks = recs
		return len(recs), nil
	})
	return out
}
