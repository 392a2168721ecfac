package evidence

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/devflow/pkg/framework"
	"github.com/matzehuels/devflow/pkg/integrations/maven"
	"github.com/matzehuels/devflow/pkg/integrations/search"
	"github.com/matzehuels/devflow/pkg/vuln"
)

// Ecosystem selects the query wording and relevance key of a check.
type Ecosystem string

const (
	EcosystemNuGet  Ecosystem = "nuget"
	EcosystemMaven  Ecosystem = "maven"
	EcosystemGradle Ecosystem = "gradle"
)

// SourceSearch marks results that were mined from web search.
const SourceSearch = "search"

// Limits caps the number of results requested per query.
type Limits struct {
	Compatibility int
	Vulnerability int
	Latest        int
	Fallback      int
}

// DefaultLimits returns the standard caps (5, 5, 3 and 5).
func DefaultLimits() Limits {
	return Limits{Compatibility: 5, Vulnerability: 5, Latest: 3, Fallback: 5}
}

// ArtifactLookup resolves the latest published version of a Java artifact.
// *maven.Client satisfies it.
type ArtifactLookup interface {
	FetchArtifact(ctx context.Context, groupID, artifactID string, refresh bool) (*maven.ArtifactInfo, error)
}

// Vulnerabilities groups the CVE records found for a check.
type Vulnerabilities struct {
	HasVulnerabilities bool          `json:"has_vulnerabilities"`
	Vulnerabilities    []vuln.Record `json:"vulnerabilities"`
}

// Report is the outcome of one evidence check.
type Report struct {
	Ecosystem       Ecosystem       `json:"ecosystem"`
	PackageName     string          `json:"package_name"`
	GroupID         string          `json:"group_id,omitempty"`
	ArtifactID      string          `json:"artifact_id,omitempty"`
	CurrentVersion  string          `json:"current_version"`
	Target          string          `json:"target"`
	Compatibility   Compatibility   `json:"compatibility"`
	Vulnerabilities Vulnerabilities `json:"vulnerabilities"`
	LatestVersion   string          `json:"latest_version"`
	RegistryLatest  string          `json:"registry_latest,omitempty"`
	LastChecked     time.Time       `json:"last_checked"`
}

// FallbackVersions is the result of [Checker.CompatibleVersions].
type FallbackVersions struct {
	PackageID          string   `json:"package_id"`
	TargetFramework    string   `json:"target_framework"`
	CompatibleVersions []string `json:"compatible_versions"`
	LatestCompatible   string   `json:"latest_compatible,omitempty"`
	Source             string   `json:"source"`
}

// Checker runs evidence queries against a search source.
type Checker struct {
	Searcher search.Searcher
	Limits   Limits
	Runtimes *framework.Graph
	Latest   ArtifactLookup // Optional; enables Report.RegistryLatest for Java artifacts
	Logger   *log.Logger

	now func() time.Time
}

// NewChecker creates a checker with default limits and the Java runtime graph.
func NewChecker(s search.Searcher, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Checker{
		Searcher: s,
		Limits:   DefaultLimits(),
		Runtimes: framework.JavaRuntimes,
		Logger:   logger,
		now:      time.Now,
	}
}

type queries struct {
	compatibility string
	vulnerability string
	latest        string
}

type answers struct {
	compatibility []search.Result
	vulnerability []search.Result
	latest        []search.Result
}

// run issues the three queries concurrently. Any failure fails the check.
func (c *Checker) run(ctx context.Context, q queries) (answers, error) {
	var a answers
	g, ctx := errgroup.WithContext(ctx)
	fetch := func(query string, num int, dst *[]search.Result) {
		g.Go(func() error {
			resp, err := c.Searcher.Search(ctx, query, num)
			if err != nil {
				return err
			}
			*dst = resp.Results
			c.Logger.Debug("search", "query", query, "results", len(resp.Results))
			return nil
		})
	}
	fetch(q.compatibility, c.Limits.Compatibility, &a.compatibility)
	fetch(q.vulnerability, c.Limits.Vulnerability, &a.vulnerability)
	fetch(q.latest, c.Limits.Latest, &a.latest)
	return a, g.Wait()
}

func (c *Checker) timestamp() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().UTC()
}

func vulnerabilities(results []search.Result) Vulnerabilities {
	recs := ExtractVulnerabilities(results)
	return Vulnerabilities{HasVulnerabilities: len(recs) > 0, Vulnerabilities: recs}
}

// CheckPackage gathers compatibility, vulnerability and latest-version
// evidence for a NuGet package on a .NET target.
func (c *Checker) CheckPackage(ctx context.Context, packageName, currentVersion, target string) (*Report, error) {
	c.Logger.Info("checking compatibility via search",
		"package", packageName, "version", currentVersion, "target", target)

	a, err := c.run(ctx, queries{
		compatibility: fmt.Sprintf("%s %s compatibility %s", packageName, target, currentVersion),
		vulnerability: fmt.Sprintf("%s %s vulnerabilities CVE", packageName, currentVersion),
		latest:        fmt.Sprintf("%s latest version", packageName),
	})
	if err != nil {
		return nil, fmt.Errorf("search evidence for %s: %w", packageName, err)
	}

	return &Report{
		Ecosystem:       EcosystemNuGet,
		PackageName:     packageName,
		CurrentVersion:  currentVersion,
		Target:          target,
		Compatibility:   ExtractCompatibility(a.compatibility, packageName, target),
		Vulnerabilities: vulnerabilities(a.vulnerability),
		LatestVersion:   ExtractLatestVersion(a.latest),
		LastChecked:     c.timestamp(),
	}, nil
}

// CheckArtifact gathers evidence for a Java artifact on a target runtime.
// eco must be [EcosystemMaven] or [EcosystemGradle]; it only changes the
// query wording. When a Latest lookup is configured, the registry's latest
// version is reported as well; a failed lookup is logged and never fails
// the check.
func (c *Checker) CheckArtifact(ctx context.Context, eco Ecosystem, groupID, artifactID, currentVersion, runtime string) (*Report, error) {
	if eco != EcosystemMaven && eco != EcosystemGradle {
		return nil, fmt.Errorf("unsupported ecosystem %q for artifact checks", eco)
	}
	coordinate := groupID + ":" + artifactID
	c.Logger.Info("checking runtime compatibility via search",
		"ecosystem", eco, "artifact", coordinate, "version", currentVersion, "runtime", runtime)

	a, err := c.run(ctx, queries{
		compatibility: fmt.Sprintf("%s %s %s compatibility %s %s", groupID, artifactID, runtime, currentVersion, eco),
		vulnerability: fmt.Sprintf("%s %s %s vulnerabilities CVE", groupID, artifactID, currentVersion),
		latest:        fmt.Sprintf("%s %s latest version %s", groupID, artifactID, eco),
	})
	if err != nil {
		return nil, fmt.Errorf("search evidence for %s: %w", coordinate, err)
	}

	report := &Report{
		Ecosystem:       eco,
		PackageName:     coordinate,
		GroupID:         groupID,
		ArtifactID:      artifactID,
		CurrentVersion:  currentVersion,
		Target:          runtime,
		Compatibility:   ExtractRuntimeCompatibility(a.compatibility, coordinate, runtime, c.Runtimes),
		Vulnerabilities: vulnerabilities(a.vulnerability),
		LatestVersion:   ExtractLatestVersion(a.latest),
		LastChecked:     c.timestamp(),
	}

	if c.Latest != nil {
		info, err := c.Latest.FetchArtifact(ctx, groupID, artifactID, false)
		if err != nil {
			c.Logger.Warn("registry latest version lookup failed", "artifact", coordinate, "error", err)
		} else {
			report.RegistryLatest = info.Version
		}
	}
	return report, nil
}

// CompatibleVersions searches for versions of packageName said to be
// compatible with target. An empty result is not an error.
func (c *Checker) CompatibleVersions(ctx context.Context, packageName, target string) (*FallbackVersions, error) {
	query := fmt.Sprintf("%s compatible with %s version compatibility", packageName, target)
	resp, err := c.Searcher.Search(ctx, query, c.Limits.Fallback)
	if err != nil {
		return nil, fmt.Errorf("search compatible versions for %s: %w", packageName, err)
	}

	versions := ExtractVersions(resp.Results, packageName, target)
	out := &FallbackVersions{
		PackageID:          packageName,
		TargetFramework:    strings.TrimSpace(target),
		CompatibleVersions: versions,
		Source:             SourceSearch,
	}
	if len(versions) > 0 {
		out.LatestCompatible = versions[0]
	}
	c.Logger.Info("fallback compatible versions", "package", packageName, "target", target, "count", len(versions))
	return out, nil
}
