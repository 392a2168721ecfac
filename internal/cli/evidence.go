package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/devflow/pkg/config"
	"github.com/matzehuels/devflow/pkg/evidence"
	"github.com/matzehuels/devflow/pkg/service"
	"github.com/matzehuels/devflow/pkg/store"
)

// =============================================================================
// check
// =============================================================================

func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <package> <version> <framework>",
		Short: "Gather search evidence on NuGet package compatibility",
		Long: `Query web search for compatibility, vulnerability and release evidence about a
NuGet package version on a target framework.

Requires GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_ENGINE_ID (environment,
.env file or config).`,
		Example: `  devflow check Newtonsoft.Json 12.0.3 net6.0`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{requireSearch: true}, func(ctx context.Context, a *app) error {
				prog := newProgress(loggerFromContext(ctx))
				var res service.EvidenceResult
				c.spin(ctx, "Searching for evidence...", func() {
					res = a.svc.CheckCompatibility(ctx, args[0], args[1], args[2])
				})
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}
				prog.done("Evidence gathered")
				printReport(res)
				return nil
			})
		},
	}
}

// =============================================================================
// check-maven
// =============================================================================

func (c *CLI) checkMavenCommand() *cobra.Command {
	var gradle bool

	cmd := &cobra.Command{
		Use:   "check-maven <groupId:artifactId> <version> <runtime>",
		Short: "Gather search evidence on Java artifact compatibility",
		Long: `Query web search for evidence that a Maven or Gradle artifact version runs on
a Java runtime, and look up the latest release on Maven Central.`,
		Example: `  devflow check-maven com.google.guava:guava 31.1-jre java17
  devflow check-maven org.slf4j:slf4j-api 1.7.36 java11 --gradle`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, artifactID, err := splitCoordinate(args[0])
			if err != nil {
				return err
			}
			return c.withApp(cmd, serviceOptions{requireSearch: true}, func(ctx context.Context, a *app) error {
				var res service.EvidenceResult
				c.spin(ctx, "Searching for evidence...", func() {
					if gradle {
						res = a.svc.CheckGradleCompatibility(ctx, groupID, artifactID, args[1], args[2])
					} else {
						res = a.svc.CheckMavenCompatibility(ctx, groupID, artifactID, args[1], args[2])
					}
				})
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}
				printReport(res)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&gradle, "gradle", false, "phrase queries for Gradle builds")
	return cmd
}

// splitCoordinate splits "groupId:artifactId". Validation of each part is
// left to the service.
func splitCoordinate(coord string) (string, string, error) {
	groupID, artifactID, ok := strings.Cut(coord, ":")
	if ok {
		return groupID, artifactID, nil
	}
	return "", "", fmt.Errorf("invalid coordinate %q (expected groupId:artifactId)", coord)
}

func printReport(res service.EvidenceResult) {
	r := res.Report
	if r == nil {
		return
	}

	title := r.PackageName
	if r.GroupID != "" {
		title = r.GroupID + ":" + r.ArtifactID
	}
	printSuccess("%s %s on %s", StyleHighlight.Render(title), r.CurrentVersion, StyleHighlight.Render(r.Target))
	printKeyValue("Compatible", renderBool(r.Compatibility.IsCompatible))
	if len(r.Compatibility.SupportedRuntimes) > 0 {
		printKeyValue("Runtimes", joinLimited(r.Compatibility.SupportedRuntimes, 8))
	}
	printKeyValue("Latest", r.LatestVersion)
	if r.RegistryLatest != "" {
		printKeyValue("Registry", r.RegistryLatest)
	}
	printKeyValue("CVEs", fmt.Sprintf("%d reported", len(r.Vulnerabilities.Vulnerabilities)))

	printEvidence("Evidence", r.Compatibility.Evidence)
	printEvidence("Recommendations", r.Compatibility.Recommendations)

	if r.Vulnerabilities.HasVulnerabilities {
		printNewline()
		printWarning("Reported vulnerabilities")
		for _, v := range r.Vulnerabilities.Vulnerabilities {
			printBullet("%s [%s] %s", StyleValue.Render(v.ID), renderSeverity(v.Severity), StyleDim.Render(v.Description))
		}
	}
	if res.CheckID != "" {
		printNewline()
		printDetail("Check ID: %s", res.CheckID)
	}
}

func printEvidence(title string, items []evidence.Evidence) {
	if len(items) == 0 {
		return
	}
	printNewline()
	printInfo("%s", title)
	for _, e := range items {
		printBullet("%s", StyleLink.Render(e.Source))
		printDetail("    %s", truncate(e.Text, 160))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// =============================================================================
// fallback
// =============================================================================

func (c *CLI) fallbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fallback <package> <framework>",
		Short: "Mine compatible versions from search results",
		Long: `Mine version numbers from web search results that mention a package together
with a target framework. Use this when the registry metadata is incomplete.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{requireSearch: true}, func(ctx context.Context, a *app) error {
				var res service.FallbackResult
				c.spin(ctx, "Searching for versions...", func() {
					res = a.svc.CompatibleVersionsFallback(ctx, args[0], args[1])
				})
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}

				f := res.FallbackVersions
				if f == nil || len(f.CompatibleVersions) == 0 {
					printWarning("Search results mention no versions of %s for %s", args[0], args[1])
					return nil
				}
				printSuccess("%d versions of %s mentioned for %s", len(f.CompatibleVersions),
					StyleHighlight.Render(f.PackageID), StyleHighlight.Render(f.TargetFramework))
				printKeyValue("Latest", f.LatestCompatible)
				printKeyValue("Versions", joinLimited(f.CompatibleVersions, 10))
				printKeyValue("Source", renderSource(f.Source))
				return nil
			})
		},
	}
}

// =============================================================================
// history
// =============================================================================

func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent evidence checks",
		Long: `List recent evidence checks recorded in the configured history backend.

The default in-memory history lives inside one process, so a fresh CLI run
always starts empty. Checks made by "devflow serve" are listed by its
GET /v1/history endpoint; set history.backend = "mongo" to share history
between the server and CLI runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{}, func(ctx context.Context, a *app) error {
				if a.cfg.History.Backend == config.HistoryMemory {
					c.Logger.Warn("in-memory history is per process; query a server's /v1/history or use the mongo backend",
						"backend", a.cfg.History.Backend)
				}
				res := a.svc.RecentChecks(ctx, limit)
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}
				if len(res.Checks) == 0 {
					printInfo("No checks recorded")
					return nil
				}
				for _, rec := range res.Checks {
					printBullet("%s %s %s", StyleDim.Render(rec.CreatedAt.Local().Format("2006-01-02 15:04")),
						StyleValue.Render(string(rec.Kind)), describeQuery(rec))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultLimit, "maximum checks to list")
	return cmd
}

func describeQuery(rec store.Record) string {
	q := rec.Query
	s := q.Package
	if q.CurrentVersion != "" {
		s += " " + q.CurrentVersion
	}
	s += " " + iconArrow + " " + q.Target
	switch {
	case rec.Report != nil:
		s += " " + renderBool(rec.Report.Compatibility.IsCompatible)
	case rec.Fallback != nil:
		s += StyleDim.Render(fmt.Sprintf(" (%d versions)", len(rec.Fallback.CompatibleVersions)))
	}
	return s
}
