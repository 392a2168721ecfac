package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/devflow/pkg/service"
)

// =============================================================================
// versions
// =============================================================================

func (c *CLI) versionsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "versions <package>",
		Short: "List published versions of a NuGet package",
		Example: `  devflow versions Newtonsoft.Json
  devflow versions Serilog --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{}, func(ctx context.Context, a *app) error {
				var res service.VersionsResult
				c.spin(ctx, "Fetching versions...", func() {
					res = a.svc.GetVersions(ctx, args[0])
				})
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}

				versions := res.Versions
				printSuccess("%s has %d versions", StyleHighlight.Render(res.PackageID), len(versions))
				if limit > 0 && len(versions) > limit {
					versions = versions[:limit]
				}
				for _, v := range versions {
					printBullet("%-16s %s", StyleValue.Render(v.Version), StyleDim.Render(formatDate(v.Published)))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum versions to print (0 for all)")
	return cmd
}

// =============================================================================
// compatible
// =============================================================================

func (c *CLI) compatibleCommand() *cobra.Command {
	var (
		opts        service.CompatibleOptions
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "compatible <package> <framework>",
		Short: "List versions of a package compatible with a target framework",
		Long: `List the versions of a NuGet package that declare support for a target
framework, newest first. When the registry shows no compatible version and
search credentials are configured, devflow falls back to web search evidence.`,
		Example: `  devflow compatible Newtonsoft.Json net48
  devflow compatible Serilog netstandard2.0 --current 2.10.0
  devflow compatible Polly net6.0 --interactive`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{}, func(ctx context.Context, a *app) error {
				var res service.CompatibleVersionsResult
				c.spin(ctx, "Resolving compatible versions...", func() {
					res = a.svc.GetCompatibleVersions(ctx, args[0], args[1], opts)
				})
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}
				if interactive && res.Compatibility != nil && len(res.Details) > 0 {
					return c.pickVersion(ctx, res)
				}
				printCompatible(res)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.CurrentVersion, "current", "", "version currently in use")
	cmd.Flags().BoolVar(&opts.NoFallback, "no-fallback", false, "never fall back to search evidence")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a version from an interactive table")
	return cmd
}

func printCompatible(res service.CompatibleVersionsResult) {
	if res.Compatibility == nil {
		printWarning("No compatible versions found")
		return
	}

	target := string(res.TargetFramework)
	versions := res.CompatibleVersions
	latest := res.LatestCompatible
	if res.Source == service.SourceSearch && res.Fallback != nil {
		versions = res.Fallback.CompatibleVersions
		latest = res.Fallback.LatestCompatible
	}

	if len(versions) == 0 {
		printWarning("No version of %s is compatible with %s", res.PackageID, target)
		return
	}

	printSuccess("%d versions of %s support %s", len(versions),
		StyleHighlight.Render(res.PackageID), StyleHighlight.Render(target))
	printKeyValue("Latest", latest)
	printKeyValue("Source", renderSource(res.Source))
	printKeyValue("Versions", joinLimited(versions, 10))

	if res.CurrentCompatible != nil {
		printKeyValue("Current", fmt.Sprintf("%s (compatible: %s)", res.CurrentVersion, renderBool(*res.CurrentCompatible)))
	}
	if res.UpgradeAvailable != nil && *res.UpgradeAvailable {
		printNewline()
		printNextStep("Upgrade available", fmt.Sprintf("devflow deps %s %s --framework %s", res.PackageID, latest, target))
	}
}

// pickVersion shows the interactive version table and prints the selection.
func (c *CLI) pickVersion(ctx context.Context, res service.CompatibleVersionsResult) error {
	model := NewVersionPickerModel(res.PackageID, string(res.TargetFramework), res.Details)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("version picker: %w", err)
	}

	picked, ok := final.(VersionPickerModel)
	if !ok || picked.Selected == nil {
		printInfo("No version selected")
		return nil
	}

	v := picked.Selected
	printSuccess("Selected %s %s", res.PackageID, StyleHighlight.Render(v.Version))
	printKeyValue("Frameworks", joinLimited(v.SupportedFrameworks, 8))
	printNewline()
	printNextStep("Inspect dependencies", fmt.Sprintf("devflow deps %s %s --framework %s", res.PackageID, v.Version, res.TargetFramework))
	return nil
}

// =============================================================================
// deps
// =============================================================================

func (c *CLI) depsCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "deps <package> <version>",
		Short: "Show the dependencies of a package version",
		Example: `  devflow deps Newtonsoft.Json 13.0.1
  devflow deps Serilog 2.12.0 --framework net6.0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{}, func(ctx context.Context, a *app) error {
				var res service.DependenciesResult
				c.spin(ctx, "Fetching dependencies...", func() {
					res = a.svc.GetDependencies(ctx, args[0], args[1], target)
				})
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}

				if res.DependencyList == nil || !res.Found {
					printWarning("%s %s was not found", args[0], args[1])
					return nil
				}
				scope := "all frameworks"
				if res.TargetFramework != "" {
					scope = res.TargetFramework
				}
				printSuccess("%s %s has %d dependencies (%s)", StyleHighlight.Render(res.PackageID), res.Version,
					len(res.Dependencies), scope)
				for _, d := range res.Dependencies {
					printBullet("%s %s", StyleValue.Render(d.ID), StyleDim.Render(d.VersionRange))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&target, "framework", "f", "", "only dependencies declared for this framework")
	_ = cmd.RegisterFlagCompletionFunc("framework", completeFrameworks)
	return cmd
}

// =============================================================================
// vulns
// =============================================================================

func (c *CLI) vulnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vulns <package> <version>",
		Short: "List known vulnerabilities of a package version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{}, func(ctx context.Context, a *app) error {
				res := a.svc.GetVulnerabilities(ctx, args[0], args[1])
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}

				if res.VulnerabilityReport == nil || !res.Found {
					printWarning("%s %s was not found", args[0], args[1])
					return nil
				}
				if len(res.Vulnerabilities) == 0 {
					printSuccess("No known vulnerabilities for %s %s", args[0], args[1])
					return nil
				}
				printWarning("%d known vulnerabilities for %s %s", len(res.Vulnerabilities), res.PackageID, res.Version)
				for _, v := range res.Vulnerabilities {
					printBullet("%s [%s] %s", StyleValue.Render(v.ID), renderSeverity(v.Severity), v.Description)
					if len(v.FixedVersions) > 0 {
						printDetail("    fixed in %s", strings.Join(v.FixedVersions, ", "))
					}
				}
				return nil
			})
		},
	}
}

// =============================================================================
// metadata
// =============================================================================

func (c *CLI) metadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <package> <version>",
		Short: "Show registry metadata for a package version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{}, func(ctx context.Context, a *app) error {
				var res service.MetadataResult
				c.spin(ctx, "Fetching metadata...", func() {
					res = a.svc.GetMetadata(ctx, args[0], args[1])
				})
				if ok, err := c.emit(cmd, res.Envelope, res); !ok {
					return err
				}

				if res.MetadataInfo == nil || !res.Found {
					printWarning("%s %s was not found", args[0], args[1])
					return nil
				}
				printSuccess("%s %s", StyleHighlight.Render(res.PackageID), res.Version)
				if m := res.Metadata; m != nil {
					printKeyValue("Description", m.Description)
					printKeyValue("Authors", strings.Join(m.Authors, ", "))
					if m.ProjectURL != "" {
						printKeyValue("Project", StyleLink.Render(m.ProjectURL))
					}
					if m.LicenseURL != "" {
						printKeyValue("License", StyleLink.Render(m.LicenseURL))
					}
					if len(m.Tags) > 0 {
						printKeyValue("Tags", joinLimited(m.Tags, 8))
					}
				}
				printKeyValue("Published", formatDate(res.Published))
				printKeyValue("Downloads", fmt.Sprintf("%d", res.Downloads))
				frameworks := make([]string, len(res.SupportedFrameworks))
				for i, f := range res.SupportedFrameworks {
					frameworks[i] = string(f)
				}
				printKeyValue("Frameworks", joinLimited(frameworks, 8))
				return nil
			})
		},
	}
}
