package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/devflow/pkg/framework"
)

const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

func (c *CLI) graphCommand() *cobra.Command {
	var (
		family string
		chain  string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the framework compatibility graph",
		Long: `Print which frameworks a target can consume packages built for.

Formats:
  text  one line per framework with its fallback chain (default)
  dot   Graphviz source
  svg   rendered diagram (requires -o or a redirected stdout)`,
		Example: `  devflow graph --chain net48
  devflow graph --family java --format dot
  devflow graph --format svg -o dotnet.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ok := framework.GraphFor(family)
			if !ok {
				return fmt.Errorf("unknown framework family %q (want dotnet or java)", family)
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			if chain != "" {
				return writeChain(out, g, chain)
			}

			switch format {
			case formatText:
				return writeGraphText(out, g)
			case formatDOT:
				_, err := io.WriteString(out, framework.ToDOT(g))
				return err
			case formatSVG:
				svg, err := framework.RenderSVG(cmd.Context(), framework.ToDOT(g))
				if err != nil {
					return err
				}
				if _, err := out.Write(svg); err != nil {
					return err
				}
				if output != "" {
					printSuccess("Rendered %s graph", g.Family().Name)
					printFile(output)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, dot or svg)", format)
			}
		},
	}

	cmd.Flags().StringVar(&family, "family", "dotnet", "framework family (dotnet, java)")
	cmd.Flags().StringVar(&chain, "chain", "", "print only the fallback chain of this framework")
	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, dot, svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("family", cobra.FixedCompletions(
		[]string{framework.DotNetFamily.Name, framework.JavaFamily.Name}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatText, formatDOT, formatSVG}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("chain", completeFrameworks)
	return cmd
}

// writeChain prints the compatibility chain of one framework, or an error
// when the framework has no entry in the graph.
func writeChain(w io.Writer, g *framework.Graph, raw string) error {
	id := g.Normalize(raw)
	if !g.Has(id) {
		return fmt.Errorf("%s is not a known %s framework", id, g.Family().Name)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", id, joinIDs(g.Chain(id)))
	return err
}

func writeGraphText(w io.Writer, g *framework.Graph) error {
	for _, k := range g.Keys() {
		if _, err := fmt.Fprintf(w, "%-16s %s\n", k, joinIDs(g.Chain(k))); err != nil {
			return err
		}
	}
	return nil
}

func joinIDs(ids []framework.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " "+iconArrow+" ")
}

// completeFrameworks offers every known anchor of both families.
func completeFrameworks(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var ids []string
	for _, g := range []*framework.Graph{framework.DotNet, framework.JavaRuntimes} {
		for _, id := range g.Keys() {
			ids = append(ids, string(id))
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
