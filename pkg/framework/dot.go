package framework

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT writes the graph as a Graphviz digraph. Each anchor points to the
// first entry of its chain and consecutive chain entries are linked, so the
// lineage reads top to bottom from newest to oldest.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", g.family.Name)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n\n")

	seen := make(map[[2]ID]bool)
	edge := func(from, to ID) {
		if from == to || seen[[2]ID{from, to}] {
			return
		}
		seen[[2]ID{from, to}] = true
		fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
	}

	for _, k := range g.keys {
		chain := g.chains[k]
		if len(chain) == 0 {
			continue
		}
		edge(k, chain[0])
		for i := 1; i < len(chain); i++ {
			edge(chain[i-1], chain[i])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
