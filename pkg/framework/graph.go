package framework

import (
	"slices"
	"strings"
)

// Graph is a read-only mapping from an anchor identifier to the ordered chain
// (newest first) of identifiers it is backward-compatible with.
type Graph struct {
	family Family
	chains map[ID][]ID
	keys   []ID
}

// Lineage describes a family's ordered members and the anchors built on top of them.
// Members are listed oldest first.
type Lineage struct {
	Family  Family
	Members []ID

	// Ceilings maps extra anchors (identifiers outside Members) to the newest
	// member their chain reaches. Each member is implicitly its own anchor.
	Ceilings map[ID]ID

	// Exclusive makes a member's chain hold only strictly older members.
	// The oldest member keeps itself so no chain is empty.
	Exclusive bool
}

// Build generates the graph for a lineage.
func (l Lineage) Build() *Graph {
	g := &Graph{family: l.Family, chains: make(map[ID][]ID, len(l.Members)+len(l.Ceilings))}

	for i, m := range l.Members {
		end := i + 1
		if l.Exclusive && i > 0 {
			end = i
		}
		g.chains[m] = newestFirst(l.Members[:end])
	}
	for anchor, ceiling := range l.Ceilings {
		idx := slices.Index(l.Members, ceiling)
		if idx < 0 {
			continue
		}
		g.chains[anchor] = newestFirst(l.Members[:idx+1])
	}

	for k := range g.chains {
		g.keys = append(g.keys, k)
	}
	slices.Sort(g.keys)
	return g
}

func newestFirst(ids []ID) []ID {
	out := slices.Clone(ids)
	slices.Reverse(out)
	return out
}

var netFramework = []ID{
	"net20", "net35", "net40", "net45", "net451", "net452",
	"net46", "net461", "net462", "net47", "net471", "net472", "net48",
}

var javaRuntimes = []ID{
	"java8", "java11", "java12", "java13", "java14", "java15",
	"java16", "java17", "java18", "java19", "java20", "java21",
}

var (
	// DotNet is the .NET compatibility graph.
	DotNet = Lineage{
		Family:  DotNetFamily,
		Members: netFramework,
		Ceilings: map[ID]ID{
			"netstandard10": "net45",
			"netstandard11": "net45",
			"netstandard12": "net45",
			"netstandard13": "net45",
			"netstandard14": "net45",
			"netstandard15": "net45",
			"netstandard16": "net45",
			"netstandard20": "net48",
			"netstandard21": "net48",
			"net60":         "net48",
			"net70":         "net48",
			"net80":         "net48",
		},
	}.Build()

	// JavaRuntimes is the Java runtime compatibility graph.
	JavaRuntimes = Lineage{
		Family:    JavaFamily,
		Members:   javaRuntimes,
		Exclusive: true,
	}.Build()
)

// Java is shorthand for the Java family normalizer.
var Java = JavaFamily

// Family returns the identifier family the graph was built for.
func (g *Graph) Family() Family { return g.family }

// Normalize normalizes raw within the graph's family.
func (g *Graph) Normalize(raw string) ID { return g.family.Normalize(raw) }

// Keys returns every anchor in ascending lexical order.
func (g *Graph) Keys() []ID { return slices.Clone(g.keys) }

// Chain returns the compatibility chain of id, newest first.
// Identifiers that are not anchors have an empty chain.
func (g *Graph) Chain(id ID) []ID { return slices.Clone(g.chains[id]) }

// Has reports whether id is an anchor of the graph.
func (g *Graph) Has(id ID) bool {
	_, ok := g.chains[id]
	return ok
}

// IsCompatible reports whether a package declaring the supported identifiers
// can be used from target. A direct match wins; otherwise any chain that
// contains target and shares a member with supported counts.
func (g *Graph) IsCompatible(target ID, supported Set) bool {
	target = g.Normalize(string(target))
	if supported.Has(target) {
		return true
	}
	for _, k := range g.keys {
		chain := g.chains[k]
		if !slices.Contains(chain, target) {
			continue
		}
		for _, id := range chain {
			if supported.Has(id) {
				return true
			}
		}
	}
	return false
}

// IsCompatibleChain reports whether any supported runtime is reachable in
// target's own chain.
func (g *Graph) IsCompatibleChain(target ID, supported []ID) bool {
	chain := g.chains[g.Normalize(string(target))]
	for _, id := range supported {
		if slices.Contains(chain, id) {
			return true
		}
	}
	return false
}

// GraphFor returns the graph of a family by name ("dotnet" or "java").
// Matching is case-insensitive; "net" and ".net" select dotnet, "jdk" and
// "jvm" select java.
func GraphFor(family string) (*Graph, bool) {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "dotnet", "net", ".net":
		return DotNet, true
	case "java", "jdk", "jvm":
		return JavaRuntimes, true
	default:
		return nil, false
	}
}
