// Package framework normalizes target framework and runtime identifiers and
// answers compatibility questions against a fixed lineage graph.
//
// # Identifiers
//
// Registries and people spell the same target in many ways: "netstandard2.0",
// "NetStandard-2.0", ".NETStandard2.0". [Normalize] folds all of these into a
// single token ([ID]) by lower-casing, stripping "." and "-" and making sure the
// family prefix is present:
//
//	framework.Normalize("NetStandard2.0") // "netstandard20"
//	framework.Normalize("4.8")            // "net48"
//	framework.Java.Normalize("Java-17")   // "java17"
//
// Normalization is idempotent and total: every string maps to some ID, and
// comparisons elsewhere always use normalized forms.
//
// # Compatibility Graph
//
// A [Graph] maps an anchor identifier to the ordered chain of older identifiers
// it is backward-compatible with. Chains are generated from an ordered lineage
// per family instead of being written out by hand:
//
//   - [DotNet]: the .NET Framework lineage (net20 … net48) anchored by the
//     framework versions themselves plus netstandard1.x, netstandard2.x and
//     net6.0–net8.0.
//   - [JavaRuntimes]: the Java runtime lineage (java8, java11 … java21).
//
// Two queries are supported:
//
//	g.IsCompatible("net45", framework.NewSet("net48"))         // true
//	g.IsCompatibleChain("java17", []framework.ID{"java8"})      // true
//	g.IsCompatibleChain("java8", []framework.ID{"java17"})      // false
//
// [Graph.IsCompatible] is intentionally permissive: declaring support for any
// identifier that shares a chain with the target is treated as compatible.
//
// Graphs are built once at package initialization and never mutated, so they
// are safe for concurrent use.
//
// # Rendering
//
// [ToDOT] writes a graph as Graphviz DOT and [RenderSVG] renders DOT to SVG.
package framework
