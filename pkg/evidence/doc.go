// Package evidence mines web search results for compatibility evidence.
//
// When a registry's structured metadata says nothing useful about a target
// framework or runtime, search snippets often do: release notes mention
// version numbers, blog posts say "works with Java 17", advisories cite CVE
// ids. The extractors in this package turn a slice of [search.Result] into
// those facts with plain pattern matching and keyword heuristics:
//
//   - [ExtractVersions]: version tokens from snippets that mention both the
//     package and the target
//   - [ExtractCompatibility] and [ExtractRuntimeCompatibility]: compatibility
//     claims and recommendations
//   - [ExtractVulnerabilities] and [ExtractSeverity]: CVE ids with a
//     keyword-derived severity
//   - [ExtractLatestVersion]: the highest three-part version mentioned
//
// A [Checker] issues the compatibility, vulnerability and latest-version
// queries for a package (in parallel) and assembles a [Report].
//
// All of this is heuristic. [ExtractVersions] orders its output as plain
// strings, so "9.0.0" sorts above "10.0.0", while [ExtractLatestVersion]
// compares numerically. The two are kept as they are so that output stays
// stable for existing callers.
//
// [search.Result]: github.com/matzehuels/devflow/pkg/integrations/search.Result
package evidence
