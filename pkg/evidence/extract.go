package evidence

import (
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/devflow/pkg/framework"
	"github.com/matzehuels/devflow/pkg/integrations/search"
	"github.com/matzehuels/devflow/pkg/version"
	"github.com/matzehuels/devflow/pkg/vuln"
)

var (
	threePartRe = regexp.MustCompile(`\d+\.\d+\.\d+`)
	dottedRunRe = regexp.MustCompile(`\d+(?:\.\d+)+`)
	cveRe       = regexp.MustCompile(`CVE-\d{4}-\d{4,7}`)
)

// Keywords that mark a snippet as a compatibility claim.
var compatibilityIndicators = []string{"compatible", "supported", "works with", "runs on"}

// Keywords that mark a snippet as a recommendation.
var recommendationIndicators = []string{"recommend", "suggest"}

// Severity keywords in priority order; the first one present wins.
var severityKeywords = []vuln.Severity{
	vuln.SeverityCritical,
	vuln.SeverityHigh,
	vuln.SeverityMedium,
	vuln.SeverityLow,
}

// Evidence is a snippet supporting a claim, with the page it came from.
type Evidence struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Compatibility is the compatibility verdict mined from search results.
// SupportedRuntimes is only populated by [ExtractRuntimeCompatibility].
type Compatibility struct {
	IsCompatible      bool       `json:"is_compatible"`
	Evidence          []Evidence `json:"evidence"`
	Recommendations   []Evidence `json:"recommendations"`
	SupportedRuntimes []string   `json:"supported_runtimes,omitempty"`
}

func newCompatibility() Compatibility {
	return Compatibility{Evidence: []Evidence{}, Recommendations: []Evidence{}}
}

func lowerText(r search.Result) string {
	return strings.ToLower(r.Text())
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// targetTerms returns the lower-cased spellings of target a snippet may use:
// the raw form and its normalized identifier.
func targetTerms(target string, f framework.Family) []string {
	raw := strings.ToLower(strings.TrimSpace(target))
	norm := string(f.Normalize(target))
	if raw == "" {
		return nil
	}
	if norm == raw {
		return []string{raw}
	}
	return []string{raw, norm}
}

// ExtractVersions returns the version tokens found in results whose title
// and snippet mention both packageName and target (case-insensitive).
//
// Tokens are three-part versions ("2.10.0") and two-part versions that are
// not the prefix of a longer dotted run ("6.0" but not "6.0" out of
// "6.0.1"). The result is deduplicated and sorted in descending string
// order, which is not version order.
func ExtractVersions(results []search.Result, packageName, target string) []string {
	pkg := strings.ToLower(strings.TrimSpace(packageName))
	terms := targetTerms(target, framework.DotNetFamily)

	seen := make(map[string]struct{})
	for _, r := range results {
		text := lowerText(r)
		if pkg == "" || !strings.Contains(text, pkg) || !containsAny(text, terms) {
			continue
		}
		for _, m := range threePartRe.FindAllString(text, -1) {
			seen[m] = struct{}{}
		}
		for _, run := range dottedRunRe.FindAllString(text, -1) {
			if strings.Count(run, ".") == 1 {
				seen[run] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// ExtractCompatibility collects snippets that mention packageName and target
// together with a compatibility keyword ("compatible", "supported", "works
// with", "runs on"). Any such snippet makes the verdict compatible.
// Snippets mentioning both names and "recommend" or "suggest" are recorded
// as recommendations whether or not they claim compatibility.
func ExtractCompatibility(results []search.Result, packageName, target string) Compatibility {
	pkg := strings.ToLower(strings.TrimSpace(packageName))
	terms := targetTerms(target, framework.DotNetFamily)

	out := newCompatibility()
	for _, r := range results {
		text := lowerText(r)
		if pkg == "" || !strings.Contains(text, pkg) || !containsAny(text, terms) {
			continue
		}
		if containsAny(text, compatibilityIndicators) {
			out.IsCompatible = true
			out.Evidence = append(out.Evidence, Evidence{Source: r.Link, Text: r.Snippet})
		}
		if containsAny(text, recommendationIndicators) {
			out.Recommendations = append(out.Recommendations, Evidence{Source: r.Link, Text: r.Snippet})
		}
	}
	return out
}

// ExtractRuntimeCompatibility is the runtime-lineage variant of
// [ExtractCompatibility] keyed on an artifact name such as
// "org.springframework:spring-core".
//
// Every relevant snippet (one mentioning key) is scanned for each runtime
// identifier of runtimes appearing literally in the text; those form
// SupportedRuntimes. Compatibility evidence additionally requires the
// target runtime and a compatibility keyword. If no snippet establishes
// compatibility directly, the verdict falls back to the runtime chain: any
// supported runtime reachable from target counts.
func ExtractRuntimeCompatibility(results []search.Result, key, target string, runtimes *framework.Graph) Compatibility {
	key = strings.ToLower(strings.TrimSpace(key))
	targetID := runtimes.Normalize(target)
	terms := targetTerms(target, runtimes.Family())
	known := runtimes.Keys()

	out := newCompatibility()
	supported := framework.NewSet()
	for _, r := range results {
		text := lowerText(r)
		if key == "" || !strings.Contains(text, key) {
			continue
		}
		for _, id := range known {
			if strings.Contains(text, string(id)) {
				supported.Add(id)
			}
		}
		if containsAny(text, terms) && containsAny(text, compatibilityIndicators) {
			out.IsCompatible = true
			out.Evidence = append(out.Evidence, Evidence{Source: r.Link, Text: r.Snippet})
		}
		if containsAny(text, recommendationIndicators) {
			out.Recommendations = append(out.Recommendations, Evidence{Source: r.Link, Text: r.Snippet})
		}
	}

	if !out.IsCompatible && runtimes.IsCompatibleChain(targetID, supported.Sorted()) {
		out.IsCompatible = true
	}
	out.SupportedRuntimes = supported.Strings()
	return out
}

// ExtractSeverity returns the first of critical, high, medium, low that
// appears in text (case-insensitive), or unknown.
func ExtractSeverity(text string) vuln.Severity {
	text = strings.ToLower(text)
	for _, s := range severityKeywords {
		if strings.Contains(text, string(s)) {
			return s
		}
	}
	return vuln.SeverityUnknown
}

// ExtractVulnerabilities returns one record per CVE id match in the title
// and snippet of each result. Severity comes from [ExtractSeverity] over the
// same text.
func ExtractVulnerabilities(results []search.Result) []vuln.Record {
	out := []vuln.Record{}
	for _, r := range results {
		text := r.Text()
		ids := cveRe.FindAllString(text, -1)
		if len(ids) == 0 {
			continue
		}
		severity := ExtractSeverity(text)
		for _, id := range ids {
			out = append(out, vuln.Record{
				ID:          id,
				Severity:    severity,
				Description: r.Snippet,
				Source:      r.Link,
			})
		}
	}
	return out
}

// ExtractLatestVersion returns the highest three-part version mentioned in
// results, compared numerically, or [version.Unknown].
func ExtractLatestVersion(results []search.Result) string {
	var candidates []string
	seen := make(map[string]struct{})
	for _, r := range results {
		for _, m := range threePartRe.FindAllString(r.Text(), -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			candidates = append(candidates, m)
		}
	}
	if latest, ok := version.MaxByTuple(candidates); ok {
		return latest
	}
	return version.Unknown
}
