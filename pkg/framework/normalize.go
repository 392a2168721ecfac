package framework

import (
	"slices"
	"strings"
)

// ID is a normalized framework or runtime identifier such as "net48",
// "netstandard20" or "java17". Two IDs are equal iff their strings are equal.
type ID string

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// Family describes an identifier family and the prefix every normalized
// identifier of that family starts with.
type Family struct {
	Name   string // Display name (e.g. "dotnet")
	Prefix string // Required prefix of normalized identifiers (e.g. "net")

	// Aliases are alternative leading spellings folded into Prefix
	// (".NETFramework4.5" becomes "net45").
	Aliases []string
}

var (
	// DotNetFamily covers .NET Framework, .NET Standard and modern .NET targets.
	DotNetFamily = Family{Name: "dotnet", Prefix: "net", Aliases: []string{"netframework"}}

	// JavaFamily covers Java runtime major versions.
	JavaFamily = Family{Name: "java", Prefix: "java", Aliases: []string{"jdk", "jre"}}
)

var separatorStripper = strings.NewReplacer(".", "", "-", "", " ", "", "\t", "")

// Normalize canonicalizes raw into an identifier of family f.
// It lower-cases, removes "." and "-" along with any whitespace, and
// prepends the family prefix when missing, so "Java 11" becomes "java11".
//
// Beyond that, leading aliases are rewritten to the prefix: NuGet reports
// groups as ".NETFramework4.5", which folds to "net45" instead of
// "netframework45", and "jdk17" folds to "java17". Normalize is total and
// idempotent.
func (f Family) Normalize(raw string) ID {
	s := separatorStripper.Replace(strings.ToLower(strings.TrimSpace(raw)))
	for {
		folded := false
		for _, a := range f.Aliases {
			if strings.HasPrefix(s, a) {
				s = f.Prefix + s[len(a):]
				folded = true
			}
		}
		if !strings.HasPrefix(s, f.Prefix) {
			s = f.Prefix + s
			continue
		}
		if !folded {
			return ID(s)
		}
	}
}

// Normalize canonicalizes a .NET-style target framework.
// See [Family.Normalize].
func Normalize(raw string) ID {
	return DotNetFamily.Normalize(raw)
}

// Set is a deduplicated collection of identifiers.
type Set map[ID]struct{}

// NewSet builds a Set from already-normalized identifiers.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s Set) Add(id ID) { s[id] = struct{}{} }

// Has reports whether id is a member of the set.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending lexical order.
func (s Set) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Strings returns the sorted members as plain strings.
func (s Set) Strings() []string {
	ids := s.Sorted()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
