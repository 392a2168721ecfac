// Package version parses, orders and selects package version strings.
//
// Parsing accepts the dotted-numeric forms registries publish: one to three
// numeric components ("2", "2.3", "2.3.1"), an optional fourth revision
// component ("4.0.0.1", common on NuGet), an optional "v" prefix, and semver
// pre-release and build suffixes. Anything else is invalid and is skipped by
// callers rather than failing a whole request.
//
// Ordering is numeric, never lexicographic: "10.0.0" sorts above "9.0.1".
package version

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Unknown is returned by [SelectLatest] when no candidate can be ordered.
const Unknown = "unknown"

// ErrInvalid is returned (wrapped) by [Parse] for strings that are not versions.
var ErrInvalid = errors.New("invalid version")

// Version is a parsed version string.
type Version struct {
	raw      string
	sv       *semver.Version
	revision uint64
}

var revisionRe = regexp.MustCompile(`^(v?\d+\.\d+\.\d+)\.(\d+)((?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?)$`)

// Parse parses s as a version. Surrounding whitespace is ignored.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Version{}, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	core, revision := raw, uint64(0)
	if m := revisionRe.FindStringSubmatch(raw); m != nil {
		rev, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		core, revision = m[1]+m[3], rev
	}

	sv, err := semver.NewVersion(core)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return Version{raw: raw, sv: sv, revision: revision}, nil
}

// MustParse is like [Parse] but panics on invalid input. Use only in tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as it was written (trimmed).
func (v Version) String() string { return v.raw }

// Major returns the first numeric component.
func (v Version) Major() uint64 { return v.sv.Major() }

// Prerelease returns the pre-release label, if any.
func (v Version) Prerelease() string { return v.sv.Prerelease() }

// Compare returns -1, 0 or +1 depending on whether v is older than, equal to
// or newer than o. Build metadata is ignored.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.sv.Major(), o.sv.Major()); c != 0 {
		return c
	}
	if c := cmp.Compare(v.sv.Minor(), o.sv.Minor()); c != 0 {
		return c
	}
	if c := cmp.Compare(v.sv.Patch(), o.sv.Patch()); c != 0 {
		return c
	}
	if c := cmp.Compare(v.revision, o.revision); c != 0 {
		return c
	}
	return v.sv.Compare(o.sv)
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Valid reports whether s parses as a version.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Filter splits candidates into parsed versions and the strings that failed to parse.
// Input order is preserved in both results.
func Filter(candidates []string) (valid []Version, invalid []string) {
	for _, s := range candidates {
		v, err := Parse(s)
		if err != nil {
			invalid = append(invalid, s)
			continue
		}
		valid = append(valid, v)
	}
	return valid, invalid
}

// Sort orders candidates by parsed value. Invalid entries are excluded from
// the result; use [Filter] to recover them.
func Sort(candidates []string, descending bool) []string {
	valid, _ := Filter(candidates)
	SortVersions(valid, descending)
	out := make([]string, len(valid))
	for i, v := range valid {
		out[i] = v.String()
	}
	return out
}

// SortVersions sorts parsed versions in place. The sort is stable so equal
// versions written differently ("1.0" and "1.0.0") keep their input order.
func SortVersions(vs []Version, descending bool) {
	slices.SortStableFunc(vs, func(a, b Version) int {
		if descending {
			return b.Compare(a)
		}
		return a.Compare(b)
	})
}

// SelectLatest returns the newest candidate.
//
// Valid versions always win. When none parse, candidates made entirely of
// dot-separated integers are compared as (major, minor, patch) tuples
// (see [MaxByTuple]). Otherwise [Unknown] is returned.
func SelectLatest(candidates []string) string {
	valid, _ := Filter(candidates)
	if len(valid) > 0 {
		latest := valid[0]
		for _, v := range valid[1:] {
			if latest.Less(v) {
				latest = v
			}
		}
		return latest.String()
	}
	if s, ok := MaxByTuple(candidates); ok {
		return s
	}
	return Unknown
}

// MaxByTuple returns the candidate with the greatest (major, minor, patch)
// tuple, where the tuple is built from the first three dot-separated integer
// components (missing components count as zero). Candidates containing a
// non-integer component are ignored. The first candidate wins ties.
func MaxByTuple(candidates []string) (string, bool) {
	var (
		best    string
		bestTup [3]int
		found   bool
	)
	for _, s := range candidates {
		tup, ok := tuple(s)
		if !ok {
			continue
		}
		if !found || slices.Compare(tup[:], bestTup[:]) > 0 {
			best, bestTup, found = s, tup, true
		}
	}
	return best, found
}

func tuple(s string) ([3]int, bool) {
	var tup [3]int
	parts := strings.Split(strings.TrimSpace(s), ".")
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return tup, false
		}
		if i < len(tup) {
			tup[i] = n
		}
	}
	return tup, true
}
