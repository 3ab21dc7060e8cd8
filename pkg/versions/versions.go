package versions

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind classifies a parsed version string.
type Kind int

const (
	// Opaque is any string that is neither a version nor a range.
	Opaque Kind = iota
	// Stable is a release version without a pre-release label.
	Stable
	// Prerelease is a version carrying a pre-release label.
	Prerelease
	// Range is an interval with a parseable lower bound.
	Range
	// UnboundedRange is an interval with no usable lower bound.
	UnboundedRange
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Stable:
		return "stable"
	case Prerelease:
		return "prerelease"
	case Range:
		return "range"
	case UnboundedRange:
		return "unbounded-range"
	default:
		return "opaque"
	}
}

// NuGet allows a fourth numeric component; semver does not.
var fourPart = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+)(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// Parsed is a classified version string. The zero value is an Opaque empty
// string.
type Parsed struct {
	Original string
	Kind     Kind

	// effective is the version itself or the lower bound of a range.
	effective *semver.Version
	revision  uint64
}

// Parse classifies raw. It never fails.
func Parse(raw string) Parsed {
	s := strings.TrimSpace(raw)
	v := Parsed{Original: raw}

	if sv, rev, ok := parseVersion(s); ok {
		v.effective, v.revision = sv, rev
		v.Kind = Stable
		if sv.Prerelease() != "" {
			v.Kind = Prerelease
		}
		return v
	}

	if lower, isRange := parseRange(s); isRange {
		if lower == "" {
			v.Kind = UnboundedRange
			return v
		}
		if sv, rev, ok := parseVersion(lower); ok {
			v.Kind = Range
			v.effective, v.revision = sv, rev
			return v
		}
		v.Kind = UnboundedRange
	}

	return v
}

func parseVersion(s string) (*semver.Version, uint64, bool) {
	if s == "" || strings.ContainsAny(s, "*$ ") {
		return nil, 0, false
	}
	s, ok := normalize(s)
	if !ok {
		return nil, 0, false
	}

	if m := fourPart.FindStringSubmatch(s); m != nil {
		rev, err := strconv.ParseUint(m[4], 10, 64)
		if err != nil {
			return nil, 0, false
		}
		sv, err := semver.NewVersion(fmt.Sprintf("%s.%s.%s%s%s", m[1], m[2], m[3], m[5], m[6]))
		if err != nil {
			return nil, 0, false
		}
		return sv, rev, true
	}

	sv, err := semver.NewVersion(s)
	if err != nil {
		return nil, 0, false
	}
	return sv, 0, true
}

// normalize strips leading zeros from the numeric components, which NuGet
// ignores ("01.0.0" is 1.0.0). A "v" prefix is not a NuGet version.
func normalize(s string) (string, bool) {
	if s[0] < '0' || s[0] > '9' {
		return "", false
	}

	end := strings.IndexAny(s, "-+")
	if end < 0 {
		end = len(s)
	}
	parts := strings.Split(s[:end], ".")
	for i, part := range parts {
		if part == "" || strings.Trim(part, "0123456789") != "" {
			return "", false
		}
		if trimmed := strings.TrimLeft(part, "0"); trimmed != "" {
			parts[i] = trimmed
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, ".") + s[end:], true
}

// parseRange recognizes NuGet interval notation and returns the raw lower
// bound. An exact match "[1.0]" has the single value as its lower bound.
func parseRange(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	open, close := s[0], s[len(s)-1]
	if (open != '[' && open != '(') || (close != ']' && close != ')') {
		return "", false
	}

	inner := s[1 : len(s)-1]
	parts := strings.Split(inner, ",")
	switch len(parts) {
	case 1:
		if open != '[' || close != ']' || strings.TrimSpace(inner) == "" {
			return "", false
		}
		return strings.TrimSpace(inner), true
	case 2:
		return strings.TrimSpace(parts[0]), true
	default:
		return "", false
	}
}

// HasRank reports whether the value takes part in numeric ordering.
func (v Parsed) HasRank() bool {
	return v.effective != nil
}

// IsPrerelease reports whether the value is a pre-release version.
func (v Parsed) IsPrerelease() bool {
	return v.Kind == Prerelease
}

// IsRange reports whether the value uses interval notation.
func (v Parsed) IsRange() bool {
	return v.Kind == Range || v.Kind == UnboundedRange
}

// Major returns the major component of the effective version.
func (v Parsed) Major() (uint64, bool) {
	if v.effective == nil {
		return 0, false
	}
	return v.effective.Major(), true
}

// Effective returns the normalized version used for ordering, or "" when the
// value is unranked.
func (v Parsed) Effective() string {
	if v.effective == nil {
		return ""
	}
	base := fmt.Sprintf("%d.%d.%d", v.effective.Major(), v.effective.Minor(), v.effective.Patch())
	if v.revision > 0 {
		base += fmt.Sprintf(".%d", v.revision)
	}
	if pre := v.effective.Prerelease(); pre != "" {
		base += "-" + pre
	}
	return base
}

func (v Parsed) String() string {
	return v.Original
}

// Compare orders a and b, returning -1, 0 or 1.
//
// Ranked values compare by effective version with build metadata ignored.
// Any ranked value is greater than any unranked one. Two unranked values
// compare ordinally by their original text.
func Compare(a, b Parsed) int {
	switch {
	case a.HasRank() && b.HasRank():
		return compareRanked(a, b)
	case a.HasRank():
		return 1
	case b.HasRank():
		return -1
	default:
		return strings.Compare(a.Original, b.Original)
	}
}

func compareRanked(a, b Parsed) int {
	x, y := a.effective, b.effective
	if c := cmp.Compare(x.Major(), y.Major()); c != 0 {
		return c
	}
	if c := cmp.Compare(x.Minor(), y.Minor()); c != 0 {
		return c
	}
	if c := cmp.Compare(x.Patch(), y.Patch()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.revision, b.revision); c != 0 {
		return c
	}
	return comparePrerelease(x.Prerelease(), y.Prerelease())
}

func comparePrerelease(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return semver.New(0, 0, 0, a, "").Compare(semver.New(0, 0, 0, b, ""))
}
