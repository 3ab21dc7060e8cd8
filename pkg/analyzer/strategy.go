package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/roost/pkg/versions"
)

// Strategy selects the winning version among conflicting ones.
type Strategy int

const (
	// Highest picks the greatest version. It is the zero value.
	Highest Strategy = iota
	// Lowest picks the smallest ranked version.
	Lowest
	// MostCommon picks the version referenced by the most projects.
	MostCommon
	// Manual defers every conflict to a human decision.
	Manual
)

var strategyNames = map[Strategy]string{
	Highest:    "highest",
	Lowest:     "lowest",
	MostCommon: "most-common",
	Manual:     "manual",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy accepts a strategy name, case-insensitively. "mostcommon"
// and "most_common" are accepted for "most-common".
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("_", "", "-", "").Replace(normalized)
	switch normalized {
	case "", "highest":
		return Highest, nil
	case "lowest":
		return Lowest, nil
	case "mostcommon":
		return MostCommon, nil
	case "manual":
		return Manual, nil
	default:
		return Highest, fmt.Errorf("unknown strategy %q (want highest, lowest, most-common or manual)", name)
	}
}

// Set implements pflag.Value.
func (s *Strategy) Set(name string) error {
	parsed, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Strategy) Type() string {
	return "strategy"
}

// ResolutionKind tags the outcome of ResolveVersions.
type ResolutionKind int

const (
	Resolved ResolutionKind = iota
	NeedsManualResolution
	Failed
)

// Resolution is the outcome of resolving one package. Version is set only
// when Kind is Resolved.
type Resolution struct {
	Kind       ResolutionKind
	Package    string
	Version    string
	Candidates []string
	Reason     string
}

// Err returns nil for a resolved package and a typed error otherwise.
func (r Resolution) Err() error {
	switch r.Kind {
	case Resolved:
		return nil
	case NeedsManualResolution:
		return &ManualResolutionError{Package: r.Package, Versions: r.Candidates}
	default:
		return &ResolutionError{Package: r.Package, Reason: r.Reason}
	}
}

// ManualResolutionError reports a conflict that needs a human decision.
type ManualResolutionError struct {
	Package  string
	Versions []string
}

func (e *ManualResolutionError) Error() string {
	return fmt.Sprintf("manual resolution required for %s: %s", e.Package, strings.Join(e.Versions, ", "))
}

// ResolutionError reports a conflict no strategy could resolve.
type ResolutionError struct {
	Package string
	Reason  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %s", e.Package, e.Reason)
}

// policy picks a winner from distinct candidates in first-seen order.
// counts holds how often each candidate was observed.
type policy func(candidates []versions.Parsed, counts map[string]int) string

var policies = map[Strategy]policy{
	Highest:    highest,
	Lowest:     lowest,
	MostCommon: mostCommon,
}

// ResolveVersions picks one version for pkg from every observed version
// string, duplicates included.
func ResolveVersions(pkg string, observed []string, s Strategy) (res Resolution) {
	distinct, counts := tally(observed)
	res = Resolution{Package: pkg, Candidates: distinct}

	defer func() {
		if r := recover(); r != nil {
			res = Resolution{
				Kind:       Failed,
				Package:    pkg,
				Candidates: distinct,
				Reason:     fmt.Sprintf("panic during resolution: %v", r),
			}
		}
	}()

	if len(distinct) == 0 {
		res.Kind, res.Reason = Failed, "no versions observed"
		return res
	}
	if s == Manual {
		res.Kind = NeedsManualResolution
		return res
	}

	pick, ok := policies[s]
	if !ok {
		res.Kind, res.Reason = Failed, "unsupported strategy "+s.String()
		return res
	}

	parsed := make([]versions.Parsed, len(distinct))
	for i, v := range distinct {
		parsed[i] = versions.Parse(v)
	}
	res.Kind, res.Version = Resolved, pick(parsed, counts)
	return res
}

// FallbackVersion is the last-resort pick when resolution fails: the
// lexicographically greatest raw string.
func FallbackVersion(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return slices.Max(candidates)
}

func tally(observed []string) ([]string, map[string]int) {
	var distinct []string
	counts := make(map[string]int, len(observed))
	for _, v := range observed {
		if counts[v] == 0 {
			distinct = append(distinct, v)
		}
		counts[v]++
	}
	return distinct, counts
}

func highest(candidates []versions.Parsed, _ map[string]int) string {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if versions.Compare(c, best) > 0 {
			best = c
		}
	}
	return best.Original
}

func lowest(candidates []versions.Parsed, _ map[string]int) string {
	var best *versions.Parsed
	for i := range candidates {
		c := &candidates[i]
		if !c.HasRank() {
			continue
		}
		if best == nil || versions.Compare(*c, *best) < 0 {
			best = c
		}
	}
	if best != nil {
		return best.Original
	}

	minimum := candidates[0].Original
	for _, c := range candidates[1:] {
		if c.Original < minimum {
			minimum = c.Original
		}
	}
	return minimum
}

func mostCommon(candidates []versions.Parsed, counts map[string]int) string {
	best := candidates[0].Original
	for _, c := range candidates[1:] {
		n, bestN := counts[c.Original], counts[best]
		if n > bestN || (n == bestN && c.Original < best) {
			best = c.Original
		}
	}
	return best
}
