// Package report renders analysis results as terminal tables.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/compat"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("white"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("cyan")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	levelStyles = map[analyzer.Level]lipgloss.Style{
		analyzer.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")),
		analyzer.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")),
		analyzer.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("red")),
	}
)

// Reporter writes tables. Paths are shown relative to Root when possible.
type Reporter struct {
	w    io.Writer
	root string
}

// New creates a Reporter writing to w.
func New(w io.Writer, root string) *Reporter {
	return &Reporter{w: w, root: root}
}

func (r *Reporter) rel(path string) string {
	if r.root == "" {
		return path
	}
	if rel, err := filepath.Rel(r.root, path); err == nil {
		return rel
	}
	return path
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func (r *Reporter) section(title string, t *table.Table) {
	fmt.Fprintln(r.w, titleStyle.Render(title))
	fmt.Fprintln(r.w, t.Render())
}

// Properties renders the hoisted properties of a property analysis.
func (r *Reporter) Properties(res *analyzer.PropertyResult) {
	if len(res.Properties) == 0 {
		fmt.Fprintf(r.w, "No common properties found across %d project(s) (threshold %d).\n",
			res.DocumentCount, res.Threshold)
		return
	}

	t := newTable("Property", "Value", "Projects")
	for _, name := range res.Names() {
		t.Row(name, res.Properties[name], fmt.Sprintf("%d/%d", res.Counts[name], res.DocumentCount))
	}
	r.section(fmt.Sprintf("Common properties (threshold %d of %d)", res.Threshold, res.DocumentCount), t)
	r.Warnings(res.Warnings)
}

// Packages renders conflicts, warnings and resolved versions.
func (r *Reporter) Packages(res *analyzer.PackageAnalysisResult) {
	r.Summary(res)
	r.Conflicts(res)
	r.Warnings(res.Warnings)
	r.Resolved(res)
}

// Summary prints one line of counts.
func (r *Reporter) Summary(res *analyzer.PackageAnalysisResult) {
	fmt.Fprintf(r.w, "%s %d package(s), %d conflict(s), %d warning(s)\n",
		titleStyle.Render("Packages:"), len(res.ResolvedVersions)+len(res.ManualResolutions),
		len(res.Conflicts), len(res.Warnings))
}

// Conflicts lists every observation of each conflicted package.
func (r *Reporter) Conflicts(res *analyzer.PackageAnalysisResult) {
	if len(res.Conflicts) == 0 {
		return
	}

	t := newTable("Package", "Project", "Version", "Pre-release", "Range", "Resolved")
	for _, pkg := range sortedKeys(res.Conflicts) {
		resolved, ok := res.ResolvedVersions[pkg]
		if !ok {
			resolved = "(manual)"
		}
		for i, c := range res.Conflicts[pkg] {
			name, winner := pkg, resolved
			if i > 0 {
				name, winner = "", ""
			}
			t.Row(name, r.rel(c.ProjectFile), c.Version, yesNo(c.IsPrerelease), yesNo(c.IsRange), winner)
		}
	}
	r.section("Version conflicts", t)
}

// Warnings lists warnings in the order they were produced.
func (r *Reporter) Warnings(warnings []analyzer.Warning) {
	if len(warnings) == 0 {
		return
	}

	t := newTable("Level", "Package", "Message")
	for _, w := range warnings {
		t.Row(levelStyles[w.Level].Render(w.Level.String()), r.rel(w.Package), w.Message)
	}
	r.section("Warnings", t)
}

// Resolved lists the winning version of every package.
func (r *Reporter) Resolved(res *analyzer.PackageAnalysisResult) {
	if len(res.ResolvedVersions) == 0 {
		return
	}

	t := newTable("Package", "Version")
	for _, pkg := range sortedKeys(res.ResolvedVersions) {
		t.Row(pkg, res.ResolvedVersions[pkg])
	}
	r.section("Resolved versions", t)
}

// Compatibility renders registry check results, ordered by package.
func (r *Reporter) Compatibility(results []compat.Result) {
	if len(results) == 0 {
		return
	}

	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b compat.Result) int {
		return strings.Compare(a.Package, b.Package)
	})

	t := newTable("Package", "Version", "Compatible", "Suggested", "Issues")
	for _, res := range sorted {
		t.Row(res.Package, res.Version, strconv.FormatBool(res.Compatible), res.SuggestedVersion,
			strings.Join(res.Issues, "; "))
	}
	r.section("Registry compatibility", t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
