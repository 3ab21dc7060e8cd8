package analyzer

import (
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/roost/pkg/logger"
	"github.com/simonhull/firebird-suite/roost/pkg/msbuild"
)

// Threshold is the number of documents that must agree on a property value
// before it is hoisted. One document hoists everything; two must both agree;
// larger sets need a majority rounded up.
func Threshold(n int) int {
	switch {
	case n <= 1:
		return n
	case n == 2:
		return 2
	default:
		return (n + 1) / 2
	}
}

// PropertyResult is the outcome of CommonProperties.
type PropertyResult struct {
	// Properties maps each hoisted property to its winning value.
	Properties map[string]string
	// Counts holds how often each winning value was observed.
	Counts map[string]int
	// Warnings lists documents that could not be parsed.
	Warnings []Warning
	// DocumentCount is the number of documents analyzed, malformed ones
	// included.
	DocumentCount int
	// Threshold is Threshold(DocumentCount).
	Threshold int
}

type valueCounts struct {
	order  []string
	counts map[string]int
}

// CommonProperties finds the property values shared by enough documents.
// Every child of every PropertyGroup counts, at any depth, so a document
// repeating a value in two groups contributes twice.
func (a *Analyzer) CommonProperties(docs []Document) *PropertyResult {
	result := &PropertyResult{
		Properties:    make(map[string]string),
		Counts:        make(map[string]int),
		DocumentCount: len(docs),
		Threshold:     Threshold(len(docs)),
	}

	var names []string
	tables := make(map[string]*valueCounts)

	for _, doc := range docs {
		tree, err := msbuild.Parse(doc.Content)
		if err != nil {
			a.logger.Warn("Skipping malformed project file",
				logger.F("path", doc.Path),
				logger.F("error", err))
			result.Warnings = append(result.Warnings, malformedWarning(doc, err))
			continue
		}

		for _, group := range msbuild.PropertyGroups(tree.Root()) {
			for _, prop := range group.ChildElements() {
				value := msbuild.Value(prop)
				if value == "" || a.exclude[prop.Tag] {
					continue
				}

				table, ok := tables[prop.Tag]
				if !ok {
					table = &valueCounts{counts: make(map[string]int)}
					tables[prop.Tag] = table
					names = append(names, prop.Tag)
				}
				if table.counts[value] == 0 {
					table.order = append(table.order, value)
				}
				table.counts[value]++
			}
		}
	}

	for _, name := range names {
		value, count := tables[name].winner()
		if count < result.Threshold {
			a.logger.Debug("Property below threshold",
				logger.F("property", name),
				logger.F("count", count),
				logger.F("threshold", result.Threshold))
			continue
		}
		result.Properties[name] = value
		result.Counts[name] = count
	}

	a.logger.Info("Property analysis complete",
		logger.F("documents", len(docs)),
		logger.F("common", len(result.Properties)),
		logger.F("threshold", result.Threshold))
	return result
}

// winner returns the most frequent value; ties go to the first seen.
func (t *valueCounts) winner() (string, int) {
	var best string
	bestCount := 0
	for _, v := range t.order {
		if t.counts[v] > bestCount {
			best, bestCount = v, t.counts[v]
		}
	}
	return best, bestCount
}

// Names returns the hoisted property names, sorted.
func (r *PropertyResult) Names() []string {
	names := make([]string, 0, len(r.Properties))
	for name := range r.Properties {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name was hoisted with the given value.
func (r *PropertyResult) Has(name, value string) bool {
	v, ok := r.Properties[name]
	return ok && strings.TrimSpace(value) == v
}
