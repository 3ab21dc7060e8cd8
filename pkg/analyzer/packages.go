package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/roost/pkg/logger"
	"github.com/simonhull/firebird-suite/roost/pkg/msbuild"
	"github.com/simonhull/firebird-suite/roost/pkg/versions"
)

// PackageObservation is one PackageReference found in a project.
type PackageObservation struct {
	Package string
	Version string
	Project string
}

// VersionConflict records one observation of a conflicted package.
type VersionConflict struct {
	ProjectFile  string
	Version      string
	IsPrerelease bool
	IsRange      bool
}

// PackageAnalysisResult is the outcome of AnalyzePackages.
type PackageAnalysisResult struct {
	// ResolvedVersions maps every resolved package to its winning version.
	ResolvedVersions map[string]string
	// Conflicts maps packages seen with several versions to every
	// observation of them.
	Conflicts map[string][]VersionConflict
	// Warnings are ordered as produced.
	Warnings []Warning
	// ManualResolutions maps packages awaiting a decision to their
	// distinct versions. Only the Manual strategy fills it.
	ManualResolutions map[string][]string
}

func newPackageAnalysisResult() *PackageAnalysisResult {
	return &PackageAnalysisResult{
		ResolvedVersions:  make(map[string]string),
		Conflicts:         make(map[string][]VersionConflict),
		ManualResolutions: make(map[string][]string),
	}
}

// HasConflicts reports whether any package had more than one version.
func (r *PackageAnalysisResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Pending returns the packages awaiting manual resolution, sorted.
func (r *PackageAnalysisResult) Pending() []string {
	names := make([]string, 0, len(r.ManualResolutions))
	for name := range r.ManualResolutions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve records a manual decision for a pending package. The version must
// be one of the observed candidates.
func (r *PackageAnalysisResult) Resolve(pkg, version string) error {
	candidates, ok := r.ManualResolutions[pkg]
	if !ok {
		return fmt.Errorf("package %s is not awaiting manual resolution", pkg)
	}
	if !slices.Contains(candidates, version) {
		return fmt.Errorf("version %s was not observed for %s (candidates: %s)",
			version, pkg, strings.Join(candidates, ", "))
	}

	delete(r.ManualResolutions, pkg)
	r.accept(pkg, version, "Manually resolved to: "+version)
	return nil
}

// accept stores a winner, with an optional Warning-level note, followed by
// the pre-release advisory.
func (r *PackageAnalysisResult) accept(pkg, version, note string) {
	r.ResolvedVersions[pkg] = version
	if note != "" {
		r.Warnings = append(r.Warnings, Warning{Package: pkg, Message: note, Level: LevelWarning})
	}
	if versions.Parse(version).IsPrerelease() {
		r.Warnings = append(r.Warnings, Warning{
			Package: pkg,
			Message: "Using pre-release version: " + version,
			Level:   LevelInfo,
		})
	}
}

// ExtractPackages returns the package references declared in doc, in
// document order. References without a name or version are skipped.
func ExtractPackages(doc Document) ([]PackageObservation, error) {
	tree, err := msbuild.Parse(doc.Content)
	if err != nil {
		return nil, err
	}

	var observations []PackageObservation
	for _, ref := range msbuild.PackageReferences(tree.Root()) {
		name := msbuild.ReferenceInclude(ref)
		version, ok := msbuild.ReferenceVersion(ref)
		version = strings.TrimSpace(version)
		if name == "" || !ok || version == "" {
			continue
		}
		observations = append(observations, PackageObservation{
			Package: name,
			Version: version,
			Project: doc.Path,
		})
	}
	return observations, nil
}

// AnalyzePackages resolves one version per package across docs.
func (a *Analyzer) AnalyzePackages(docs []Document) *PackageAnalysisResult {
	result := newPackageAnalysisResult()

	var order []string
	byPackage := make(map[string][]PackageObservation)
	for _, doc := range docs {
		observations, err := ExtractPackages(doc)
		if err != nil {
			a.logger.Warn("Skipping malformed project file",
				logger.F("path", doc.Path),
				logger.F("error", err))
			result.Warnings = append(result.Warnings, malformedWarning(doc, err))
			continue
		}
		a.logger.Debug("Extracted package references",
			logger.F("path", doc.Path),
			logger.F("count", len(observations)))

		for _, o := range observations {
			if _, seen := byPackage[o.Package]; !seen {
				order = append(order, o.Package)
			}
			byPackage[o.Package] = append(byPackage[o.Package], o)
		}
	}

	for _, pkg := range order {
		a.resolvePackage(result, pkg, byPackage[pkg])
	}

	a.logger.Info("Package analysis complete",
		logger.F("packages", len(order)),
		logger.F("conflicts", len(result.Conflicts)),
		logger.F("strategy", a.strategy))
	return result
}

func (a *Analyzer) resolvePackage(result *PackageAnalysisResult, pkg string, observations []PackageObservation) {
	observed := make([]string, len(observations))
	for i, o := range observations {
		observed[i] = o.Version
	}

	distinct, _ := tally(observed)
	if len(distinct) == 1 {
		result.accept(pkg, distinct[0], "")
		return
	}

	conflicts := make([]VersionConflict, len(observations))
	for i, o := range observations {
		parsed := versions.Parse(o.Version)
		conflicts[i] = VersionConflict{
			ProjectFile:  o.Project,
			Version:      o.Version,
			IsPrerelease: parsed.IsPrerelease(),
			IsRange:      parsed.IsRange(),
		}
	}
	result.Conflicts[pkg] = conflicts

	res := ResolveVersions(pkg, observed, a.strategy)
	switch res.Kind {
	case Resolved:
		a.logger.Debug("Resolved version conflict",
			logger.F("package", pkg),
			logger.F("candidates", distinct),
			logger.F("version", res.Version))
		result.accept(pkg, res.Version, "Multiple versions found. Resolved to: "+res.Version)

	case NeedsManualResolution:
		result.ManualResolutions[pkg] = res.Candidates
		result.Warnings = append(result.Warnings, Warning{
			Package: pkg,
			Message: "Manual resolution required. Candidates: " + strings.Join(res.Candidates, ", "),
			Level:   LevelWarning,
		})

	default:
		fallback := FallbackVersion(distinct)
		a.logger.Error("Version resolution failed, using fallback",
			logger.F("package", pkg),
			logger.F("reason", res.Reason),
			logger.F("version", fallback))
		result.Warnings = append(result.Warnings, Warning{
			Package: pkg,
			Message: fmt.Sprintf("%s. Falling back to: %s", res.Err(), fallback),
			Level:   LevelError,
		})
		result.accept(pkg, fallback, "")
	}
}
