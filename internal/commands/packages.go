package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/compat"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
	"github.com/simonhull/firebird-suite/roost/pkg/props"
)

// packageFlags select how package versions are resolved
type packageFlags struct {
	strategy      analyzer.Strategy
	checkRegistry bool
}

func addPackageFlags(cmd *cobra.Command, f *packageFlags) {
	cmd.Flags().Var(&f.strategy, "strategy", "Conflict strategy: highest, lowest, most-common or manual")
	cmd.Flags().BoolVar(&f.checkRegistry, "check-registry", false, "Check resolved versions against the NuGet registry")
}

// apply overrides config values with flags the user set
func (f *packageFlags) apply(cmd *cobra.Command, s *session) {
	if cmd.Flags().Changed("strategy") {
		s.cfg.Strategy = f.strategy.String()
	}
	if f.checkRegistry {
		s.cfg.Registry.Enabled = true
	}
}

// PackagesCmd creates the 'packages' command, which writes
// Directory.Packages.props
func PackagesCmd() *cobra.Command {
	var (
		flags    writeFlags
		pkgFlags packageFlags
	)

	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Generate Directory.Packages.props with resolved package versions",
		Long: `Collects every PackageReference, resolves packages referenced with
different versions, and writes Directory.Packages.props with central package
management enabled. Version attributes are then removed from the projects.

Strategies:
  highest      newest version wins (default)
  lowest       oldest version wins
  most-common  the version most projects use wins
  manual       you pick each conflicting version

Example:
  roost packages --strategy most-common --check-registry`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()
			pkgFlags.apply(cmd, s)

			docs, err := s.scan(cmd.Context())
			if err != nil || len(docs) == 0 {
				return err
			}

			p, err := newPlan(s, &flags)
			if err != nil {
				return err
			}
			if err := planPackages(cmd.Context(), s, p, docs, &flags); err != nil {
				return ignoreCancel(err)
			}
			if err := p.apply(cmd.Context(), s, &flags); err != nil {
				return err
			}
			if !flags.dryRun {
				output.Success("Directory.Packages.props is up to date")
			}
			return nil
		},
	}

	addWriteFlags(cmd, &flags)
	addPackageFlags(cmd, &pkgFlags)

	return cmd
}

// analyzePackages runs package analysis and reports it. With settle set,
// manual resolutions are asked for (or fail the run without a terminal).
func analyzePackages(ctx context.Context, s *session, docs []analyzer.Document, settle bool) (*analyzer.PackageAnalysisResult, error) {
	res := s.analyzer(s.cfg.StrategyValue()).AnalyzePackages(docs)
	s.report.Packages(res)

	if settle {
		if err := resolveManually(s, res, s.interact); err != nil {
			return nil, err
		}
	}
	s.metrics.ObservePackages(res)

	if s.cfg.Registry.Enabled && len(res.ResolvedVersions) > 0 {
		checker := compat.NewChecker(s.cfg.Registry.URL, s.cfg.Registry.Timeout)
		s.report.Compatibility(checker.CheckAll(ctx, res.ResolvedVersions))
	}
	return res, nil
}

// resolveManually asks for every pending package. Without a terminal the
// first pending package fails the run.
func resolveManually(s *session, res *analyzer.PackageAnalysisResult, interactive bool) error {
	for _, pkg := range res.Pending() {
		candidates := res.ManualResolutions[pkg]
		if !interactive {
			return &analyzer.ManualResolutionError{Package: pkg, Versions: candidates}
		}
		i, err := s.prompt.Select(fmt.Sprintf("Choose a version for %s", pkg), candidates)
		if err != nil {
			return err
		}
		if err := res.Resolve(pkg, candidates[i]); err != nil {
			return err
		}
		output.Verbose(fmt.Sprintf("%s resolved to %s", pkg, candidates[i]))
	}
	return nil
}

// planPackages stages Directory.Packages.props plus the project files with
// their Version attributes removed.
func planPackages(ctx context.Context, s *session, p *plan, docs []analyzer.Document, f *writeFlags) error {
	res, err := analyzePackages(ctx, s, docs, true)
	if err != nil {
		return err
	}
	if len(res.ResolvedVersions) == 0 {
		output.Info("No package references found")
		return nil
	}

	if res.HasConflicts() && !s.confirm(f.yes, "Version conflicts were found. Continue with the resolved versions?", false) {
		return errCancelled
	}

	content, err := props.PackagesProps(res.ResolvedVersions)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", props.PackagesPropsFile, err)
	}

	written, err := p.target(s, filepath.Join(s.root, props.PackagesPropsFile), content)
	if err != nil || !written {
		return err
	}

	if f.noStrip || !s.cfg.Packages.StripProjects {
		return nil
	}
	if !s.confirm(f.yes, "Remove package versions from project files?", true) {
		output.Info("Project files left unchanged")
		return nil
	}
	n := p.mutate(s, docs, func(content string) (string, bool, error) {
		return props.StripPackageVersions(content, res.ResolvedVersions)
	})
	output.Verbose(fmt.Sprintf("%d project file(s) carry package versions", n))
	return nil
}
