package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
	"github.com/simonhull/firebird-suite/roost/pkg/props"
)

// BuildCmd creates the 'build' command, which writes Directory.Build.props
func BuildCmd() *cobra.Command {
	var (
		flags        writeFlags
		requiredOnly bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate Directory.Build.props from common project properties",
		Long: `Finds the properties most project files agree on and writes them to
Directory.Build.props. A property is hoisted when its most common value
appears in at least half of the projects (both projects when there are two).

ImplicitUsings and Nullable default to "enable" when absent.
Hoisted properties are then removed from the project files.

Example:
  roost build -d ./src --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()

			if cmd.Flags().Changed("required-only") {
				s.cfg.Build.RequiredOnly = requiredOnly
			}

			docs, err := s.scan(cmd.Context())
			if err != nil || len(docs) == 0 {
				return err
			}

			p, err := newPlan(s, &flags)
			if err != nil {
				return err
			}
			if err := planBuild(cmd.Context(), s, p, docs, &flags); err != nil {
				return ignoreCancel(err)
			}
			if err := p.apply(cmd.Context(), s, &flags); err != nil {
				return err
			}
			if !flags.dryRun {
				output.Success("Directory.Build.props is up to date")
			}
			return nil
		},
	}

	addWriteFlags(cmd, &flags)
	cmd.Flags().BoolVar(&requiredOnly, "required-only", false, "Only write TargetFramework, ImplicitUsings and Nullable")

	return cmd
}

// planBuild analyzes common properties and stages Directory.Build.props
// plus the stripped project files.
func planBuild(_ context.Context, s *session, p *plan, docs []analyzer.Document, f *writeFlags) error {
	res := s.analyzer(s.cfg.StrategyValue()).CommonProperties(docs)
	s.metrics.ObserveProperties(res)
	s.report.Properties(res)

	opts := props.BuildOptions{RequiredOnly: s.cfg.Build.RequiredOnly}
	content, err := props.BuildProps(res.Properties, opts)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", props.BuildPropsFile, err)
	}

	written, err := p.target(s, filepath.Join(s.root, props.BuildPropsFile), content)
	if err != nil || !written {
		return err
	}

	if f.noStrip || !s.cfg.Build.StripProjects {
		return nil
	}
	hoisted := props.Hoisted(res.Properties, opts)
	if len(hoisted) == 0 {
		return nil
	}
	n := p.mutate(s, docs, func(content string) (string, bool, error) {
		return props.StripProperties(content, hoisted)
	})
	output.Verbose(fmt.Sprintf("%d project file(s) carry hoisted properties", n))
	return nil
}

// ignoreCancel turns a user cancellation into a clean exit.
func ignoreCancel(err error) error {
	if errors.Is(err, errCancelled) {
		output.Info("Cancelled, nothing was written")
		return nil
	}
	return err
}
