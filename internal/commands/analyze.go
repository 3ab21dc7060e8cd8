package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost/pkg/output"
	"github.com/simonhull/firebird-suite/roost/pkg/project"
)

// AnalyzeCmd creates the 'analyze' command, a read-only report
func AnalyzeCmd() *cobra.Command {
	var pkgFlags packageFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report common properties and package conflicts without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()
			pkgFlags.apply(cmd, s)

			central, err := project.DetectCentralFiles(s.root)
			if err != nil {
				return err
			}
			if central.HasBuildProps() {
				output.Info(fmt.Sprintf("Existing %s", s.rel(central.BuildProps)))
			}
			if central.HasPackagesProps() {
				managed, err := project.CentrallyManaged(central.PackagesProps)
				switch {
				case err != nil:
					output.Warn(err.Error())
				case managed:
					output.Info(fmt.Sprintf("Existing %s (central package management enabled)", s.rel(central.PackagesProps)))
				default:
					output.Info(fmt.Sprintf("Existing %s (central package management disabled)", s.rel(central.PackagesProps)))
				}
			}

			docs, err := s.scan(cmd.Context())
			if err != nil || len(docs) == 0 {
				return err
			}

			props := s.analyzer(s.cfg.StrategyValue()).CommonProperties(docs)
			s.metrics.ObserveProperties(props)
			s.report.Properties(props)

			res, err := analyzePackages(cmd.Context(), s, docs, false)
			if err != nil {
				return err
			}
			if pending := res.Pending(); len(pending) > 0 {
				output.Info(fmt.Sprintf("%d package(s) need a manual choice: %s", len(pending), strings.Join(pending, ", ")))
			}
			return nil
		},
	}

	addPackageFlags(cmd, &pkgFlags)

	return cmd
}
