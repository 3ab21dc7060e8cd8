package commands

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost/pkg/output"
)

// AllCmd creates the 'all' command, which runs build and packages in one
// transaction
func AllCmd() *cobra.Command {
	var (
		flags    writeFlags
		pkgFlags packageFlags
	)

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Generate Directory.Build.props and Directory.Packages.props",
		Long: `Runs 'build' and then 'packages'. Both central files and every
rewritten project file are written together, so a failure leaves the tree
as it was.

Example:
  roost all --backup --verify`,
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
			if err := planBuild(cmd.Context(), s, p, docs, &flags); err != nil {
				return ignoreCancel(err)
			}
			if err := planPackages(cmd.Context(), s, p, docs, &flags); err != nil {
				return ignoreCancel(err)
			}
			if err := p.apply(cmd.Context(), s, &flags); err != nil {
				return err
			}
			if !flags.dryRun {
				output.Success("Central configuration is up to date")
			}
			return nil
		},
	}

	addWriteFlags(cmd, &flags)
	addPackageFlags(cmd, &pkgFlags)

	return cmd
}
