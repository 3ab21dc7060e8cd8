package commands

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
)

// RootCmd creates and returns the root command for the roost CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "roost",
		Short: "Centralize .NET build configuration",
		Long: `Roost scans a tree of .NET project files and moves what they share
into central configuration:

• Directory.Build.props for properties most projects agree on
• Directory.Packages.props for package versions, with conflict resolution
• Project files are cleaned of the declarations that moved

Run 'roost analyze' first to see what would change.`,
		Version:       roost.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
			output.SetWriter(cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringP("directory", "d", ".", "Directory containing the .NET projects")
	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default: roost.yaml in the directory)")

	cmd.AddCommand(
		BuildCmd(),
		PackagesCmd(),
		AllCmd(),
		AnalyzeCmd(),
		InitCmd(),
		VersionCmd(),
	)

	return cmd
}
