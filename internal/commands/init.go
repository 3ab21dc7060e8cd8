package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost/internal/config"
	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/generator"
	"github.com/simonhull/firebird-suite/roost/pkg/input"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
)

// InitCmd creates the 'init' command, which writes a default roost.yaml.
// On a terminal it asks for the conflict strategy first.
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default roost.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("directory")
			root, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			cfg := config.DefaultConfig()
			if isInteractive() {
				prompt := input.New(cmd.InOrStdin(), cmd.OutOrStdout())
				strategy, err := analyzer.ParseStrategy(prompt.Prompt("Conflict strategy (highest, lowest, most-common, manual)", cfg.Strategy))
				if err != nil {
					return err
				}
				cfg.Strategy = strategy.String()
			}

			content, err := config.Marshal(cfg)
			if err != nil {
				return err
			}

			path := filepath.Join(root, config.FileName)
			ops := []generator.Operation{
				&generator.WriteFileOp{Path: path, Content: content},
			}
			if _, err := generator.Execute(cmd.Context(), ops, generator.ExecuteOptions{
				Force:  force,
				Writer: cmd.OutOrStdout(),
			}); err != nil {
				return err
			}

			output.Success("Created " + config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "overwrite", "o", false, "Replace an existing roost.yaml")

	return cmd
}
