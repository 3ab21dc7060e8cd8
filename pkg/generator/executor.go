package generator

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ExecuteOptions configures execution behavior
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // Where to write output (defaults to os.Stdout)

	// BackupDir, when set, receives a copy of every file before it is
	// overwritten. BackupRoot is the directory paths are kept relative to.
	BackupDir  string
	BackupRoot string
}

// Execute validates every operation, then commits them in one transaction.
// In dry-run mode nothing is written and the returned transaction is nil.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) (*Transaction, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	if opts.DryRun {
		for _, op := range ops {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
		}
		return nil, nil
	}

	tx := NewTransaction()
	if opts.BackupDir != "" {
		tx.WithBackup(opts.BackupRoot, opts.BackupDir)
	}
	for _, op := range ops {
		op.Stage(tx)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	for _, op := range ops {
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}
	return tx, nil
}
