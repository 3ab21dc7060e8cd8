package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/exec"
	"github.com/simonhull/firebird-suite/roost/pkg/generator"
	"github.com/simonhull/firebird-suite/roost/pkg/logger"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
)

// errCancelled stops a command without reporting a failure.
var errCancelled = errors.New("cancelled")

// writeFlags are shared by every command that writes files
type writeFlags struct {
	overwrite bool
	skip      bool
	diff      bool
	dryRun    bool
	yes       bool
	noStrip   bool
	backup    bool
	verify    bool
}

func addWriteFlags(cmd *cobra.Command, f *writeFlags) {
	cmd.Flags().BoolVarP(&f.overwrite, "overwrite", "o", false, "Overwrite existing central files without asking")
	cmd.Flags().BoolVar(&f.skip, "skip", false, "Keep existing central files")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "Show a diff for existing central files and keep them")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Show what would be written without writing")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Answer yes to every confirmation")
	cmd.Flags().BoolVar(&f.noStrip, "no-strip", false, "Leave project files untouched")
	cmd.Flags().BoolVar(&f.backup, "backup", false, "Back up every overwritten file under .roost/backup")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "Run 'dotnet restore' afterwards and roll back on failure")
}

// restore is swapped in tests.
var restore = func(ctx context.Context, dir string) error {
	return exec.NewVerifier(nil).Restore(ctx, dir)
}

// plan collects the writes of one run. Project files rewritten by several
// steps are written once with the combined content.
type plan struct {
	resolver *generator.Resolver
	targets  []generator.Operation
	projects map[string]string
	order    []string
}

func newPlan(s *session, f *writeFlags) (*plan, error) {
	resolver, err := generator.NewResolver(f.overwrite, f.skip, f.diff, s.interact, s.out)
	if err != nil {
		return nil, err
	}
	return &plan{resolver: resolver, projects: make(map[string]string)}, nil
}

// target stages a central file. It reports false when the existing file is
// kept.
func (p *plan) target(s *session, path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		p.targets = append(p.targets, &generator.WriteFileOp{Path: path, Content: content})
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", s.rel(path), err)
	}

	res, err := p.resolver.ResolveConflict(path, existing, content)
	if err != nil {
		return false, err
	}
	switch res {
	case generator.Overwrite:
		p.targets = append(p.targets, &generator.WriteFileOp{Path: path, Content: content, Update: true})
		return true, nil
	case generator.Cancel:
		return false, errCancelled
	default:
		output.Info(fmt.Sprintf("Keeping existing %s", s.rel(path)))
		return false, nil
	}
}

// content returns the pending content of a project file.
func (p *plan) content(doc analyzer.Document) string {
	if c, ok := p.projects[doc.Path]; ok {
		return c
	}
	return doc.Content
}

// mutate applies fn to every project file. Files fn cannot parse are logged
// and left alone.
func (p *plan) mutate(s *session, docs []analyzer.Document, fn func(string) (string, bool, error)) int {
	changed := 0
	for _, doc := range docs {
		updated, ok, err := fn(p.content(doc))
		if err != nil {
			s.log.Warn("Skipping project file", logger.F("path", doc.Path), logger.F("error", err))
			output.Warn(fmt.Sprintf("Skipping %s: %v", s.rel(doc.Path), err))
			continue
		}
		if !ok {
			continue
		}
		if _, seen := p.projects[doc.Path]; !seen {
			p.order = append(p.order, doc.Path)
		}
		p.projects[doc.Path] = updated
		output.Verbose(fmt.Sprintf("Updated %s", s.rel(doc.Path)))
		changed++
	}
	return changed
}

func (p *plan) operations() []generator.Operation {
	ops := append([]generator.Operation(nil), p.targets...)
	for _, path := range p.order {
		ops = append(ops, &generator.WriteFileOp{Path: path, Content: []byte(p.projects[path]), Update: true})
	}
	return ops
}

// apply writes the plan in one transaction, then optionally verifies the
// result and rolls everything back if verification fails.
func (p *plan) apply(ctx context.Context, s *session, f *writeFlags) error {
	ops := p.operations()
	if len(ops) == 0 {
		output.Info("Nothing to write")
		return nil
	}

	opts := generator.ExecuteOptions{DryRun: f.dryRun, Writer: s.out}
	if f.backup || s.cfg.Backup {
		opts.BackupDir = s.backupDir()
		opts.BackupRoot = s.root
	}

	tx, err := generator.Execute(ctx, ops, opts)
	if err != nil {
		return err
	}
	if f.dryRun {
		return nil
	}

	for _, op := range ops {
		kind := "create"
		if w, ok := op.(*generator.WriteFileOp); ok && w.Update {
			kind = "update"
		}
		s.metrics.FileWritten(kind)
	}
	if n := len(tx.Backups()); n > 0 {
		output.Info(fmt.Sprintf("Backed up %d file(s) to %s", n, s.rel(s.backupDir())))
	}

	if !f.verify {
		return nil
	}
	if err := restore(ctx, s.root); err != nil {
		s.metrics.VerifyFailed()
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		output.Warn("Verification failed, changes rolled back")
		return err
	}
	output.Success("Verified with dotnet restore")
	return nil
}
