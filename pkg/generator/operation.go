package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Operation is a file change that can be validated, then staged into a
// Transaction.
//
// Validate checks the operation would succeed. It may create parent
// directories. force=true skips the "already exists" check.
//
// Description returns a line for output, e.g. "Create Directory.Build.props (312 bytes)".
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Stage(tx *Transaction)
	Description() string
}

// WriteFileOp writes Content to Path.
//
// With Update unset the file must not exist yet (unless forced). With Update
// set the file must already exist; this is used for rewriting project files.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
	Update  bool
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}

	_, err := os.Stat(op.Path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot access %s: %w", op.Path, err)
	}

	switch {
	case op.Update && !exists:
		return fmt.Errorf("file to update not found: %s", op.Path)
	case !op.Update && exists && !force:
		return fmt.Errorf("file already exists: %s", op.Path)
	}

	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

func (op *WriteFileOp) Stage(tx *Transaction) {
	mode := op.Mode
	if mode == 0 {
		mode = 0644
	}
	tx.AddFile(op.Path, op.Content, mode)
}

func (op *WriteFileOp) Description() string {
	if op.Update {
		return fmt.Sprintf("Update %s", op.Path)
	}
	return fmt.Sprintf("Create %s (%d bytes)", op.Path, len(op.Content))
}
