package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Transaction is a set of file writes committed together
type Transaction struct {
	staged    []fileWrite
	written   []writtenFile
	backups   []string
	committed bool

	backupRoot string
	backupDir  string
}

type fileWrite struct {
	path    string
	content []byte
	mode    os.FileMode
}

// writtenFile remembers what a path held before the transaction touched it.
type writtenFile struct {
	path     string
	previous []byte
	mode     os.FileMode
	existed  bool
}

// NewTransaction creates an empty transaction
func NewTransaction() *Transaction {
	return &Transaction{}
}

// WithBackup copies each existing file into dir before overwriting it. The
// copy keeps the file's path relative to root.
func (t *Transaction) WithBackup(root, dir string) *Transaction {
	t.backupRoot, t.backupDir = root, dir
	return t
}

// AddFile stages a write. Nothing touches disk until Commit.
func (t *Transaction) AddFile(path string, content []byte, mode os.FileMode) {
	t.staged = append(t.staged, fileWrite{path: path, content: content, mode: mode})
}

// Len returns the number of staged writes
func (t *Transaction) Len() int {
	return len(t.staged)
}

// Backups returns the paths of backup copies made during Commit
func (t *Transaction) Backups() []string {
	return t.backups
}

// Commit writes every staged file. On failure the files already written are
// restored and the error says whether the restore itself succeeded.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}

	for _, w := range t.staged {
		if err := ctx.Err(); err != nil {
			return t.abort(err)
		}
		if err := t.write(w); err != nil {
			return t.abort(err)
		}
	}

	t.committed = true
	return nil
}

func (t *Transaction) abort(cause error) error {
	if err := t.restore(); err != nil {
		return fmt.Errorf("%w (rollback incomplete: %v)", cause, err)
	}
	return cause
}

func (t *Transaction) write(w fileWrite) error {
	prev := writtenFile{path: w.path, mode: w.mode}
	data, err := os.ReadFile(w.path)
	switch {
	case err == nil:
		prev.previous, prev.existed = data, true
		if info, statErr := os.Stat(w.path); statErr == nil {
			prev.mode = info.Mode().Perm()
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to read %s: %w", w.path, err)
	}

	if prev.existed && t.backupDir != "" {
		if err := t.backup(w.path, prev.previous, prev.mode); err != nil {
			return err
		}
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := writeAtomic(w.path, w.content, w.mode); err != nil {
		return fmt.Errorf("failed to write file %s: %w", w.path, err)
	}

	t.written = append(t.written, prev)
	return nil
}

func (t *Transaction) backup(path string, data []byte, mode os.FileMode) error {
	rel := filepath.Base(path)
	if t.backupRoot != "" {
		if r, err := filepath.Rel(t.backupRoot, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}

	dst := filepath.Join(t.backupDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(dst, data, mode); err != nil {
		return fmt.Errorf("failed to back up %s: %w", path, err)
	}
	t.backups = append(t.backups, dst)
	return nil
}

// writeAtomic writes through a temp file in the same directory and renames
// it into place.
func writeAtomic(path string, content []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".roost-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// restore undoes writes in reverse order
func (t *Transaction) restore() error {
	var errs []error
	for i := len(t.written) - 1; i >= 0; i-- {
		w := t.written[i]
		var err error
		if w.existed {
			err = os.WriteFile(w.path, w.previous, w.mode)
		} else {
			err = os.Remove(w.path)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	t.written = nil
	return errors.Join(errs...)
}

// Rollback puts back everything this transaction wrote, whether or not it
// committed. Backups made during Commit are kept.
func (t *Transaction) Rollback() error {
	err := t.restore()
	t.committed = false
	return err
}
