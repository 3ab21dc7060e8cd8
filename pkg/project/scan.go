package project

import (
	"context"
	"fmt"
	"os"

	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/filesystem"
	"github.com/simonhull/firebird-suite/roost/pkg/logger"
)

// ScanOptions configures Scan
type ScanOptions struct {
	Extensions []string // Project file extensions (default: filesystem.DefaultProjectExtensions)
	IgnoreDirs []string // Directories to skip (default: filesystem.DefaultIgnoreDirs)
	Logger     logger.Logger
}

// Scan reads every project file below root, sorted by path. Files that cannot
// be read are logged and skipped.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]analyzer.Document, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	paths, err := filesystem.FindProjectFiles(root, filesystem.ProjectOptions{
		Extensions: opts.Extensions,
		IgnoreDirs: opts.IgnoreDirs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	docs := make([]analyzer.Document, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		content, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Failed to read project file", logger.F("path", path), logger.F("error", err))
			continue
		}
		docs = append(docs, analyzer.Document{Path: path, Content: string(content)})
	}

	log.Info("Scanned project files", logger.F("root", root), logger.F("count", len(docs)))
	return docs, nil
}
