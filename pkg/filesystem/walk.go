package filesystem

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs are directories that never hold source project files
var DefaultIgnoreDirs = []string{
	// build output
	"bin", "obj", "out", "artifacts", "TestResults",
	// package caches
	"packages", ".nuget", "node_modules", "bower_components",
	// version control and editors
	".git", ".hg", ".svn", ".vs", ".idea", ".vscode",
	// front-end and temp
	"wwwroot", "dist", "tmp", "temp", ".cache",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs     []string // Directories to skip, case-insensitive (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File patterns to skip (e.g., "*.bak")
	IncludeHidden  bool     // Include hidden files/dirs (default: false)
}

// Walk traverses a directory tree, calling visitor for each file and
// directory that is not ignored. Return filepath.SkipDir from visitor to skip
// a directory.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, d fs.DirEntry) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	ignore := make(map[string]bool, len(ignoreDirs))
	for _, dir := range ignoreDirs {
		ignore[strings.ToLower(dir)] = true
	}

	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == rootPath {
			return visitor(path, d)
		}

		name := d.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if ignore[strings.ToLower(name)] {
				return filepath.SkipDir
			}
			return visitor(path, d)
		}

		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				return nil
			}
		}
		return visitor(path, d)
	})
}
