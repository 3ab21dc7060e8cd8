// Package filesystem walks .NET source trees.
//
// Walk skips build output, package caches and tool metadata by default
// (bin, obj, packages, .git, .vs and similar), matching directory names
// case-insensitively so Windows-style "Bin" or "OBJ" folders are skipped too.
//
// Find all project files below a directory:
//
//	paths, err := filesystem.FindProjectFiles(".", filesystem.ProjectOptions{})
//
// Custom walk:
//
//	err := filesystem.Walk(".", filesystem.WalkOptions{
//	    IgnoreDirs:     []string{"artifacts"},
//	    IgnorePatterns: []string{"*.bak"},
//	}, func(path string, d fs.DirEntry) error {
//	    return nil
//	})
package filesystem
