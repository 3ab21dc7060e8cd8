package filesystem

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultProjectExtensions are the MSBuild project file extensions scanned
var DefaultProjectExtensions = []string{".csproj", ".fsproj", ".vbproj"}

// ProjectOptions configures project file discovery
type ProjectOptions struct {
	Extensions []string // Project file extensions (default: DefaultProjectExtensions)
	IgnoreDirs []string // Passed to Walk (default: DefaultIgnoreDirs)
}

// FindProjectFiles returns every project file below rootPath, sorted.
func FindProjectFiles(rootPath string, opts ProjectOptions) ([]string, error) {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultProjectExtensions
	}
	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[ext] = true
	}

	var projects []string
	err := Walk(rootPath, WalkOptions{IgnoreDirs: opts.IgnoreDirs}, func(path string, d fs.DirEntry) error {
		if !d.IsDir() && wanted[strings.ToLower(filepath.Ext(path))] {
			projects = append(projects, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(projects)
	return projects, nil
}
