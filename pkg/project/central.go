package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/roost/pkg/msbuild"
	"github.com/simonhull/firebird-suite/roost/pkg/props"
)

// CentralFiles holds the paths of existing central configuration files.
// A path is empty when the file does not exist.
type CentralFiles struct {
	BuildProps    string
	PackagesProps string
}

// HasBuildProps reports whether Directory.Build.props exists
func (c CentralFiles) HasBuildProps() bool { return c.BuildProps != "" }

// HasPackagesProps reports whether Directory.Packages.props exists
func (c CentralFiles) HasPackagesProps() bool { return c.PackagesProps != "" }

// DetectCentralFiles looks for central configuration files in root.
func DetectCentralFiles(root string) (CentralFiles, error) {
	var found CentralFiles
	for name, dst := range map[string]*string{
		props.BuildPropsFile:    &found.BuildProps,
		props.PackagesPropsFile: &found.PackagesProps,
	} {
		path := filepath.Join(root, name)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			*dst = path
		case errors.Is(err, os.ErrNotExist):
		default:
			return CentralFiles{}, fmt.Errorf("failed to check %s: %w", name, err)
		}
	}
	return found, nil
}

// CentrallyManaged reports whether the packages file at path enables
// central package management.
func CentrallyManaged(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	doc, err := msbuild.Parse(string(data))
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	for _, el := range msbuild.Descendants(doc.Root(), "ManagePackageVersionsCentrally") {
		if strings.EqualFold(msbuild.Value(el), "true") {
			return true, nil
		}
	}
	return false, nil
}
