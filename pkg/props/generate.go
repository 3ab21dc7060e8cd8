package props

import (
	"fmt"
	"slices"

	"github.com/beevik/etree"

	"github.com/simonhull/firebird-suite/roost/pkg/msbuild"
)

// File names of the centralized configuration files.
const (
	BuildPropsFile    = "Directory.Build.props"
	PackagesPropsFile = "Directory.Packages.props"
)

// Properties the build file always carries.
const (
	PropTargetFramework = "TargetFramework"
	PropImplicitUsings  = "ImplicitUsings"
	PropNullable        = "Nullable"

	enabled = "enable"
)

// ensuredDefaults are added when absent. TargetFramework is never defaulted.
var ensuredDefaults = []struct{ name, value string }{
	{PropImplicitUsings, enabled},
	{PropNullable, enabled},
}

// BuildOptions configures BuildProps.
type BuildOptions struct {
	// RequiredOnly restricts output to TargetFramework, ImplicitUsings and
	// Nullable.
	RequiredOnly bool
}

// Hoisted returns the input properties that BuildProps writes, which are the
// ones safe to strip from project files.
func Hoisted(properties map[string]string, opts BuildOptions) map[string]string {
	out := make(map[string]string, len(properties))
	for name, value := range properties {
		if opts.RequiredOnly && !isRequired(name) {
			continue
		}
		out[name] = value
	}
	return out
}

func isRequired(name string) bool {
	return name == PropTargetFramework || name == PropImplicitUsings || name == PropNullable
}

// BuildProps renders Directory.Build.props.
func BuildProps(properties map[string]string, opts BuildOptions) ([]byte, error) {
	props := Hoisted(properties, opts)
	for _, d := range ensuredDefaults {
		if _, ok := props[d.name]; !ok {
			props[d.name] = d.value
		}
	}

	doc, group := newProject(msbuild.TagPropertyGroup)
	for _, name := range sortedKeys(props) {
		group.CreateElement(name).SetText(props[name])
	}
	return render(doc)
}

// PackagesProps renders Directory.Packages.props with one PackageVersion per
// package, ordered by name.
func PackagesProps(resolved map[string]string) ([]byte, error) {
	doc, group := newProject(msbuild.TagPropertyGroup)
	group.CreateElement("ManagePackageVersionsCentrally").SetText("true")

	items := doc.Root().CreateElement(msbuild.TagItemGroup)
	for _, name := range sortedKeys(resolved) {
		pv := items.CreateElement(msbuild.TagPackageVersion)
		pv.CreateAttr(msbuild.AttrInclude, name)
		pv.CreateAttr(msbuild.AttrVersion, resolved[name])
	}
	return render(doc)
}

func newProject(firstGroup string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	root := doc.CreateElement(msbuild.TagProject)
	return doc, root.CreateElement(firstGroup)
}

func render(doc *etree.Document) ([]byte, error) {
	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("render props: %w", err)
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
