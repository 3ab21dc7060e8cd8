// Package props writes the centralized MSBuild files and removes the
// declarations they replace from individual project files.
//
// Generation:
//
//	content, err := props.BuildProps(result.Properties, props.BuildOptions{})
//	content, err := props.PackagesProps(result.ResolvedVersions)
//
// Mutation returns the rewritten content and whether anything changed:
//
//	updated, changed, err := props.StripProperties(doc.Content, hoisted)
//	updated, changed, err := props.StripPackageVersions(doc.Content, result.ResolvedVersions)
package props
