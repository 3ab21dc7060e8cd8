// Package versions classifies and orders NuGet package version strings.
//
// Every string parses to something. Strings that are neither a version nor a
// version range become Opaque values, which still order deterministically
// (ordinally) against each other and always sort below any ranked value.
//
//	a := versions.Parse("1.2.0")
//	b := versions.Parse("[1.0.0, 2.0.0)")
//	versions.Compare(a, b) // 1, the range ranks by its lower bound
package versions
