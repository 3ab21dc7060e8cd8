// Package analyzer infers centralized configuration from a set of .NET
// project documents.
//
// Two pipelines share one Analyzer:
//
//   - CommonProperties counts PropertyGroup settings across documents and
//     keeps the values shared by at least Threshold(n) of them.
//   - AnalyzePackages groups PackageReference versions by package, resolves
//     conflicts with a Strategy and records conflicts and warnings.
//
// Both are pure functions over the documents passed in. A document that
// fails to parse is reported as a warning and contributes nothing.
package analyzer
