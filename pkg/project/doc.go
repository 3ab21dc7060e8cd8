// Package project discovers .NET project files and the centralized
// configuration files already present in a solution directory.
//
// Read every project below a directory:
//
//	docs, err := project.Scan(ctx, ".", project.ScanOptions{Logger: log})
//
// Check for existing central files:
//
//	central, err := project.DetectCentralFiles(".")
//	if central.HasPackagesProps() {
//	    fmt.Println("already managed:", central.PackagesProps)
//	}
package project
