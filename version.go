// Package roost generates centralized .NET build configuration.
package roost

// Version is the roost release
const Version = "0.3.0"
