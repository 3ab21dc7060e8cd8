// Package exec runs external tools on behalf of roost, with a spinner for
// long-running steps.
//
// The main use is verifying a rewritten solution still restores:
//
//	v := exec.NewVerifier(nil)
//	if err := v.Restore(ctx, "."); err != nil {
//	    // err carries the tail of dotnet's output
//	}
package exec
