package exec

import (
	"context"
	"fmt"
	"time"
)

// DefaultVerifyTimeout bounds a restore when the caller sets no deadline.
const DefaultVerifyTimeout = 5 * time.Minute

// Verifier checks that a solution still restores after its project files
// were rewritten
type Verifier struct {
	executor *Executor
	timeout  time.Duration
}

// NewVerifier creates a Verifier. nil options capture output behind a
// spinner.
func NewVerifier(opts *Options) *Verifier {
	if opts == nil {
		opts = &Options{Spinner: true}
	}
	return &Verifier{executor: NewExecutor(opts), timeout: DefaultVerifyTimeout}
}

// WithTimeout overrides DefaultVerifyTimeout
func (v *Verifier) WithTimeout(d time.Duration) *Verifier {
	v.timeout = d
	return v
}

// Restore runs "dotnet restore" in dir.
func (v *Verifier) Restore(ctx context.Context, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if err := v.executor.RunCaptured(ctx, "Restoring packages", "dotnet", "restore", dir); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	return nil
}
