package allocate

import (
	"context"
	"fmt"

	"github.com/imamik/nbctl/internal/provisioning"
)

// Option configures Allocate.
type Option func(*options)

type options struct {
	onConflict func(candidate string, attempt int)
}

// WithConflictHook registers fn to be called for every rejected candidate.
func WithConflictHook(fn func(candidate string, attempt int)) Option {
	return func(o *options) {
		o.onConflict = fn
	}
}

// Allocate calls generate until conflicts reports a free candidate, at most
// maxAttempts times. A failing conflict check aborts with a
// *provisioning.RemoteOperationError.
func Allocate[V any](
	ctx context.Context,
	resource string,
	generate func() (V, error),
	conflicts func(context.Context, V) (bool, error),
	maxAttempts int,
	opts ...Option,
) (V, error) {
	var zero V
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		candidate, err := generate()
		if err != nil {
			return zero, fmt.Errorf("failed to generate %s: %w", resource, err)
		}
		taken, err := conflicts(ctx, candidate)
		if err != nil {
			return zero, &provisioning.RemoteOperationError{Step: "check " + resource, Err: err}
		}
		if !taken {
			return candidate, nil
		}
		if o.onConflict != nil {
			o.onConflict(fmt.Sprint(candidate), attempt)
		}
	}
	return zero, &provisioning.AllocationExhaustedError{Resource: resource, Attempts: maxAttempts}
}

// ObserveConflicts returns a hook that logs conflicts and counts them in metrics.
func ObserveConflicts(observer provisioning.Observer, metrics *provisioning.Metrics, resource string) Option {
	return WithConflictHook(func(candidate string, attempt int) {
		provisioning.LogAllocationConflict(observer, resource, candidate, attempt)
		metrics.RecordAllocationConflict(resource)
	})
}
