package repokit

import (
	"context"
	"fmt"
	"time"
)

// Guarder checks that dependencies answer
type Guarder interface {
	Guard(context.Context) error
}

// Ready runs g.Guard bounded by timeout when ctx carries no deadline
func Ready(ctx context.Context, g Guarder, timeout time.Duration) error {
	if g == nil {
		return fmt.Errorf("no dependency guard configured")
	}
	if _, ok := ctx.Deadline(); !ok && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return g.Guard(ctx)
}

// MustGuard runs Ready with a 5s bound and panics on failure, for process startup
func MustGuard(ctx context.Context, g Guarder) {
	if err := Ready(ctx, g, 5*time.Second); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
