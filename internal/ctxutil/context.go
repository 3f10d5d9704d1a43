// Package ctxutil builds and inspects the context.Context carried through a
// lookup: trace id, per-request timeout, and the MAX_HOPS counter that caps
// iterative find_successor routing.
package ctxutil

import (
	"context"
	"errors"
	"time"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/ring"
	"chorddfs/internal/trace"
)

type hopsKey struct{}

// Option configures NewContext.
type Option func(*config)

type config struct {
	withTrace bool
	withHops  bool
	selfID    ring.ID
	timeout   time.Duration
}

// WithTrace attaches a fresh trace id derived from selfID.
func WithTrace(selfID ring.ID) Option {
	return func(c *config) { c.withTrace = true; c.selfID = selfID }
}

// WithTimeout bounds the context with d. The caller must defer the returned
// cancel func.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHops initializes the hop counter at 0, enabling IncHops/Hops.
func WithHops() Option {
	return func(c *config) { c.withHops = true }
}

// NewContext builds a context.Background() derivative per the given
// options. Returns a no-op cancel if no timeout was requested.
func NewContext(opts ...Option) (context.Context, context.CancelFunc) {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	ctx := context.Background()
	var cancel context.CancelFunc = func() {}
	if cfg.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
	}
	if cfg.withTrace {
		ctx, _ = trace.Attach(ctx, cfg.selfID)
	}
	if cfg.withHops {
		ctx = context.WithValue(ctx, hopsKey{}, 0)
	}
	return ctx, cancel
}

// Hops returns the current hop count, or -1 if the context carries none.
func Hops(ctx context.Context) int {
	if v, ok := ctx.Value(hopsKey{}).(int); ok {
		return v
	}
	return -1
}

// IncHops returns a derived context with the hop counter incremented by
// one. A context with no counter is returned unchanged.
func IncHops(ctx context.Context) context.Context {
	v, ok := ctx.Value(hopsKey{}).(int)
	if !ok {
		return ctx
	}
	return context.WithValue(ctx, hopsKey{}, v+1)
}

// CheckContext reports whether ctx has already been canceled or has passed
// its deadline, mapping either case to chorderr.ErrTransport so callers
// handle it the same way as any other RPC failure.
func CheckContext(ctx context.Context) error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.Canceled):
		return chorderr.ErrTransport
	case errors.Is(err, context.DeadlineExceeded):
		return chorderr.ErrTransport
	default:
		return nil
	}
}
