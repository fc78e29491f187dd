// Package throttle wraps arbitrary callables with a rate limiter that
// defers, rather than drops, excess invocations.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/shahradelahi/throttle/limiter"
)

// Config carries the typed per-call hooks for a wrapped function. The
// zero value is valid: every call weighs one unit and deferrals go
// unannounced.
type Config[A any] struct {
	// Weight computes the admission weight of a call from its
	// argument. The result must be finite, non-negative and no
	// greater than the configured limit; violations fail that call
	// only.
	Weight func(arg A) float64

	// OnDelay is invoked with the call's argument whenever the call
	// is deferred. Notification is best-effort: panics are swallowed
	// and never affect the call.
	OnDelay func(arg A)
}

// Func is a throttled wrapping of an underlying function. Concurrent
// calls are admitted in the order they reach the limiter.
type Func[A, R any] struct {
	lim *limiter.Limiter
	fn  func(context.Context, A) (R, error)
	cfg Config[A]
}

// Wrap returns fn gated behind a deferring rate limiter built from
// opts. Configuring cfg.Weight switches the limiter into weighted
// mode, which requires a non-zero interval.
func Wrap[A, R any](fn func(context.Context, A) (R, error), cfg Config[A], opts ...limiter.Option) (*Func[A, R], error) {
	if cfg.Weight != nil {
		opts = append(opts, limiter.WithWeighted())
	}

	lim, err := limiter.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Func[A, R]{lim: lim, fn: fn, cfg: cfg}, nil
}

// Call runs the wrapped function once the limiter admits it. The
// result is whatever the wrapped function returns; if the call is
// aborted while queued, the error is the abort's cause.
func (f *Func[A, R]) Call(ctx context.Context, arg A) (R, error) {
	var zero R

	weight := 1.0
	if f.cfg.Weight != nil {
		var err error
		if weight, err = f.weigh(arg); err != nil {
			return zero, err
		}
	}

	var notify func(time.Duration)
	if f.cfg.OnDelay != nil {
		notify = func(time.Duration) {
			f.cfg.OnDelay(arg)
		}
	}

	if err := f.lim.WaitNotify(ctx, weight, notify); err != nil {
		return zero, err
	}

	return f.fn(ctx, arg)
}

// weigh evaluates the weight function, converting a panic into that
// call's error so one bad weight never takes down the caller.
func (f *Func[A, R]) weigh(arg A) (weight float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("weight function panicked: %v", r)
		}
	}()

	return f.cfg.Weight(arg), nil
}

// QueueSize reports the number of calls currently waiting.
func (f *Func[A, R]) QueueSize() int {
	return f.lim.QueueSize()
}

// Enabled reports whether throttling is active.
func (f *Func[A, R]) Enabled() bool {
	return f.lim.Enabled()
}

// SetEnabled toggles throttling. While disabled, calls execute
// immediately.
func (f *Func[A, R]) SetEnabled(v bool) {
	f.lim.SetEnabled(v)
}

// Close aborts every queued call with cause and disposes of the
// limiter. See [limiter.Limiter.Close].
func (f *Func[A, R]) Close(cause error) {
	f.lim.Close(cause)
}

// Limiter exposes the underlying limiter, for callers that want to
// share it or gate other work on it.
func (f *Func[A, R]) Limiter() *limiter.Limiter {
	return f.lim
}
