package limiter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Config holds the admission parameters for a [Limiter].
type Config struct {
	// Limit is the maximum cumulative weight admitted within any
	// Interval of time. Must be finite and non-negative.
	Limit float64 `json:"limit" validate:"gte=0"`
	// Interval is the length of the admission window.
	Interval time.Duration `json:"interval" validate:"gte=0"`
	// Strict selects the sliding-window policy. The default policy
	// accounts weight against fixed windows that re-anchor on
	// overflow.
	Strict bool `json:"strict"`
	// Weighted declares that calls carry individual weights via
	// [Limiter.WaitN]. Requires a non-zero Interval.
	Weighted bool `json:"weighted"`
}

// Option is a functional option for configuring a [Limiter] via [New].
type Option func(*options) error

type options struct {
	cfg     Config
	onDelay func(delay time.Duration, weight float64)
	logger  *slog.Logger
	tracer  trace.Tracer
	signal  context.Context
}

// WithConfig replaces the entire admission configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) error {
		o.cfg = cfg
		return nil
	}
}

// WithLimit sets the maximum cumulative weight per interval.
func WithLimit(limit float64) Option {
	return func(o *options) error {
		o.cfg.Limit = limit
		return nil
	}
}

// WithInterval sets the length of the admission window.
func WithInterval(d time.Duration) Option {
	return func(o *options) error {
		o.cfg.Interval = d
		return nil
	}
}

// WithStrict selects the strict sliding-window policy.
func WithStrict() Option {
	return func(o *options) error {
		o.cfg.Strict = true
		return nil
	}
}

// WithWeighted enables per-call weights.
func WithWeighted() Option {
	return func(o *options) error {
		o.cfg.Weighted = true
		return nil
	}
}

// WithOnDelay registers fn to be invoked with the computed delay and
// the call's weight whenever admission is deferred. Notification is
// best-effort: a panic in fn is swallowed and never affects admission
// or execution.
func WithOnDelay(fn func(delay time.Duration, weight float64)) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("onDelay func must not be nil")
		}
		o.onDelay = fn
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Limiter].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer sets the tracer used to record spans around deferred
// waits. A no-op tracer is used by default.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithSignal ties the limiter's lifetime to ctx: when ctx is
// cancelled, the limiter closes with the context's cause, failing all
// queued calls. A ctx already cancelled at construction makes [New]
// fail. [Limiter.Close] stops the watcher, so the registration never
// outlives the limiter.
func WithSignal(ctx context.Context) Option {
	return func(o *options) error {
		if ctx == nil {
			return errors.New("signal context must not be nil")
		}
		o.signal = ctx
		return nil
	}
}
