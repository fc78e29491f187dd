package limiter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"github.com/shahradelahi/throttle/limiter/window"
)

// Limiter defers, rather than drops, work that exceeds the configured
// rate. Every method computes its admission decision synchronously
// under the instance mutex; only the suspension for the computed delay
// blocks.
type Limiter struct {
	cfg     Config
	onDelay func(time.Duration, float64)
	logger  *slog.Logger
	tracer  trace.Tracer

	// logEvery paces the deferred-call log line so a saturated
	// limiter doesn't flood the logger.
	logEvery rate.Sometimes

	enabled atomic.Bool

	mu      sync.Mutex
	win     window.Window
	waiters map[uuid.UUID]*waiter
	closed  bool
	cause   error

	unwatch chan struct{}
}

// waiter is one queued call. cause is written before abort is closed
// and read only after abort is observed.
type waiter struct {
	abort chan struct{}
	cause error
}

// New builds a Limiter with the given options. Configuration errors
// (negative or non-finite limit, negative interval, weighted mode with
// a zero interval, an already-cancelled signal) fail here; the
// instance is never created.
func New(optFns ...Option) (*Limiter, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying limiter option: %w", err)
		}
	}

	cfg := opts.cfg
	if math.IsNaN(cfg.Limit) || math.IsInf(cfg.Limit, 0) {
		return nil, fmt.Errorf("limit[%v] %w", cfg.Limit, ErrNotFinite)
	}
	if err := checkConfig(cfg); err != nil {
		return nil, fmt.Errorf("validating limiter config: %w", err)
	}
	if cfg.Weighted && cfg.Interval == 0 {
		return nil, ErrWeightedNeedsInterval
	}
	if opts.signal != nil && opts.signal.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignalTriggered, context.Cause(opts.signal))
	}

	l := &Limiter{
		cfg:      cfg,
		onDelay:  opts.onDelay,
		logger:   opts.logger,
		tracer:   opts.tracer,
		logEvery: rate.Sometimes{First: 1, Interval: time.Second},
		waiters:  make(map[uuid.UUID]*waiter),
		unwatch:  make(chan struct{}),
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.tracer == nil {
		l.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	if cfg.Strict {
		l.win = window.NewStrict(cfg.Limit, cfg.Interval, cfg.Weighted)
	} else {
		l.win = window.NewFixed(cfg.Limit, cfg.Interval)
	}

	l.enabled.Store(true)

	if opts.signal != nil {
		go l.watch(opts.signal)
	}

	return l, nil
}

// watch closes the limiter when the signal fires. Close stops the
// watcher, so the signal registration never outlives the limiter.
func (l *Limiter) watch(signal context.Context) {
	select {
	case <-signal.Done():
		l.Close(context.Cause(signal))
	case <-l.unwatch:
	}
}

// Wait admits one unit of work, blocking for the computed delay.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitN(ctx, 1)
}

// WaitN admits weight units of work, blocking until the admission
// policy allows execution, ctx is cancelled, or the limiter closes.
// An invalid weight fails only this call; queued calls are unaffected.
func (l *Limiter) WaitN(ctx context.Context, weight float64) error {
	return l.wait(ctx, weight, nil)
}

// WaitNotify behaves like [Limiter.WaitN] but additionally invokes
// notify with the computed delay when the call is deferred, before any
// suspension. Panics in notify are swallowed.
func (l *Limiter) WaitNotify(ctx context.Context, weight float64, notify func(delay time.Duration)) error {
	return l.wait(ctx, weight, notify)
}

func (l *Limiter) wait(ctx context.Context, weight float64, notify func(time.Duration)) error {
	if !l.enabled.Load() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return &WeightError{Weight: weight, Limit: l.cfg.Limit, Err: ErrInvalidWeight}
	}
	if l.cfg.Weighted && weight > l.cfg.Limit {
		return &WeightError{Weight: weight, Limit: l.cfg.Limit, Err: ErrWeightExceedsLimit}
	}

	l.mu.Lock()
	if l.closed {
		cause := l.cause
		l.mu.Unlock()
		return cause
	}
	res := l.win.Reserve(time.Now(), weight)
	if res.Delay <= 0 {
		l.mu.Unlock()
		return nil
	}
	id := uuid.New()
	w := &waiter{abort: make(chan struct{})}
	l.waiters[id] = w
	queued := len(l.waiters)
	l.mu.Unlock()

	l.notifyDelay(res.Delay, weight, notify)
	l.logEvery.Do(func() {
		l.logger.Info("throttle deferred call", "id", id, "delay", res.Delay.String(), "weight", weight, "queued", queued)
	})

	ctx, span := l.tracer.Start(ctx, "limiter.wait")
	span.SetAttributes(
		attribute.Int64("delay_ms", res.Delay.Milliseconds()),
		attribute.Float64("weight", weight),
		attribute.Int("queue_size", queued),
	)
	defer span.End()

	timer := time.NewTimer(res.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		l.mu.Lock()
		if _, ok := l.waiters[id]; !ok {
			// Closed while the timer was firing.
			cause := l.cause
			l.mu.Unlock()
			return cause
		}
		delete(l.waiters, id)
		l.win.Commit(res.Tick, time.Now())
		l.mu.Unlock()
		return nil

	case <-ctx.Done():
		l.mu.Lock()
		if _, ok := l.waiters[id]; ok {
			delete(l.waiters, id)
			l.win.Cancel(res.Tick)
			l.mu.Unlock()
			return context.Cause(ctx)
		}
		// Close won the race; its cause takes precedence.
		cause := l.cause
		l.mu.Unlock()
		return cause

	case <-w.abort:
		return w.cause
	}
}

// notifyDelay runs the delay callbacks, swallowing panics:
// notification is best-effort and must never affect admission or
// execution.
func (l *Limiter) notifyDelay(delay time.Duration, weight float64, notify func(time.Duration)) {
	defer func() {
		_ = recover()
	}()

	if notify != nil {
		notify(delay)
	}
	if l.onDelay != nil {
		l.onDelay(delay, weight)
	}
}

// Do admits one unit of work and runs fn once admitted.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}

	return fn(ctx)
}

// QueueSize reports the number of calls currently waiting. Calls that
// have begun executing are not counted.
func (l *Limiter) QueueSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.waiters)
}

// Enabled reports whether throttling is active.
func (l *Limiter) Enabled() bool {
	return l.enabled.Load()
}

// SetEnabled toggles throttling. While disabled, calls bypass the
// admission policy entirely and execute immediately.
func (l *Limiter) SetEnabled(v bool) {
	l.enabled.Store(v)
}

// Close fails every queued call with cause ([ErrClosed] when nil),
// resets the admission bookkeeping, and stops the signal watcher.
// Calls already executing are unaffected. Close is idempotent;
// subsequent calls and waits observe the first cause.
func (l *Limiter) Close(cause error) {
	if cause == nil {
		cause = ErrClosed
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.cause = cause
	aborted := l.waiters
	l.waiters = make(map[uuid.UUID]*waiter)
	l.win.Reset()
	close(l.unwatch)
	l.mu.Unlock()

	for _, w := range aborted {
		w.cause = cause
		close(w.abort)
	}
}
