package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shahradelahi/throttle/limiter"
)

var (
	ErrNilLimiter    = errors.New("limiter must not be nil")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// throttle is an http.RoundTripper, deferring outbound calls through
// the limiter instead of dropping them.
type throttle struct {
	limiter *limiter.Limiter
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper that defers outbound
// requests through lim. logFn lazily resolves the logger at request
// time, making option ordering irrelevant; a nil or nil-returning
// logFn disables wait logging. A nil next falls back to
// [http.DefaultTransport].
func NewRoundTripper(lim *limiter.Limiter, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if lim == nil {
		return nil, ErrNilLimiter
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: lim,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	start := time.Now()

	err := t.limiter.Wait(ctx)
	waited := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if logger := t.logFn(); logger != nil && waited >= time.Millisecond {
		logger.Info("throttle wait complete", "waited", waited.String(), "path", r.URL.Path)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
