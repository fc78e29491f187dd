// Package transport provides an [http.RoundTripper] that rate-limits
// outbound HTTP requests through a deferring
// [github.com/shahradelahi/throttle/limiter.Limiter]: excess requests
// wait for an admission slot instead of failing.
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	lim, err := limiter.New(
//		limiter.WithLimit(10),
//		limiter.WithInterval(time.Second),
//	)
//	rt, err := transport.NewRoundTripper(
//		lim,
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// When the rate limit is exceeded, outbound requests block until their
// admission slot arrives or the request context is cancelled.
package transport
