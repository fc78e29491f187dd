// Package limiter implements a rate limiter that defers, rather than
// drops, excess work: no more than the configured limit of cumulative
// weight executes within any interval, and overflow calls wait their
// turn in arrival order.
//
// # Usage
//
// Build a [Limiter] with functional options and gate work on it:
//
//	lim, err := limiter.New(
//		limiter.WithLimit(2),
//		limiter.WithInterval(time.Second),
//	)
//	if err != nil { ... }
//
//	err = lim.Do(ctx, func(ctx context.Context) error {
//		return callRemoteAPI(ctx)
//	})
//
// [Limiter.Wait] and [Limiter.WaitN] expose the bare admission step
// for callers that manage execution themselves. With
// [WithStrict] the limiter enforces a sliding window instead of fixed
// windows; combined with [WithWeighted], each call may carry its own
// weight:
//
//	lim, err := limiter.New(
//		limiter.WithLimit(100),
//		limiter.WithInterval(time.Minute),
//		limiter.WithStrict(),
//		limiter.WithWeighted(),
//	)
//	err = lim.WaitN(ctx, 12.5)
//
// # Cancellation
//
// Cancelling a call's own context fails only that call. Closing the
// limiter, directly via [Limiter.Close] or through a [WithSignal]
// context, fails every queued call with the given cause and resets the
// limiter's memory. Calls that have already begun executing are never
// affected.
package limiter
