// Package window implements the admission policies behind the
// throttle: a fixed-window policy that re-anchors its window on
// overflow, and a strict sliding-window policy with evenly spaced
// slots (unweighted) or weight-summed trailing windows (weighted).
//
// Windows are pure bookkeeping. [Window.Reserve] computes a delay
// synchronously and never sleeps; suspending for the returned delay is
// the caller's job, as is serializing access (the limiter holds a
// mutex around every call).
package window
