package window

import "time"

// Fixed is the non-strict policy: weight accumulates against a window
// anchored at current. A call that does not fit advances the anchor by
// exactly one interval and owns the next window. Under sustained
// overload the anchors drift ahead of wall-clock alignment; the drift
// is deliberate (bounded catch-up, not a leaky bucket) and is never
// corrected back.
type Fixed struct {
	limit    float64
	interval time.Duration

	current time.Time
	active  float64
}

// NewFixed returns a fixed-window policy admitting at most limit
// cumulative weight per interval.
func NewFixed(limit float64, interval time.Duration) *Fixed {
	return &Fixed{limit: limit, interval: interval}
}

func (f *Fixed) Reserve(now time.Time, weight float64) Reservation {
	if now.Sub(f.current) > f.interval {
		// The previous window fully expired; start fresh.
		f.current = now
		f.active = weight

		return Reservation{}
	}

	if f.active+weight > f.limit {
		// Saturated. The call owns the next window boundary.
		f.current = f.current.Add(f.interval)
		f.active = weight
	} else {
		f.active += weight
	}

	// The anchor sits in the future after an overflow, so calls
	// admitted into that window share its start time.
	delay := f.current.Sub(now)
	if delay < 0 {
		delay = 0
	}

	return Reservation{Delay: delay}
}

// Commit is a no-op: the fixed policy tracks windows, not slots.
func (f *Fixed) Commit(*Tick, time.Time) {}

// Cancel is a no-op: an abandoned call's weight stays counted against
// the window it was admitted into.
func (f *Fixed) Cancel(*Tick) {}

func (f *Fixed) Reset() {
	f.current = time.Time{}
	f.active = 0
}
