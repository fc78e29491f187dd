package window

import "time"

// Tick is a reserved or consumed execution slot in a strict sliding
// window. The pointer identity of a Tick is its handle: the limiter
// passes it back to [Window.Commit] or [Window.Cancel] once the
// outcome of the scheduled call is known.
type Tick struct {
	at     time.Time
	weight float64
}

// At returns the slot time currently recorded for the tick.
func (t *Tick) At() time.Time { return t.at }

// Weight returns the weight the tick holds in its window.
func (t *Tick) Weight() float64 { return t.weight }

// Reservation is the outcome of a single admission decision. Delay is
// zero when the call may execute immediately. Tick is non-nil only for
// strict weighted admissions scheduled into the future; such
// reservations must be settled with Commit or Cancel.
type Reservation struct {
	Delay time.Duration
	Tick  *Tick
}

// Window decides whether work of a given weight may execute now or
// must wait, and maintains the bookkeeping backing that decision.
//
// Implementations are not safe for concurrent use.
type Window interface {
	// Reserve admits weight at time now, mutating the window state and
	// returning the wait the caller must observe before executing.
	Reserve(now time.Time, weight float64) Reservation

	// Commit records the actual firing time of a previously scheduled
	// tick. Timer jitter makes firing lag the reserved slot; without
	// the correction the window under-counts recently admitted weight.
	Commit(tick *Tick, firedAt time.Time)

	// Cancel releases a scheduled tick whose call will never fire.
	Cancel(tick *Tick)

	// Reset discards all bookkeeping, restoring the freshly
	// constructed state.
	Reset()
}
