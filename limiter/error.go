package limiter

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is the cause delivered to queued calls when a limiter
	// is closed without an explicit cause.
	ErrClosed = errors.New("limiter closed")
	// ErrInvalidWeight marks a per-call weight that is negative or not
	// a finite number.
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrWeightExceedsLimit marks a per-call weight larger than the
	// configured limit; such a call can never be admitted.
	ErrWeightExceedsLimit = errors.New("weight exceeds limit")
	// ErrSignalTriggered is returned by [New] when the signal context
	// was already cancelled at construction.
	ErrSignalTriggered = errors.New("signal already triggered")
	// ErrWeightedNeedsInterval is returned by [New] when weighted mode
	// is combined with a zero interval.
	ErrWeightedNeedsInterval = errors.New("weighted throttling requires a non-zero interval")
	// ErrNotFinite marks a configured limit that is NaN or infinite.
	ErrNotFinite = errors.New("must be a finite number")
)

// WeightError reports a per-call weight the limiter refused. Only the
// offending call fails; queued calls are unaffected.
type WeightError struct {
	Weight float64
	Limit  float64
	Err    error
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("%v: weight %v with limit %v", e.Err, e.Weight, e.Limit)
}

func (e *WeightError) Unwrap() error {
	return e.Err
}
