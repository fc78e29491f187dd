package window

import (
	"testing"
	"time"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFixed_SixCallsShareWindows(t *testing.T) {
	f := NewFixed(2, time.Second)

	expDelays := []time.Duration{0, 0, time.Second, time.Second, 2 * time.Second, 2 * time.Second}
	for i, exp := range expDelays {
		res := f.Reserve(base, 1)
		if res.Delay != exp {
			t.Errorf("call %d: exp delay %v; got %v", i+1, exp, res.Delay)
		}
		if res.Tick != nil {
			t.Errorf("call %d: exp nil tick handle; got %v", i+1, res.Tick)
		}
	}
}

func TestFixed_WindowNeverExceedsLimit(t *testing.T) {
	const limit = 3
	f := NewFixed(limit, time.Second)

	// All calls arrive at once; calls sharing a firing time share a
	// window, so no firing time may carry more than limit calls.
	perWindow := make(map[time.Duration]int)
	for i := 0; i < 10; i++ {
		res := f.Reserve(base, 1)
		perWindow[res.Delay]++
	}

	for delay, n := range perWindow {
		if n > limit {
			t.Errorf("window at delay %v admitted %d calls; limit is %d", delay, n, limit)
		}
	}
}

func TestFixed_NewWindowAfterExpiry(t *testing.T) {
	f := NewFixed(1, time.Second)

	if res := f.Reserve(base, 1); res.Delay != 0 {
		t.Fatalf("first call: exp delay 0; got %v", res.Delay)
	}

	// More than one interval later the window has fully expired.
	if res := f.Reserve(base.Add(1500*time.Millisecond), 1); res.Delay != 0 {
		t.Errorf("call after expiry: exp delay 0; got %v", res.Delay)
	}
}

func TestFixed_WeightedAdmission(t *testing.T) {
	f := NewFixed(10, time.Second)

	if res := f.Reserve(base, 4); res.Delay != 0 {
		t.Fatalf("weight 4: exp delay 0; got %v", res.Delay)
	}
	if res := f.Reserve(base, 6); res.Delay != 0 {
		t.Fatalf("weight 6: exp delay 0; got %v", res.Delay)
	}

	// The window holds exactly 10; any further weight rolls over.
	if res := f.Reserve(base, 1); res.Delay != time.Second {
		t.Errorf("weight 1 overflow: exp delay %v; got %v", time.Second, res.Delay)
	}
}

func TestFixed_DriftUnderSustainedOverload(t *testing.T) {
	f := NewFixed(1, time.Second)

	expDelays := []time.Duration{0, time.Second, 2 * time.Second, 3 * time.Second}
	for i, exp := range expDelays {
		if res := f.Reserve(base, 1); res.Delay != exp {
			t.Errorf("call %d: exp delay %v; got %v", i+1, exp, res.Delay)
		}
	}

	// The anchor stays re-anchored at each overflow rather than
	// realigning to wall clock: a call half a second later still
	// queues behind the drifted boundary.
	res := f.Reserve(base.Add(500*time.Millisecond), 1)
	if exp := 3500 * time.Millisecond; res.Delay != exp {
		t.Errorf("drifted call: exp delay %v; got %v", exp, res.Delay)
	}
}

func TestFixed_Reset(t *testing.T) {
	f := NewFixed(1, time.Second)

	f.Reserve(base, 1)
	if res := f.Reserve(base, 1); res.Delay == 0 {
		t.Fatal("second call should have been deferred")
	}

	f.Reset()

	if res := f.Reserve(base, 1); res.Delay != 0 {
		t.Errorf("after reset: exp delay 0; got %v", res.Delay)
	}
}
