package window

import "time"

// Strict is the sliding-window policy. Unweighted, it keeps the
// capacity most recent slot times and spaces admissions evenly so no
// trailing interval ever holds more than capacity firings. Weighted,
// each tick carries its call's weight and admission tests the summed
// weight of every trailing window the candidate slot would join.
type Strict struct {
	limit    float64
	interval time.Duration
	weighted bool
	capacity int

	// ticks is sorted by time ascending, ties in insertion order.
	ticks []*Tick
}

// NewStrict returns a strict sliding-window policy. With weighted set,
// Reserve consults per-call weights against limit; otherwise it admits
// up to max(limit, 1) evenly spaced calls per interval.
func NewStrict(limit float64, interval time.Duration, weighted bool) *Strict {
	capacity := int(limit)
	if capacity < 1 {
		capacity = 1
	}

	return &Strict{
		limit:    limit,
		interval: interval,
		weighted: weighted,
		capacity: capacity,
	}
}

func (s *Strict) Reserve(now time.Time, weight float64) Reservation {
	if s.weighted {
		return s.reserveWeighted(now, weight)
	}

	return s.reserveSpaced(now)
}

// reserveSpaced keeps a ring of the capacity most recent slots. The
// next slot clears the oldest recorded slot by a full interval and the
// most recent one by ceil(interval/capacity), whichever is later.
func (s *Strict) reserveSpaced(now time.Time) Reservation {
	if len(s.ticks) < s.capacity {
		s.ticks = append(s.ticks, &Tick{at: now})

		return Reservation{}
	}

	oldest := s.ticks[0].at
	mostRecent := s.ticks[len(s.ticks)-1].at

	minSpacing := s.interval / time.Duration(s.capacity)
	if s.interval%time.Duration(s.capacity) != 0 {
		minSpacing++
	}

	slot := oldest.Add(s.interval)
	if spaced := mostRecent.Add(minSpacing); spaced.After(slot) {
		slot = spaced
	}

	// Evict the oldest slot; the new one is necessarily the latest.
	s.ticks = append(s.ticks[1:], &Tick{at: slot})

	delay := slot.Sub(now)
	if delay < 0 {
		delay = 0
	}

	return Reservation{Delay: delay}
}

// reserveWeighted admits at now when every trailing window the call
// would join still has room, otherwise walks a candidate slot past
// each tick overlapping it until the admission test passes. The test
// covers windows ending at already-scheduled future ticks too;
// admitting on the current window alone could overfill a window a
// reserved slot has yet to complete.
func (s *Strict) reserveWeighted(now time.Time, weight float64) Reservation {
	s.prune(now)

	if s.admits(now, weight) {
		s.insert(&Tick{at: now, weight: weight})

		return Reservation{}
	}

	slot := now
	for i := 0; i < len(s.ticks); i++ {
		if s.admits(slot, weight) {
			break
		}
		if next := s.ticks[i].at.Add(s.interval); next.After(slot) {
			slot = next
		}
	}

	tick := &Tick{at: slot, weight: weight}
	s.insert(tick)

	delay := slot.Sub(now)
	if delay < 0 {
		delay = 0
	}

	return Reservation{Delay: delay, Tick: tick}
}

// Commit rewrites a scheduled tick's slot to its real firing time and
// restores the sort order, which the correction can perturb.
func (s *Strict) Commit(tick *Tick, firedAt time.Time) {
	if tick == nil || !s.remove(tick) {
		return
	}

	tick.at = firedAt
	s.insert(tick)
}

// Cancel releases a scheduled tick so its slot no longer counts
// against future admissions.
func (s *Strict) Cancel(tick *Tick) {
	if tick == nil {
		return
	}

	s.remove(tick)
}

func (s *Strict) Reset() {
	s.ticks = nil
}

// remove deletes tick from the sequence by pointer identity,
// preserving order, and reports whether it was present. A tick already
// pruned is simply gone.
func (s *Strict) remove(tick *Tick) bool {
	for i, t := range s.ticks {
		if t == tick {
			s.ticks = append(s.ticks[:i], s.ticks[i+1:]...)
			return true
		}
	}

	return false
}

// prune drops ticks that can no longer influence any admission: those
// at or before now minus one interval.
func (s *Strict) prune(now time.Time) {
	cut := now.Add(-s.interval)

	i := 0
	for i < len(s.ticks) && !s.ticks[i].at.After(cut) {
		i++
	}
	if i > 0 {
		s.ticks = append(s.ticks[:0], s.ticks[i:]...)
	}
}

// windowWeight sums the weights of ticks inside the trailing window
// (end-interval, end].
func (s *Strict) windowWeight(end time.Time) float64 {
	start := end.Add(-s.interval)

	var sum float64
	for _, t := range s.ticks {
		if t.at.After(end) {
			break
		}
		if t.at.After(start) {
			sum += t.weight
		}
	}

	return sum
}

// admits reports whether inserting weight at slot keeps the trailing
// window ending at slot, and every trailing window ending at a later
// tick that would contain slot, within the limit.
func (s *Strict) admits(slot time.Time, weight float64) bool {
	if s.windowWeight(slot)+weight > s.limit {
		return false
	}

	horizon := slot.Add(s.interval)
	for _, t := range s.ticks {
		if !t.at.After(slot) {
			continue
		}
		if !t.at.Before(horizon) {
			break
		}
		if s.windowWeight(t.at)+weight > s.limit {
			return false
		}
	}

	return true
}

// insert places t in time-sorted position, after any existing tick
// with the same time so ties keep insertion order.
func (s *Strict) insert(t *Tick) {
	i := len(s.ticks)
	for i > 0 && s.ticks[i-1].at.After(t.at) {
		i--
	}

	s.ticks = append(s.ticks, nil)
	copy(s.ticks[i+1:], s.ticks[i:])
	s.ticks[i] = t
}
