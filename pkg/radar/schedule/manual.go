package schedule

import (
	"slices"
	"sync"
	"time"
)

// Manual is a [Scheduler] driven by a virtual clock. Timers only fire from
// [Manual.Advance] and [Manual.Flush]; Do runs inline.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at        time.Time
	every     time.Duration
	fn        func() bool
	seq       int
	cancelled bool
}

// NewManual returns a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Do runs fn immediately.
func (m *Manual) Do(fn func()) { fn() }

// Every implements [Scheduler].
func (m *Manual) Every(d time.Duration, fn func() bool) Cancel {
	if d <= 0 {
		d = FrameInterval
	}
	return m.add(d, d, fn)
}

// After implements [Scheduler].
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	return m.add(d, 0, func() bool {
		fn()
		return false
	})
}

func (m *Manual) add(d, every time.Duration, fn func() bool) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{at: m.now.Add(d), every: every, fn: fn, seq: m.seq}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.cancelled = true
		m.timers = slices.DeleteFunc(m.timers, func(o *manualTimer) bool { return o == t })
	}
}

// Now implements [Scheduler].
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing due timers in time order
// (registration order on ties).
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		again := t.fn()

		m.mu.Lock()
		if again && !t.cancelled && t.every > 0 {
			m.seq++
			t.at = t.at.Add(t.every)
			t.seq = m.seq
			m.timers = append(m.timers, t)
		}
		m.mu.Unlock()
	}

	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// nextDue pops the earliest timer due at or before target and sets the
// clock to its deadline.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *manualTimer
	for _, t := range m.timers {
		if t.at.After(target) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	m.timers = slices.DeleteFunc(m.timers, func(o *manualTimer) bool { return o == best })
	if best.at.After(m.now) {
		m.now = best.at
	}
	return best
}

// Flush advances the clock until no timers remain or limit of virtual time
// has elapsed, and returns the virtual time consumed.
func (m *Manual) Flush(limit time.Duration) time.Duration {
	start := m.Now()
	deadline := start.Add(limit)
	for m.Pending() > 0 {
		m.mu.Lock()
		next := m.timers[0].at
		for _, t := range m.timers[1:] {
			if t.at.Before(next) {
				next = t.at
			}
		}
		now := m.now
		m.mu.Unlock()

		if next.After(deadline) {
			m.Advance(deadline.Sub(now))
			break
		}
		m.Advance(next.Sub(now))
	}
	return m.Now().Sub(start)
}
