// Package schedule runs chart work on a single logical execution context.
//
// Relaxation ticks, transitions and pointer handlers all mutate the same
// position store, so they must never interleave within a step. A [Scheduler]
// serializes them: [Scheduler.Do] runs a function to completion on the
// scheduler's context, and every timer callback registered with
// [Scheduler.Every] or [Scheduler.After] runs there too.
//
// Two implementations are provided:
//
//   - [Loop]: a goroutine draining a work queue, driven by real timers.
//   - [Manual]: a virtual clock advanced explicitly, for tests and headless
//     rendering. Do runs inline.
//
// Code already running on the scheduler (inside Do or a timer callback) must
// not call Do again; it may freely register and cancel timers.
package schedule

import "time"

// FrameInterval is the nominal animation frame period.
const FrameInterval = 16 * time.Millisecond

// Cancel stops a registered timer. It is idempotent; once it returns on the
// scheduler's context the callback will not run again.
type Cancel func()

// Scheduler serializes chart work.
type Scheduler interface {
	// Do runs fn on the scheduler and waits for it to return.
	Do(fn func())
	// Every runs fn every d until fn returns false or the timer is cancelled.
	Every(d time.Duration, fn func() bool) Cancel
	// After runs fn once after d.
	After(d time.Duration, fn func()) Cancel
	// Now returns the scheduler's clock.
	Now() time.Time
}
