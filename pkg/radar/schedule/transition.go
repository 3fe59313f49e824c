package schedule

import (
	"math"
	"time"
)

// Ease maps normalized time in [0, 1] to progress in [0, 1].
type Ease func(t float64) float64

// EaseLinear is the identity easing.
func EaseLinear(t float64) float64 { return t }

// EaseCubicInOut is the symmetric cubic easing used by default for chart
// transitions.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Transition is a timed interpolation that completes once. Completion
// continuations registered with [Transition.Then] run on the scheduler.
//
// All methods except Done must be called on the scheduler.
type Transition struct {
	sched       Scheduler
	start       time.Time
	duration    time.Duration
	ease        Ease
	step        func(k float64)
	cancel      Cancel
	done        chan struct{}
	thens       []func()
	finished    bool
	interrupted bool
}

// Start begins a transition calling step with eased progress once per frame.
// The final call always receives exactly 1. A non-positive duration
// completes synchronously.
func Start(s Scheduler, d time.Duration, ease Ease, step func(k float64)) *Transition {
	if ease == nil {
		ease = EaseCubicInOut
	}
	t := &Transition{
		sched:    s,
		start:    s.Now(),
		duration: d,
		ease:     ease,
		step:     step,
		done:     make(chan struct{}),
	}
	if d <= 0 {
		t.step(1)
		t.finish()
		return t
	}
	t.cancel = s.Every(FrameInterval, t.tick)
	return t
}

func (t *Transition) tick() bool {
	if t.finished {
		return false
	}
	k := float64(t.sched.Now().Sub(t.start)) / float64(t.duration)
	k = math.Min(1, math.Max(0, k))
	if k >= 1 {
		t.step(1)
		t.finish()
		return false
	}
	t.step(t.ease(k))
	return true
}

func (t *Transition) finish() {
	if t.finished {
		return
	}
	t.finished = true
	close(t.done)
	thens := t.thens
	t.thens = nil
	for _, fn := range thens {
		fn()
	}
}

// Then registers a continuation. If the transition has already completed,
// fn runs immediately.
func (t *Transition) Then(fn func()) *Transition {
	if t.finished {
		fn()
		return t
	}
	t.thens = append(t.thens, fn)
	return t
}

// Interrupt stops the transition where it is. Continuations still run so
// that groups waiting on it complete; check [Transition.Interrupted].
func (t *Transition) Interrupt() {
	if t.finished {
		return
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.interrupted = true
	t.finish()
}

// Done is closed when the transition completes or is interrupted. It is safe
// to wait on from any goroutine.
func (t *Transition) Done() <-chan struct{} { return t.done }

// Finished reports whether the transition has completed.
func (t *Transition) Finished() bool { return t.finished }

// Interrupted reports whether the transition was stopped before reaching 1.
func (t *Transition) Interrupted() bool { return t.interrupted }

// Group completes when all of its member transitions complete.
type Group struct {
	pending int
	thens   []func()
	done    bool
}

// NewGroup tracks ts. An empty group is already complete.
func NewGroup(ts ...*Transition) *Group {
	g := &Group{pending: len(ts)}
	for _, t := range ts {
		t.Then(g.memberDone)
	}
	if g.pending == 0 {
		g.done = true
	}
	return g
}

func (g *Group) memberDone() {
	g.pending--
	if g.pending > 0 || g.done {
		return
	}
	g.done = true
	thens := g.thens
	g.thens = nil
	for _, fn := range thens {
		fn()
	}
}

// Then registers a continuation that runs once, when the last member
// completes. If the group is already complete, fn runs immediately.
func (g *Group) Then(fn func()) *Group {
	if g.done {
		fn()
		return g
	}
	g.thens = append(g.thens, fn)
	return g
}

// Done reports whether every member has completed.
func (g *Group) Done() bool { return g.done }
