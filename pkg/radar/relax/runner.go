package relax

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/techradar/pkg/observability"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
)

// StopReason tells why a runner pass ended.
type StopReason string

const (
	StopSettled    StopReason = "settled"
	StopQuiet      StopReason = "quiet"
	StopBudget     StopReason = "budget"
	StopSuperseded StopReason = "superseded"
	StopCancelled  StopReason = "cancelled"
)

// Runner drives restartable relaxation passes on a scheduler. All methods
// must be called on the scheduler.
type Runner struct {
	sched  schedule.Scheduler
	opts   Options
	logger *log.Logger

	sim     *Simulation
	cancel  schedule.Cancel
	started time.Time
	quiet   int
	starts  int

	onTick func(Stats)
	onStop func(StopReason)
}

// RunnerOption configures a [Runner].
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// OnTick registers a callback invoked after every tick.
func OnTick(fn func(Stats)) RunnerOption {
	return func(r *Runner) { r.onTick = fn }
}

// OnStop registers a callback invoked when a pass ends.
func OnStop(fn func(StopReason)) RunnerOption {
	return func(r *Runner) { r.onStop = fn }
}

// NewRunner creates an idle runner.
func NewRunner(s schedule.Scheduler, opts Options, ropts ...RunnerOption) *Runner {
	r := &Runner{
		sched:  s,
		opts:   opts.withDefaults(),
		logger: log.New(io.Discard),
	}
	for _, o := range ropts {
		o(r)
	}
	return r
}

// Start begins a new pass over bodies, stopping any pass in flight first so
// two passes never write the same positions. Starting with no bodies only
// stops the previous pass.
func (r *Runner) Start(bodies []Body) {
	r.stop(StopSuperseded)
	if len(bodies) == 0 {
		return
	}
	opts := r.opts
	opts.Seed += uint64(r.starts)
	r.sim = NewSimulation(bodies, opts)
	r.started = r.sched.Now()
	r.quiet = 0
	r.starts++
	r.cancel = r.sched.Every(schedule.FrameInterval, r.tick)

	observability.Chart().OnRelaxStart(len(bodies))
	r.logger.Debug("relaxer started", "bodies", len(bodies), "pass", r.starts)
}

// Stop ends the current pass, if any.
func (r *Runner) Stop() { r.stop(StopCancelled) }

// Running reports whether a pass is in flight.
func (r *Runner) Running() bool { return r.sim != nil }

// Starts returns how many passes have been started.
func (r *Runner) Starts() int { return r.starts }

// Ticks returns the tick count of the current pass, or 0 when idle.
func (r *Runner) Ticks() int {
	if r.sim == nil {
		return 0
	}
	return r.sim.Ticks()
}

func (r *Runner) tick() bool {
	if r.sim == nil {
		return false
	}
	st := r.sim.Tick()
	if r.onTick != nil {
		r.onTick(st)
	}

	if st.MaxDisplacement < r.opts.Epsilon {
		r.quiet++
	} else {
		r.quiet = 0
	}

	switch {
	case r.sim.Settled():
		r.stop(StopSettled)
	case r.quiet >= r.opts.QuietTicks:
		r.stop(StopQuiet)
	case r.sched.Now().Sub(r.started) >= r.opts.Budget:
		r.stop(StopBudget)
	default:
		return true
	}
	return false
}

func (r *Runner) stop(reason StopReason) {
	if r.sim == nil {
		return
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	ticks := r.sim.Ticks()
	elapsed := r.sched.Now().Sub(r.started)
	r.sim = nil

	observability.Chart().OnRelaxStop(ticks, string(reason), elapsed)
	r.logger.Debug("relaxer stopped", "reason", reason, "ticks", ticks, "elapsed", elapsed)
	if r.onStop != nil {
		r.onStop(reason)
	}
}
