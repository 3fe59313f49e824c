// Package chart ties the radar layout engine to a drawing surface and to
// pointer interaction.
//
// # Overview
//
// A [Chart] owns a layout.Engine, a relax.Runner and the previous item
// collection. Each [Chart.Render] call reconciles the new collection against
// the previous one, updates the engine, emits scene commands and applies
// the relaxer policy:
//
//   - the relaxer starts when the previous collection was empty and the new
//     one is not, or when any item enters
//   - when an item changes cell the relaxer is stopped, the item is animated
//     to a freshly sampled target, and the relaxer restarts once every move
//     has completed
//   - otherwise a running relaxer is left alone to converge
//
// Pointer interaction ([Chart.Hover], [Chart.Click], [Chart.HoverQuadrant],
// ...) drives the tooltip and hover regions and notifies the [Host].
//
// # Concurrency
//
// All work runs on a schedule.Scheduler. Public methods are safe to call
// from any goroutine that is not itself running on the chart's scheduler.
// Host callbacks and event listeners run on the scheduler.
package chart

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/layout"
	"github.com/matzehuels/techradar/pkg/radar/relax"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
	"github.com/matzehuels/techradar/pkg/radar/segment"
	"github.com/matzehuels/techradar/pkg/radar/view"
)

// Chart is a live radar chart.
type Chart struct {
	cfg     radar.Config
	surface scene.Surface
	host    Host

	sched     schedule.Scheduler
	ownLoop   *schedule.Loop
	logger    *log.Logger
	measurer  view.TextMeasurer
	relaxOpts relax.Options
	seed      uint64

	dropInvalid bool
	moveDur     time.Duration
	zoomDur     time.Duration

	engine  *layout.Engine
	relaxer *relax.Runner

	prev      []radar.Item
	view      radar.ViewState
	rendered  bool
	viewport  geom.Rect // target of the last render
	shown     geom.Rect // currently displayed, differs while zooming
	looks     map[string]blipLook
	regions   []view.Region
	zoomDecor int      // quadrant whose legend and ring labels are drawn, or -1
	staleIDs  []string // nodes to discard after a failed draw

	zoom      *schedule.Transition
	moves     map[string]*move
	moveGen   int
	inRender  bool
	kickRelax bool

	hovered       string
	hoveredRegion int
	tooltip       view.TooltipLayout
	tooltipShown  bool

	listeners []func(Event)
	closed    bool
}

type move struct {
	t      *schedule.Transition
	target geom.Point
}

// New creates a chart drawing on surface. host may be nil.
func New(cfg radar.Config, surface scene.Surface, host Host, opts ...Option) (*Chart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if surface == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chart needs a surface")
	}
	if host == nil {
		host = HostFuncs{}
	}

	c := &Chart{
		cfg:           cfg,
		surface:       surface,
		host:          host,
		logger:        log.New(io.Discard),
		measurer:      view.Estimate{},
		relaxOpts:     relax.DefaultOptions(),
		seed:          42,
		moveDur:       DefaultMoveDuration,
		zoomDur:       DefaultZoomDuration,
		looks:         make(map[string]blipLook),
		moves:         make(map[string]*move),
		hoveredRegion: -1,
		zoomDecor:     -1,
	}
	for _, o := range opts {
		o(c)
	}
	if c.sched == nil {
		c.ownLoop = schedule.NewLoop()
		c.sched = c.ownLoop
	}

	c.engine = layout.New(cfg, segment.NewSource(c.seed))
	ro := c.relaxOpts
	ro.Seed = c.seed
	c.relaxer = relax.NewRunner(c.sched, ro,
		relax.WithLogger(c.logger),
		relax.OnTick(c.onRelaxTick),
	)
	return c, nil
}

// Config returns the chart configuration.
func (c *Chart) Config() radar.Config { return c.cfg }

// OnEvent registers a listener for semantic events.
func (c *Chart) OnEvent(fn func(Event)) {
	c.sched.Do(func() { c.listeners = append(c.listeners, fn) })
}

// Blips returns a copy of every blip, in insertion order.
func (c *Chart) Blips() []layout.Blip {
	var out []layout.Blip
	c.sched.Do(func() { out = c.engine.Blips() })
	return out
}

// Blip returns a copy of the named blip.
func (c *Chart) Blip(name string) (layout.Blip, bool) {
	var (
		b  layout.Blip
		ok bool
	)
	c.sched.Do(func() { b, ok = c.engine.Blip(name) })
	return b, ok
}

// View returns the view state of the last render.
func (c *Chart) View() radar.ViewState {
	var vs radar.ViewState
	c.sched.Do(func() { vs = c.view })
	return vs
}

// Viewport returns the target viewport of the last render.
func (c *Chart) Viewport() geom.Rect {
	var r geom.Rect
	c.sched.Do(func() { r = c.viewport })
	return r
}

// RelaxerRunning reports whether a relaxation pass is in flight.
func (c *Chart) RelaxerRunning() bool {
	var running bool
	c.sched.Do(func() { running = c.relaxer.Running() })
	return running
}

// RelaxerStarts returns how many relaxation passes have been started.
func (c *Chart) RelaxerStarts() int {
	var n int
	c.sched.Do(func() { n = c.relaxer.Starts() })
	return n
}

// State is a read-only view of a chart.
type State struct {
	View           radar.ViewState     `json:"view"`
	Viewport       geom.Rect           `json:"viewport"`
	Blips          []layout.Blip       `json:"blips"`
	Tooltip        *view.TooltipLayout `json:"tooltip,omitempty"`
	HoveredRegion  int                 `json:"hovered_region"`
	RelaxerRunning bool                `json:"relaxer_running"`
	MovesInFlight  int                 `json:"moves_in_flight"`
}

// Snapshot returns a consistent copy of the chart state.
func (c *Chart) Snapshot() State {
	var st State
	c.sched.Do(func() {
		st = State{
			View:           c.view,
			Viewport:       c.viewport,
			Blips:          c.engine.Blips(),
			HoveredRegion:  c.hoveredRegion,
			RelaxerRunning: c.relaxer.Running(),
			MovesInFlight:  len(c.moves),
		}
		if c.tooltipShown {
			t := c.tooltip
			st.Tooltip = &t
		}
	})
	return st
}

// MovesInFlight returns the number of animated moves not yet completed.
func (c *Chart) MovesInFlight() int {
	var n int
	c.sched.Do(func() { n = len(c.moves) })
	return n
}

// Settle completes every transition and runs the relaxer to convergence
// synchronously. It is meant for headless rendering, where nothing drives
// frames.
func (c *Chart) Settle(ctx context.Context) error {
	var err error
	c.sched.Do(func() {
		if c.closed {
			err = errors.New(errors.ErrCodeClosed, "chart is closed")
			return
		}
		c.finishTransitions()
		c.relaxer.Stop()

		bodies := c.bodies()
		if len(bodies) == 0 {
			return
		}
		ro := c.relaxOpts
		ro.Seed = c.seed + uint64(c.relaxer.Starts())
		sim := relax.NewSimulation(bodies, ro)
		var res relax.Result
		res, err = sim.Run(ctx, ro.Budget)
		c.logger.Debug("settled", "ticks", res.Ticks, "converged", res.Settled, "elapsed", res.Duration)
		c.onRelaxTick(res.Last)
	})
	return err
}

// finishTransitions jumps every transition to its end state.
func (c *Chart) finishTransitions() {
	c.moveGen++
	if c.zoom != nil {
		c.zoom.Interrupt()
		c.zoom = nil
		c.shown = c.viewport
		c.apply(scene.SetViewport(c.viewport))
	}
	for name, m := range c.moves {
		delete(c.moves, name)
		m.t.Interrupt()
		if p, ok := c.engine.SetPosition(name, m.target); ok {
			c.apply(scene.Translate(blipID(name), p))
		}
	}
}

// Close stops all background work and discards chart state. The chart
// cannot be used afterwards.
func (c *Chart) Close() {
	c.sched.Do(func() {
		if c.closed {
			return
		}
		c.closed = true
		c.relaxer.Stop()
		if c.zoom != nil {
			c.zoom.Interrupt()
			c.zoom = nil
		}
		c.moveGen++
		for name, m := range c.moves {
			delete(c.moves, name)
			m.t.Interrupt()
		}
		c.engine.Reset()
		c.prev = nil
		clear(c.looks)
		c.listeners = nil
	})
	if c.ownLoop != nil {
		c.ownLoop.Close()
	}
}

func (c *Chart) bodies() []relax.Body {
	bs := c.engine.Bodies()
	out := make([]relax.Body, len(bs))
	for i, b := range bs {
		out[i] = b
	}
	return out
}

func (c *Chart) onRelaxTick(relax.Stats) {
	blips := c.engine.Blips()
	cmds := make([]scene.Command, len(blips))
	for i, b := range blips {
		cmds[i] = scene.Translate(blipID(b.Name()), b.Position)
	}
	c.apply(cmds...)
}

// apply sends commands to the surface. Surface failures on the scheduler
// have no caller to return to, so they are logged.
func (c *Chart) apply(cmds ...scene.Command) error {
	if len(cmds) == 0 {
		return nil
	}
	if err := c.surface.Apply(cmds...); err != nil {
		c.logger.Error("surface rejected commands", "err", err)
		return err
	}
	return nil
}

func (c *Chart) emit(e Event) {
	for _, fn := range c.listeners {
		fn(e)
	}
}
