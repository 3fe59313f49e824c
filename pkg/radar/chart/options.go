package chart

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/techradar/pkg/radar/relax"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
	"github.com/matzehuels/techradar/pkg/radar/view"
)

// Default transition durations.
const (
	DefaultMoveDuration = 750 * time.Millisecond
	DefaultZoomDuration = 500 * time.Millisecond
)

// Option configures a [Chart].
type Option func(*Chart)

// WithScheduler runs the chart on s instead of a private schedule.Loop.
// The caller keeps ownership of s.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Chart) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithSeed seeds blip placement and relaxation jiggle.
func WithSeed(seed uint64) Option {
	return func(c *Chart) { c.seed = seed }
}

// WithLogger sets the chart's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Chart) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMeasurer sets the text measurer used to size tooltips. The default,
// view.Estimate, needs no fonts.
func WithMeasurer(m view.TextMeasurer) Option {
	return func(c *Chart) {
		if m != nil {
			c.measurer = m
		}
	}
}

// WithRelax overrides the relaxation parameters.
func WithRelax(o relax.Options) Option {
	return func(c *Chart) { c.relaxOpts = o }
}

// WithDropInvalid drops items with out-of-range indices, logging a warning,
// instead of rejecting the whole render.
func WithDropInvalid(drop bool) Option {
	return func(c *Chart) { c.dropInvalid = drop }
}

// WithMoveDuration sets the duration of animated blip moves.
func WithMoveDuration(d time.Duration) Option {
	return func(c *Chart) { c.moveDur = d }
}

// WithZoomDuration sets the duration of viewport transitions.
func WithZoomDuration(d time.Duration) Option {
	return func(c *Chart) { c.zoomDur = d }
}
