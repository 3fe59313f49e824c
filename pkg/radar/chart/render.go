package chart

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/observability"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/reconcile"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
	"github.com/matzehuels/techradar/pkg/radar/view"
)

// Result summarizes one render pass.
type Result struct {
	Enter          int  `json:"enter"`
	Update         int  `json:"update"`
	Exit           int  `json:"exit"`
	Moves          int  `json:"moves"`
	Dropped        int  `json:"dropped,omitempty"`
	RelaxerStarted bool `json:"relaxer_started"`
}

// Render draws items under view state vs.
//
// An invalid item, a duplicate name or an invalid view state rejects the
// render before any state changes. With [WithDropInvalid], items with bad
// indices are dropped instead. A surface that rejects the draw commands does
// not roll the pass back: the layout is committed and the error returned
// alongside the result.
func (c *Chart) Render(items []radar.Item, vs radar.ViewState) (Result, error) {
	var (
		res Result
		err error
	)
	c.sched.Do(func() { res, err = c.render(items, vs) })
	return res, err
}

func (c *Chart) render(items []radar.Item, vs radar.ViewState) (Result, error) {
	if c.closed {
		return Result{}, errors.New(errors.ErrCodeClosed, "chart is closed")
	}
	if err := vs.Validate(); err != nil {
		return Result{}, err
	}
	items, dropped, err := c.validate(items)
	if err != nil {
		return Result{}, err
	}
	plan, err := reconcile.Diff(c.prev, items)
	if err != nil {
		return Result{}, err
	}

	c.inRender = true
	c.kickRelax = false
	defer func() { c.inRender = false }()

	startsBefore := c.relaxer.Starts()
	prevEmpty := len(c.prev) == 0

	var cmds []scene.Command
	for _, id := range c.staleIDs {
		cmds = append(cmds, scene.Remove(id))
	}
	c.staleIDs = nil
	if !c.rendered {
		cmds = append(cmds, gridCommands(c.cfg)...)
		cmds = append(cmds, scene.Create(idTooltip, scene.LayerTooltip, tooltipShape(view.TooltipLayout{}), geom.Point{}, 0))
	}

	// Exits first, so a departing blip never takes part in relaxation.
	for _, it := range plan.Exit {
		c.engine.Remove(it.Name)
		c.cancelMove(it.Name)
		delete(c.looks, it.Name)
		cmds = append(cmds, scene.Remove(blipID(it.Name)))
		if c.hovered == it.Name {
			c.hovered = ""
			cmds = append(cmds, c.hideTooltip()...)
		}
	}

	for _, it := range plan.Enter {
		if _, err := c.engine.Seed(it); err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "seed %q", it.Name)
		}
	}

	type pending struct {
		name   string
		target geom.Point
	}
	var moves []pending
	for _, u := range plan.Update {
		if !u.NeedsMove() {
			if _, err := c.engine.Retain(u.Cur); err != nil {
				return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "retain %q", u.Cur.Name)
			}
			continue
		}
		target, err := c.engine.Reassign(u.Cur)
		if err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "reassign %q", u.Cur.Name)
		}
		moves = append(moves, pending{name: u.Cur.Name, target: target})
	}

	if vs.Numbered && !vs.Zoomed() {
		c.engine.Number()
	} else {
		c.engine.ClearLabels()
	}

	for _, b := range c.engine.Blips() {
		look := lookOf(b)
		old, ok := c.looks[b.Name()]
		switch {
		case !ok:
			cmds = append(cmds, scene.Create(blipID(b.Name()), scene.LayerBlips, blipShape(b), b.Position, 1))
		case old != look:
			cmds = append(cmds, scene.Update(blipID(b.Name()), blipShape(b)))
		}
		c.looks[b.Name()] = look
	}

	target := view.Viewport(c.cfg, vs)
	viewChanged := c.rendered && !vs.Equal(c.view)
	if viewChanged {
		c.hovered = ""
		c.hoveredRegion = -1
		cmds = append(cmds, c.hideTooltip()...)
	}
	cmds = append(cmds, c.regionCommands(vs)...)
	cmds = append(cmds, c.decorCommands(vs)...)

	var surfaceErr error
	if err := c.apply(cmds...); err != nil {
		surfaceErr = errors.Wrap(errors.ErrCodeInternal, err, "apply render commands")
	}

	if !c.rendered {
		c.shown = target
		c.apply(scene.SetViewport(target))
	} else if target != c.viewport {
		c.zoomTo(target)
	}

	// Relaxer policy.
	switch {
	case len(items) == 0:
		c.relaxer.Stop()
	case len(moves) > 0:
		c.relaxer.Stop()
		for _, m := range moves {
			c.startMove(m.name, m.target)
		}
		c.groupMoves()
		// Interrupted moves fire their group's continuation; it must not
		// start a pass while the new moves are in flight.
		if c.kickRelax && len(c.moves) == 0 {
			c.relaxer.Start(c.bodies())
		}
	case len(c.moves) > 0:
		// The in-flight group restarts the relaxer once it completes.
	case prevEmpty || len(plan.Enter) > 0 || c.kickRelax:
		c.relaxer.Start(c.bodies())
	}

	c.prev = append([]radar.Item(nil), items...)
	c.view = vs
	c.viewport = target
	c.rendered = true
	if surfaceErr != nil {
		c.markStale(cmds)
	}

	res := Result{
		Enter:          len(plan.Enter),
		Update:         len(plan.Update),
		Exit:           len(plan.Exit),
		Moves:          len(moves),
		Dropped:        dropped,
		RelaxerStarted: c.relaxer.Starts() > startsBefore,
	}
	observability.Chart().OnReconcile(res.Enter, res.Update, res.Exit, res.Moves)
	c.logger.Debug("rendered",
		"items", len(items), "enter", res.Enter, "update", res.Update, "exit", res.Exit,
		"moves", res.Moves, "view", viewName(vs), "relax", res.RelaxerStarted)
	return res, surfaceErr
}

// markStale forgets what the surface is believed to hold after a rejected
// batch. The next render removes every node that may have been drawn and
// draws the chart from scratch.
func (c *Chart) markStale(cmds []scene.Command) {
	ids := make(map[string]struct{})
	for _, cmd := range cmds {
		if cmd.ID != "" {
			ids[cmd.ID] = struct{}{}
		}
	}
	for name := range c.looks {
		ids[blipID(name)] = struct{}{}
	}
	for _, reg := range c.regions {
		ids[regionID(reg.Index)] = struct{}{}
	}
	ids[idLegend] = struct{}{}
	ids[idTooltip] = struct{}{}
	ids[idAxisX] = struct{}{}
	ids[idAxisY] = struct{}{}
	for i := range radar.NumRings {
		ids[ringID(i)] = struct{}{}
		ids[ringLabelID(i)] = struct{}{}
	}
	c.staleIDs = slices.Sorted(maps.Keys(ids))

	clear(c.looks)
	c.regions = nil
	c.zoomDecor = -1
	c.rendered = false
}

// validate checks every item, dropping invalid ones when configured to.
func (c *Chart) validate(items []radar.Item) ([]radar.Item, int, error) {
	out := make([]radar.Item, 0, len(items))
	dropped := 0
	for _, it := range items {
		if err := c.cfg.ValidateItem(it); err != nil {
			if !c.dropInvalid {
				return nil, 0, err
			}
			c.logger.Warn("dropping item", "name", it.Name, "err", err)
			observability.Chart().OnItemDropped(it.Name, err)
			dropped++
			continue
		}
		out = append(out, it)
	}
	return out, dropped, nil
}

// startMove animates name from its current position to target. The path is
// written unclipped; the final frame stores target through the segment.
func (c *Chart) startMove(name string, target geom.Point) {
	c.cancelMove(name)
	b, ok := c.engine.Blip(name)
	if !ok {
		return
	}
	from := b.Position
	m := &move{target: target}
	c.moves[name] = m
	m.t = schedule.Start(c.sched, c.moveDur, schedule.EaseCubicInOut, func(k float64) {
		if c.moves[name] != m {
			return
		}
		var (
			p  geom.Point
			ok bool
		)
		if k >= 1 {
			p, ok = c.engine.SetPosition(name, target)
		} else {
			p = geom.LerpPoint(from, target, k)
			ok = c.engine.MoveTo(name, p)
		}
		if ok {
			c.apply(scene.Translate(blipID(name), p))
		}
	})
	m.t.Then(func() {
		if c.moves[name] == m {
			delete(c.moves, name)
		}
	})
}

// cancelMove stops the move of name, if any, where it is.
func (c *Chart) cancelMove(name string) {
	m, ok := c.moves[name]
	if !ok {
		return
	}
	delete(c.moves, name)
	m.t.Interrupt()
}

// groupMoves waits for every move in flight and restarts the relaxer once
// the last one completes. Only the most recent group may restart it.
func (c *Chart) groupMoves() {
	c.moveGen++
	gen := c.moveGen
	ts := make([]*schedule.Transition, 0, len(c.moves))
	for _, m := range c.moves {
		ts = append(ts, m.t)
	}
	schedule.NewGroup(ts...).Then(func() { c.movesSettled(gen) })
}

func (c *Chart) movesSettled(gen int) {
	if gen != c.moveGen || c.closed || len(c.moves) > 0 {
		return
	}
	if c.inRender {
		c.kickRelax = true
		return
	}
	if c.engine.Len() > 0 {
		c.relaxer.Start(c.bodies())
	}
}

// zoomTo animates the displayed viewport towards target.
func (c *Chart) zoomTo(target geom.Rect) {
	if c.zoom != nil {
		c.zoom.Interrupt()
	}
	from := c.shown
	t := schedule.Start(c.sched, c.zoomDur, schedule.EaseCubicInOut, func(k float64) {
		c.shown = from.Lerp(target, k)
		if k >= 1 {
			c.shown = target
		}
		c.apply(scene.SetViewport(c.shown))
	})
	c.zoom = t
	t.Then(func() {
		if c.zoom == t {
			c.zoom = nil
		}
	})
}

// regionCommands shows hover regions in full view on pointer devices and
// removes them otherwise.
func (c *Chart) regionCommands(vs radar.ViewState) []scene.Command {
	want := !vs.Zoomed() && vs.IsNotMobile
	var cmds []scene.Command
	switch {
	case want && c.regions == nil:
		regions := view.HoverRegions(c.cfg, view.DefaultAxisBand)
		c.regions = regions[:]
		for _, reg := range c.regions {
			cmds = append(cmds, scene.Create(regionID(reg.Index), scene.LayerRegions, regionShape(reg), geom.Point{}, view.OpacityHidden))
		}
	case want:
		for i, o := range view.RegionOpacities(c.hoveredRegion) {
			cmds = append(cmds, scene.SetOpacity(regionID(i), o))
		}
	case c.regions != nil:
		for _, reg := range c.regions {
			cmds = append(cmds, scene.Remove(regionID(reg.Index)))
		}
		c.regions = nil
		c.hoveredRegion = -1
	}
	return cmds
}

// decorCommands swaps the zoomed-view legend and ring labels.
func (c *Chart) decorCommands(vs radar.ViewState) []scene.Command {
	want := vs.ZoomedQuadrant()
	if want == c.zoomDecor {
		return nil
	}
	var cmds []scene.Command
	if c.zoomDecor >= 0 {
		cmds = append(cmds, scene.Remove(idLegend))
		for i := range radar.NumRings {
			cmds = append(cmds, scene.Remove(ringLabelID(i)))
		}
	}
	c.zoomDecor = want
	if want < 0 {
		return cmds
	}

	lg := view.Legend(c.cfg, want)
	cmds = append(cmds, scene.Create(idLegend, scene.LayerLegend,
		legendShape(lg, c.cfg.Quadrants[want].Color), lg.Origin, 1))
	for _, l := range view.RingLabels(c.cfg, want) {
		cmds = append(cmds, scene.Create(ringLabelID(l.Ring), scene.LayerLabels,
			ringLabelShape(l, c.cfg.Rings[l.Ring].Color), l.Position, 1))
	}
	return cmds
}

func viewName(vs radar.ViewState) string {
	if !vs.Zoomed() {
		return "full"
	}
	return fmt.Sprintf("quadrant-%d", *vs.Quadrant)
}
