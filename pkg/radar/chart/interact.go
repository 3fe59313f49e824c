package chart

import (
	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/observability"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/radar/view"
)

// Hover shows the tooltip of the named blip and reports it to the host as
// highlighted.
func (c *Chart) Hover(name string) error {
	return c.interact("hover", func() error {
		b, ok := c.engine.Blip(name)
		if !ok {
			return errors.New(errors.ErrCodeItemNotFound, "no blip named %q", name)
		}
		c.hovered = name
		c.showTooltip(b.Position, name)
		c.host.SetHighlighted(name)
		c.emit(Event{Kind: EventItemHighlighted, Item: name, Quadrant: b.Item.Quadrant})
		return nil
	})
}

// Unhover hides the tooltip and clears the host's highlight.
func (c *Chart) Unhover() error {
	return c.interact("unhover", func() error {
		c.hovered = ""
		c.apply(c.hideTooltip()...)
		c.host.SetHighlighted("")
		c.emit(Event{Kind: EventItemHighlighted, Quadrant: -1})
		return nil
	})
}

// Click selects the named blip. The host receives the item's position id.
func (c *Chart) Click(name string) error {
	return c.interact("click", func() error {
		b, ok := c.engine.Blip(name)
		if !ok {
			return errors.New(errors.ErrCodeItemNotFound, "no blip named %q", name)
		}
		route := c.cfg.Quadrants[b.Item.Quadrant].Route
		token := PositionID(route, name)
		c.host.SetSelected(token)
		c.emit(Event{Kind: EventItemSelected, Item: name, Token: token, Quadrant: b.Item.Quadrant, Route: route})
		return nil
	})
}

// Highlight shows the tooltip of the named blip on behalf of the host, for
// instance while the pointer is over the item in a list. Nothing is echoed
// back. An empty name hides the tooltip.
func (c *Chart) Highlight(name string) error {
	return c.interact("highlight", func() error {
		if name == "" {
			c.hovered = ""
			c.apply(c.hideTooltip()...)
			return nil
		}
		b, ok := c.engine.Blip(name)
		if !ok {
			return errors.New(errors.ErrCodeItemNotFound, "no blip named %q", name)
		}
		c.hovered = name
		c.showTooltip(b.Position, name)
		return nil
	})
}

// HoverQuadrant highlights hover region i and dims the other three.
// Regions exist only in full view on pointer devices.
func (c *Chart) HoverQuadrant(i int) error {
	return c.interact("hover-quadrant", func() error {
		reg, err := c.region(i)
		if err != nil {
			return err
		}
		c.hoveredRegion = i
		cmds := c.regionOpacityCommands()
		q := c.cfg.Quadrants[reg.Quadrant]
		text := q.Tooltip
		if text == "" {
			text = q.Name
		}
		cmds = append(cmds, c.tooltipCommands(regionAnchor(reg), text)...)
		c.apply(cmds...)
		return nil
	})
}

// LeaveQuadrant restores all hover regions to transparent.
func (c *Chart) LeaveQuadrant() error {
	return c.interact("leave-quadrant", func() error {
		if c.regions == nil {
			return nil
		}
		c.hoveredRegion = -1
		cmds := c.regionOpacityCommands()
		if c.hovered == "" {
			cmds = append(cmds, c.hideTooltip()...)
		}
		c.apply(cmds...)
		return nil
	})
}

// ClickQuadrant asks the host to navigate to the quadrant behind hover
// region i.
func (c *Chart) ClickQuadrant(i int) error {
	return c.interact("click-quadrant", func() error {
		reg, err := c.region(i)
		if err != nil {
			return err
		}
		c.host.Redirect(reg.Route)
		c.emit(Event{Kind: EventQuadrantActivated, Quadrant: reg.Quadrant, Route: reg.Route})
		return nil
	})
}

// HoverRing shows the tooltip of ring r next to its label. Ring labels
// exist only in zoomed view.
func (c *Chart) HoverRing(r int) error {
	return c.interact("hover-ring", func() error {
		if c.zoomDecor < 0 {
			return errors.New(errors.ErrCodeInvalidView, "ring labels are only shown in zoomed view")
		}
		if r < 0 || r >= radar.NumRings {
			return errors.New(errors.ErrCodeInvalidRing, "ring %d out of range [0, %d]", r, radar.NumRings-1)
		}
		ring := c.cfg.Rings[r]
		text := ring.Tooltip
		if text == "" {
			text = ring.Name
		}
		l := view.RingLabels(c.cfg, c.zoomDecor)[r]
		c.apply(c.tooltipCommands(l.Position, text)...)
		return nil
	})
}

// LeaveRing hides a ring tooltip.
func (c *Chart) LeaveRing() error {
	return c.interact("leave-ring", func() error {
		if c.hovered == "" {
			c.apply(c.hideTooltip()...)
		}
		return nil
	})
}

// QuadrantAt returns the hover region under p, or -1.
func (c *Chart) QuadrantAt(p geom.Point) int {
	i := -1
	c.sched.Do(func() {
		for _, reg := range c.regions {
			if reg.Bounds().Contains(p) {
				i = reg.Index
				return
			}
		}
	})
	return i
}

// Tooltip returns the tooltip currently shown, if any.
func (c *Chart) Tooltip() (view.TooltipLayout, bool) {
	var (
		t     view.TooltipLayout
		shown bool
	)
	c.sched.Do(func() { t, shown = c.tooltip, c.tooltipShown })
	return t, shown
}

// interact runs fn on the scheduler after the closed check.
func (c *Chart) interact(kind string, fn func() error) error {
	var err error
	c.sched.Do(func() {
		if c.closed {
			err = errors.New(errors.ErrCodeClosed, "chart is closed")
			return
		}
		observability.Chart().OnInteraction(kind)
		err = fn()
	})
	return err
}

func (c *Chart) region(i int) (view.Region, error) {
	if c.regions == nil {
		return view.Region{}, errors.New(errors.ErrCodeInvalidView,
			"hover regions are only shown in full view on pointer devices")
	}
	if i < 0 || i >= len(c.regions) {
		return view.Region{}, errors.New(errors.ErrCodeInvalidQuadrant,
			"region %d out of range [0, %d]", i, len(c.regions)-1)
	}
	return c.regions[i], nil
}

func (c *Chart) regionOpacityCommands() []scene.Command {
	cmds := make([]scene.Command, 0, len(c.regions))
	for i, o := range view.RegionOpacities(c.hoveredRegion) {
		if i < len(c.regions) {
			cmds = append(cmds, scene.SetOpacity(regionID(i), o))
		}
	}
	return cmds
}

// regionAnchor is the point a quadrant tooltip points at, the region center.
func regionAnchor(reg view.Region) geom.Point {
	return geom.LerpPoint(reg.Points[0], reg.Points[2], 0.5)
}

func (c *Chart) showTooltip(p geom.Point, text string) {
	c.apply(c.tooltipCommands(p, text)...)
}

func (c *Chart) tooltipCommands(p geom.Point, text string) []scene.Command {
	c.tooltip = view.Tooltip(c.cfg, c.viewport, p, text, c.measurer)
	c.tooltipShown = true
	return []scene.Command{
		scene.Update(idTooltip, tooltipShape(c.tooltip)),
		scene.SetOpacity(idTooltip, 1),
	}
}

func (c *Chart) hideTooltip() []scene.Command {
	if !c.tooltipShown {
		return nil
	}
	c.tooltip = view.TooltipLayout{}
	c.tooltipShown = false
	return []scene.Command{
		scene.Update(idTooltip, tooltipShape(view.TooltipLayout{})),
		scene.SetOpacity(idTooltip, 0),
	}
}
