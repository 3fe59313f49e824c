package layout

import "github.com/matzehuels/techradar/pkg/radar/geom"

// Body adapts a blip to the collision relaxer. A body outlives its blip:
// once the blip is removed or replaced the body reports itself inactive and
// ignores writes.
type Body struct {
	e *Engine
	b *Blip
}

// Name returns the blip name.
func (b Body) Name() string { return b.b.Item.Name }

// Active reports whether the body still refers to a live blip.
func (b Body) Active() bool { return b.e.blips[b.b.Item.Name] == b.b }

// Position returns the current stored position.
func (b Body) Position() geom.Point { return b.b.Position }

// Constrain clips p through the blip's segment.
func (b Body) Constrain(p geom.Point) geom.Point { return b.b.Segment.Clip(p) }

// SetPosition stores an already constrained position.
func (b Body) SetPosition(p geom.Point) {
	if b.Active() {
		b.b.Position = p
	}
}

// Bodies returns one body per blip, in insertion order.
func (e *Engine) Bodies() []Body {
	out := make([]Body, len(e.order))
	for i, name := range e.order {
		out[i] = Body{e: e, b: e.blips[name]}
	}
	return out
}
