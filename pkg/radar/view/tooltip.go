package view

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
)

// TextMeasurer sizes a single line of text.
type TextMeasurer interface {
	Measure(text string, fontSize float64) (w, h float64)
}

// Estimate measures text with an average character width heuristic.
type Estimate struct{}

const (
	charWidthRatio  = 0.55
	lineHeightRatio = 1.15
)

// Measure implements [TextMeasurer].
func (Estimate) Measure(text string, fontSize float64) (float64, float64) {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0, 0
	}
	return float64(n) * fontSize * charWidthRatio, fontSize * lineHeightRatio
}

// Headless reports every text as zero-size, for contexts without text
// measurement. Tooltips then collapse to a zero-size box.
type Headless struct{}

// Measure implements [TextMeasurer].
func (Headless) Measure(string, float64) (float64, float64) { return 0, 0 }

// Tooltip geometry, in chart units.
const (
	TooltipFontSize  = 10
	TooltipArrowPath = "M 0,0 10,0 5,8 z"

	tooltipPadX   = 5
	tooltipPadY   = 4
	tooltipLift   = 16
	tooltipArrowW = 10
	tooltipBias   = 10
)

// Anchor tells how a tooltip box is placed relative to its target.
type Anchor string

const (
	AnchorCenter Anchor = "center"
	AnchorLeft   Anchor = "left"  // box extends to the left of the target
	AnchorRight  Anchor = "right" // box extends to the right of the target
)

// TooltipLayout is a placed tooltip bubble. All coordinates are absolute
// chart coordinates.
type TooltipLayout struct {
	Text   string     `json:"text"`
	Target geom.Point `json:"target"`
	Box    geom.Rect  `json:"box"`
	TextAt geom.Point `json:"text_at"`
	Arrow  geom.Point `json:"arrow"`
	Anchor Anchor     `json:"anchor"`
}

// Empty reports whether the tooltip box has no area.
func (t TooltipLayout) Empty() bool { return t.Box.W == 0 && t.Box.H == 0 }

// Tooltip places a bubble showing text above point p.
//
// Targets in the outer half of the chart get a centered box. Targets in the
// inner half, close to the axes, get a box extending away from the center,
// so that in zoomed view it does not run past the axis-side edge. The box
// is finally clamped into viewport.
func Tooltip(cfg radar.Config, viewport geom.Rect, p geom.Point, text string, m TextMeasurer) TooltipLayout {
	if m == nil {
		m = Headless{}
	}
	w, h := m.Measure(text, TooltipFontSize)
	out := TooltipLayout{
		Text:   text,
		Target: p,
		Arrow:  geom.Point{X: p.X - tooltipArrowW/2, Y: p.Y - tooltipLift + 3},
		Anchor: AnchorCenter,
	}
	if w == 0 && h == 0 {
		out.Box = geom.Rect{X: p.X, Y: p.Y - tooltipLift}
		out.TextAt = out.Box.Min()
		return out
	}

	boxW := w + 2*tooltipPadX
	boxH := h + tooltipPadY
	left := p.X - w/2 - tooltipPadX

	if math.Abs(p.X) < cfg.OuterRadius()/2 {
		if p.X >= 0 {
			left = p.X - tooltipBias
			out.Anchor = AnchorRight
		} else {
			left = p.X + tooltipBias - boxW
			out.Anchor = AnchorLeft
		}
	}
	top := p.Y - tooltipLift - h

	left = geom.ClampInterval(left, viewport.X, math.Max(viewport.X, viewport.X+viewport.W-boxW))
	top = geom.ClampInterval(top, viewport.Y, math.Max(viewport.Y, viewport.Y+viewport.H-boxH))

	out.Box = geom.Rect{X: left, Y: top, W: boxW, H: boxH}
	out.TextAt = geom.Point{X: left + tooltipPadX, Y: top + h}
	return out
}
