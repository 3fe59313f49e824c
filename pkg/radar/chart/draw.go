package chart

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/layout"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/radar/view"
)

// Node ids.
const (
	idTooltip = "tooltip"
	idLegend  = "legend"
	idAxisX   = "grid:axis-x"
	idAxisY   = "grid:axis-y"
)

func blipID(name string) string { return "blip:" + name }
func ringID(i int) string       { return fmt.Sprintf("grid:ring:%d", i) }
func regionID(i int) string     { return fmt.Sprintf("region:%d", i) }
func ringLabelID(i int) string  { return fmt.Sprintf("ring-label:%d", i) }

const (
	labelFill  = "#fff"
	bubbleFill = "#333"
)

// blipLook is the part of a blip that determines its shape; a changed look
// needs an update command.
type blipLook struct {
	symbol radar.Symbol
	color  string
	label  string
	link   string
}

func lookOf(b layout.Blip) blipLook {
	return blipLook{symbol: b.Symbol, color: b.Color, label: b.Label, link: b.Item.Link}
}

// blipShape draws a blip centered on its local origin.
func blipShape(b layout.Blip) scene.Shape {
	glyph := scene.Shape{Fill: b.Color}
	switch b.Symbol {
	case radar.SymbolTriangleUp:
		glyph.Kind, glyph.D = scene.KindPath, radar.TriangleUpPath
	case radar.SymbolTriangleDown:
		glyph.Kind, glyph.D = scene.KindPath, radar.TriangleDownPath
	default:
		glyph.Kind, glyph.R = scene.KindCircle, radar.CircleRadius
	}

	g := scene.Shape{
		Kind:     scene.KindGroup,
		Class:    "blip",
		Children: []scene.Shape{glyph},
		Data: map[string]string{
			"name":     b.Item.Name,
			"quadrant": strconv.Itoa(b.Item.Quadrant),
			"ring":     strconv.Itoa(b.Item.Ring),
			"symbol":   b.Symbol.String(),
		},
	}
	if b.Item.Link != "" {
		g.Data["link"] = b.Item.Link
	}
	if b.Label != "" {
		size := 9.0
		if len(b.Label) > 2 {
			size = 8
		}
		g.Children = append(g.Children, scene.Shape{
			Kind:     scene.KindText,
			Text:     b.Label,
			Y:        3,
			Anchor:   "middle",
			Fill:     labelFill,
			FontSize: size,
		})
	}
	return g
}

// gridCommands draws ring discs, outermost first, and both axes.
func gridCommands(cfg radar.Config) []scene.Command {
	var cmds []scene.Command
	for i := radar.NumRings - 1; i >= 0; i-- {
		ring := cfg.Rings[i]
		cmds = append(cmds, scene.Create(ringID(i), scene.LayerGrid, scene.Shape{
			Kind:        scene.KindCircle,
			Class:       "ring",
			R:           ring.Radius,
			Fill:        ring.BackgroundColor,
			StrokeWidth: 1,
			Data:        map[string]string{"ring": strconv.Itoa(i), "name": ring.Name},
		}, geom.Point{}, 1))
	}
	r := cfg.OuterRadius()
	axis := func(id string, a, b geom.Point) scene.Command {
		return scene.Create(id, scene.LayerGrid, scene.Shape{
			Kind:        scene.KindLine,
			Class:       "axis",
			Points:      []geom.Point{a, b},
			Stroke:      cfg.Colors.Grid,
			StrokeWidth: 1,
		}, geom.Point{}, 1)
	}
	cmds = append(cmds,
		axis(idAxisY, geom.Pt(0, -r), geom.Pt(0, r)),
		axis(idAxisX, geom.Pt(-r, 0), geom.Pt(r, 0)),
	)
	return cmds
}

func regionShape(reg view.Region) scene.Shape {
	return scene.Shape{
		Kind:   scene.KindPolygon,
		Class:  "region",
		Fill:   reg.Color,
		Points: reg.Points[:],
		Data: map[string]string{
			"index":    strconv.Itoa(reg.Index),
			"quadrant": strconv.Itoa(reg.Quadrant),
			"route":    reg.Route,
			"name":     reg.Name,
		},
	}
}

// legendShape draws the legend in coordinates local to its origin.
func legendShape(lg view.LegendLayout, color string) scene.Shape {
	g := scene.Shape{Kind: scene.KindGroup, Class: "legend"}
	for _, row := range lg.Rows {
		glyph := row.Glyph.Sub(lg.Origin)
		text := row.Text.Sub(lg.Origin)
		if row.Symbol == radar.SymbolCircle {
			g.Children = append(g.Children, scene.Shape{
				Kind: scene.KindCircle, R: radar.CircleRadius * 0.6, X: glyph.X, Y: glyph.Y, Fill: color,
			})
		} else {
			g.Children = append(g.Children, scene.Shape{
				Kind: scene.KindPath, D: radar.TriangleUpPath, X: glyph.X, Y: glyph.Y, Fill: color,
			})
		}
		g.Children = append(g.Children, scene.Shape{
			Kind: scene.KindText, Text: row.Label, X: text.X, Y: text.Y, FontSize: 10,
		})
	}
	return g
}

func ringLabelShape(l view.RingLabel, color string) scene.Shape {
	return scene.Shape{
		Kind:     scene.KindText,
		Class:    "ring-label",
		Text:     l.Name,
		Anchor:   "middle",
		Fill:     color,
		FontSize: 12,
		Data:     map[string]string{"ring": strconv.Itoa(l.Ring)},
	}
}

// tooltipShape draws the bubble in absolute coordinates; the tooltip node
// itself stays untranslated.
func tooltipShape(t view.TooltipLayout) scene.Shape {
	g := scene.Shape{Kind: scene.KindGroup, Class: "bubble"}
	if t.Empty() {
		return g
	}
	g.Children = []scene.Shape{
		{Kind: scene.KindRect, X: t.Box.X, Y: t.Box.Y, W: t.Box.W, H: t.Box.H, Rx: 4, Fill: bubbleFill},
		{Kind: scene.KindText, X: t.TextAt.X, Y: t.TextAt.Y, Text: t.Text, FontSize: view.TooltipFontSize, Fill: labelFill},
		{Kind: scene.KindPath, X: t.Arrow.X, Y: t.Arrow.Y, D: view.TooltipArrowPath, Fill: bubbleFill},
	}
	return g
}
