package view

import (
	"math"

	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
)

// ZoomMargin is the extra room a zoomed viewport keeps on the axis side.
const ZoomMargin = 20

// Region opacities.
const (
	OpacityHidden = 0.0
	OpacityDimmed = 0.3
	OpacityActive = 1.0
)

// DefaultAxisBand is the width of the axis exclusion band between regions.
const DefaultAxisBand = 4.0

// Viewport returns the visible window for vs.
func Viewport(cfg radar.Config, vs radar.ViewState) geom.Rect {
	r := cfg.OuterRadius()
	if !vs.Zoomed() {
		return geom.Rect{X: -r, Y: -r, W: 2 * r, H: 2 * r}
	}
	q := cfg.Quadrants[*vs.Quadrant]
	side := r + ZoomMargin
	return geom.Rect{
		X: math.Max(0, q.FactorX*r) - side,
		Y: math.Max(0, q.FactorY*r) - side,
		W: side,
		H: side,
	}
}

// Region is a full-view hover target.
type Region struct {
	Index    int           `json:"index"`
	Quadrant int           `json:"quadrant"`
	Route    string        `json:"route"`
	Name     string        `json:"name"`
	Color    string        `json:"color"`
	Points   [4]geom.Point `json:"points"`
}

// Bounds returns the region's bounding rectangle.
func (r Region) Bounds() geom.Rect {
	minX := math.Min(r.Points[0].X, r.Points[2].X)
	minY := math.Min(r.Points[0].Y, r.Points[2].Y)
	return geom.Rect{
		X: minX,
		Y: minY,
		W: math.Abs(r.Points[2].X - r.Points[0].X),
		H: math.Abs(r.Points[2].Y - r.Points[0].Y),
	}
}

// HoverRegions returns the four hover regions. band is the width of the
// axis exclusion band; pass DefaultAxisBand unless the axis stroke changes.
func HoverRegions(cfg radar.Config, band float64) [radar.NumQuadrants]Region {
	r := cfg.OuterRadius()
	h := band / 2
	var out [radar.NumQuadrants]Region
	for i := range out {
		qi := radar.RegionQuadrant(i)
		q := cfg.Quadrants[qi]
		fx, fy := q.FactorX, q.FactorY
		out[i] = Region{
			Index:    i,
			Quadrant: qi,
			Route:    q.Route,
			Name:     q.Name,
			Color:    q.Color,
			Points: [4]geom.Point{
				{X: fx * h, Y: fy * h},
				{X: fx * r, Y: fy * h},
				{X: fx * r, Y: fy * r},
				{X: fx * h, Y: fy * r},
			},
		}
	}
	return out
}

// RegionAt returns the index of the region containing p, or -1.
func RegionAt(regions [radar.NumQuadrants]Region, p geom.Point) int {
	for _, reg := range regions {
		if reg.Bounds().Contains(p) {
			return reg.Index
		}
	}
	return -1
}

// RegionOpacities returns the opacity of every region while region hovered
// is under the pointer. Pass -1 when no region is hovered.
func RegionOpacities(hovered int) [radar.NumQuadrants]float64 {
	var out [radar.NumQuadrants]float64
	if hovered < 0 || hovered >= radar.NumQuadrants {
		return out
	}
	for i := range out {
		out[i] = OpacityDimmed
	}
	out[hovered] = OpacityActive
	return out
}

// LegendRow is one glyph and label pair.
type LegendRow struct {
	Symbol radar.Symbol `json:"symbol"`
	Label  string       `json:"label"`
	Glyph  geom.Point   `json:"glyph"`
	Text   geom.Point   `json:"text"`
}

// LegendLayout places the zoomed-view legend.
type LegendLayout struct {
	Origin geom.Point   `json:"origin"`
	Rows   [2]LegendRow `json:"rows"`
}

const (
	legendWidth   = 110
	legendInset   = 10
	legendRowStep = 18
	legendTextGap = 16
)

// LegendPosition returns the top-left corner of the legend for zoomed
// quadrant q. The legend sits in the outer corner of the quadrant, beyond
// the outermost ring, so it never overlaps the axis or any blip.
func LegendPosition(cfg radar.Config, q int) geom.Point {
	r := cfg.OuterRadius()
	quad := cfg.Quadrants[q]
	x := -r + legendInset
	if quad.FactorX > 0 {
		x = r - legendWidth
	}
	y := -r + legendInset
	if quad.FactorY > 0 {
		y = r - legendInset - 2*legendRowStep
	}
	return geom.Point{X: x, Y: y}
}

// Legend lays out the two legend rows for zoomed quadrant q.
func Legend(cfg radar.Config, q int) LegendLayout {
	o := LegendPosition(cfg, q)
	row := func(i int, s radar.Symbol, label string) LegendRow {
		glyph := o.Add(geom.Point{X: 0, Y: float64(i)*legendRowStep + legendRowStep/2})
		return LegendRow{
			Symbol: s,
			Label:  label,
			Glyph:  glyph,
			Text:   glyph.Add(geom.Point{X: legendTextGap, Y: 4}),
		}
	}
	return LegendLayout{
		Origin: o,
		Rows: [2]LegendRow{
			row(0, radar.SymbolTriangleUp, cfg.Legend.NewOrMoved),
			row(1, radar.SymbolCircle, cfg.Legend.NoChange),
		},
	}
}

// RingLabel places a ring name in zoomed view.
type RingLabel struct {
	Ring     int        `json:"ring"`
	Name     string     `json:"name"`
	Position geom.Point `json:"position"`
}

// RingLabels places one label per ring for zoomed quadrant q, centered on
// the ring band along the horizontal axis, inside the zoom margin.
func RingLabels(cfg radar.Config, q int) []RingLabel {
	quad := cfg.Quadrants[q]
	out := make([]RingLabel, 0, radar.NumRings)
	for i, ring := range cfg.Rings {
		mid := (cfg.RingInner(i) + ring.Radius) / 2
		out = append(out, RingLabel{
			Ring:     i,
			Name:     ring.Name,
			Position: geom.Point{X: quad.FactorX * mid, Y: -quad.FactorY * ZoomMargin / 2},
		})
	}
	return out
}
