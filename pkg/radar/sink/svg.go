package sink

import (
	"bytes"
	"fmt"
	"html"
	"maps"
	"math"
	"slices"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/scene"
)

const interactionCSS = `
    .blip { cursor: pointer; transition: transform 0.2s ease; }
    .blip:hover > :first-child { stroke: #333; stroke-width: 2; }
    .region { cursor: pointer; transition: opacity 0.2s ease; }
    .radar.hovering .region { opacity: 0.3; }
    .radar.hovering .region.active { opacity: 1; }
    .bubble { pointer-events: none; }`

const interactionJS = `
    const root = document.querySelector('.radar');
    document.querySelectorAll('.region').forEach(el => {
      el.addEventListener('mouseenter', () => { root.classList.add('hovering'); el.classList.add('active'); });
      el.addEventListener('mouseleave', () => { root.classList.remove('hovering'); el.classList.remove('active'); });
      el.addEventListener('click', () => { window.location.hash = el.dataset.route; });
    });
    document.querySelectorAll('.blip').forEach(el => {
      if (!el.dataset.link) return;
      el.addEventListener('click', () => window.open(el.dataset.link, '_blank'));
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	interactive bool
	background  string
	width       int
	height      int
}

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithInteraction embeds hover styling and a small script. Blip titles are
// emitted as native tooltips.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithBackground fills the viewport with color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithSize sets the output size in pixels. By default it matches the
// viewport.
func WithSize(w, h int) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// RenderSVG draws snap. Nodes with zero opacity are kept, so that an
// interactive document can reveal them.
func RenderSVG(snap scene.Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, o := range opts {
		o(&r)
	}

	vb := viewBox(snap.Viewport)
	w, h := r.width, r.height
	if w <= 0 || h <= 0 {
		w, h = vb[2], vb[3]
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(w, h, vb[0], vb[1], vb[2], vb[3])
	if r.title != "" {
		canvas.Title(r.title)
	}
	if r.background != "" {
		canvas.Rect(vb[0], vb[1], vb[2], vb[3], attr("fill", r.background))
	}

	canvas.Group(attr("class", "radar"))
	for _, n := range snap.Nodes {
		if r.interactive && n.Layer == scene.LayerTooltip {
			continue
		}
		drawNode(canvas, n, r.interactive)
	}
	canvas.Gend()

	if r.interactive {
		canvas.Style("text/css", interactionCSS+"\n  ")
		canvas.Script("text/javascript", interactionJS+"\n  ")
	}
	canvas.End()
	return buf.Bytes()
}

// viewBox rounds the viewport outwards to whole units.
func viewBox(r geom.Rect) [4]int {
	if r.W <= 0 || r.H <= 0 {
		return [4]int{0, 0, 1, 1}
	}
	x0, y0 := math.Floor(r.X), math.Floor(r.Y)
	x1, y1 := math.Ceil(r.X+r.W), math.Ceil(r.Y+r.H)
	return [4]int{int(x0), int(y0), int(x1 - x0), int(y1 - y0)}
}

func drawNode(canvas *svg.SVG, n scene.Node, interactive bool) {
	attrs := []string{attr("id", n.ID)}
	if n.Shape.Class != "" {
		attrs = append(attrs, attr("class", n.Shape.Class))
	}
	if n.Transform != (geom.Point{}) {
		attrs = append(attrs, attr("transform", translate(n.Transform)))
	}
	if n.Opacity != 1 {
		attrs = append(attrs, attr("opacity", num(n.Opacity)))
	}
	attrs = append(attrs, dataAttrs(n.Shape.Data)...)

	canvas.Group(attrs...)
	if interactive && n.Layer == scene.LayerBlips {
		if name := n.Shape.Data["name"]; name != "" {
			canvas.Title(name)
		}
	}
	if n.Shape.Kind == scene.KindGroup {
		for _, c := range n.Shape.Children {
			drawShape(canvas, c)
		}
	} else {
		drawShape(canvas, bare(n.Shape))
	}
	canvas.Gend()
}

func drawShape(canvas *svg.SVG, s scene.Shape) {
	style := paint(s)
	switch s.Kind {
	case scene.KindCircle:
		canvas.Circle(round(s.X), round(s.Y), round(s.R), style...)
	case scene.KindPath:
		if s.X != 0 || s.Y != 0 {
			style = append(style, attr("transform", translate(geom.Pt(s.X, s.Y))))
		}
		canvas.Path(s.D, style...)
	case scene.KindRect:
		if s.Rx > 0 {
			canvas.Roundrect(round(s.X), round(s.Y), round(s.W), round(s.H), round(s.Rx), round(s.Rx), style...)
		} else {
			canvas.Rect(round(s.X), round(s.Y), round(s.W), round(s.H), style...)
		}
	case scene.KindPolygon:
		xs := make([]int, len(s.Points))
		ys := make([]int, len(s.Points))
		for i, p := range s.Points {
			xs[i], ys[i] = round(p.X), round(p.Y)
		}
		canvas.Polygon(xs, ys, style...)
	case scene.KindLine:
		if len(s.Points) == 2 {
			a, b := s.Points[0], s.Points[1]
			canvas.Line(round(a.X), round(a.Y), round(b.X), round(b.Y), style...)
		}
	case scene.KindText:
		if s.Anchor != "" {
			style = append(style, attr("text-anchor", s.Anchor))
		}
		if s.FontSize > 0 {
			style = append(style, attr("font-size", num(s.FontSize)))
		}
		canvas.Text(round(s.X), round(s.Y), s.Text, style...)
	case scene.KindGroup:
		canvas.Group(attr("class", s.Class))
		for _, c := range s.Children {
			drawShape(canvas, c)
		}
		canvas.Gend()
	}
}

// paint returns the presentation attributes shared by every kind.
func paint(s scene.Shape) []string {
	var out []string
	if s.Kind != scene.KindGroup && s.Class != "" {
		out = append(out, attr("class", s.Class))
	}
	switch {
	case s.Fill != "":
		out = append(out, attr("fill", s.Fill))
	case s.Kind == scene.KindLine || s.Kind == scene.KindPolygon && s.Stroke != "":
		out = append(out, attr("fill", "none"))
	}
	if s.Stroke != "" {
		out = append(out, attr("stroke", s.Stroke))
	}
	if s.StrokeWidth > 0 {
		out = append(out, attr("stroke-width", num(s.StrokeWidth)))
	}
	return out
}

// bare strips what the enclosing node group already carries.
func bare(s scene.Shape) scene.Shape {
	s.Class = ""
	s.Data = nil
	return s
}

func dataAttrs(data map[string]string) []string {
	out := make([]string, 0, len(data))
	for _, k := range slices.Sorted(maps.Keys(data)) {
		out = append(out, attr("data-"+k, data[k]))
	}
	return out
}

// attr formats an XML attribute. svgo passes strings containing '=' through
// as attributes.
func attr(k, v string) string {
	return k + `="` + html.EscapeString(v) + `"`
}

func translate(p geom.Point) string {
	return fmt.Sprintf("translate(%s,%s)", num(p.X), num(p.Y))
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func round(f float64) int {
	return int(math.Round(f))
}
