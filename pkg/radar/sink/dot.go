package sink

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar/scene"
)

// ToDOT converts the blips and ring names of snap to a Graphviz graph
// whose nodes are pinned at their chart positions, one chart unit per
// point. Graphviz's y axis points up, so y is negated.
func ToDOT(snap scene.Snapshot) string {
	var buf bytes.Buffer
	buf.WriteString("graph radar {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=nodesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.25, fontsize=8, fontcolor=white, penwidth=0];\n")
	buf.WriteString("\n")

	for _, n := range snap.Layer(scene.LayerGrid) {
		if n.Shape.Kind != scene.KindCircle || n.Shape.Data["name"] == "" {
			continue
		}
		fmt.Fprintf(&buf, "  %q [shape=plaintext, style=\"\", fontcolor=\"#666666\", fontsize=10, label=%q, pos=%q];\n",
			n.ID, n.Shape.Data["name"], pos(n.Transform.X, n.Transform.Y-n.Shape.R+8))
	}

	for _, n := range snap.Layer(scene.LayerBlips) {
		name := n.Shape.Data["name"]
		attrs := []string{
			fmt.Sprintf("label=%q", blipLabel(n.Shape)),
			fmt.Sprintf("tooltip=%q", name),
			fmt.Sprintf("pos=%q", pos(n.Transform.X, n.Transform.Y)),
		}
		if fill := glyphFill(n.Shape); fill != "" {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
		if n.Shape.Data["symbol"] != "circle" {
			attrs = append(attrs, "shape=triangle")
			if n.Shape.Data["symbol"] == "triangle-down" {
				attrs = append(attrs, "orientation=180")
			}
		}
		if link := n.Shape.Data["link"]; link != "" {
			attrs = append(attrs, fmt.Sprintf("URL=%q", link))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func pos(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64) + "," + strconv.FormatFloat(-y, 'f', 2, 64) + "!"
}

// blipLabel returns the numeric label drawn on a blip, if any.
func blipLabel(s scene.Shape) string {
	for _, c := range s.Children {
		if c.Kind == scene.KindText {
			return c.Text
		}
	}
	return ""
}

func glyphFill(s scene.Shape) string {
	if len(s.Children) > 0 {
		return s.Children[0].Fill
	}
	return s.Fill
}

// RenderGraphviz lays out a DOT graph with neato and renders it. format is
// one of "svg", "png" or "jpg".
func RenderGraphviz(ctx context.Context, dot string, format string) ([]byte, error) {
	var f graphviz.Format
	switch format {
	case "svg":
		f = graphviz.SVG
	case "png":
		f = graphviz.PNG
	case "jpg", "jpeg":
		f = graphviz.JPG
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported graphviz format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, f, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
