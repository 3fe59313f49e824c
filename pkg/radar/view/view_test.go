package view

import (
	"testing"

	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
)

func TestViewport(t *testing.T) {
	cfg := radar.DefaultConfig()

	tests := []struct {
		name string
		vs   radar.ViewState
		want string
	}{
		{"full", radar.FullView(true), "-400 -400 800 800"},
		{"zoomed 0", radar.ZoomedView(0, true), "-20 -20 420 420"},
		{"zoomed 1", radar.ZoomedView(1, true), "-420 -20 420 420"},
		{"zoomed 2", radar.ZoomedView(2, true), "-420 -420 420 420"},
		{"zoomed 3", radar.ZoomedView(3, true), "-20 -420 420 420"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Viewport(cfg, tt.vs).String(); got != tt.want {
				t.Errorf("Viewport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestZoomedViewportFramesQuadrant(t *testing.T) {
	cfg := radar.DefaultConfig()
	for q := range radar.NumQuadrants {
		vp := Viewport(cfg, radar.ZoomedView(q, true))
		quad := cfg.Quadrants[q]
		corner := geom.Pt(quad.FactorX*400, quad.FactorY*400)
		if !vp.Contains(corner) || !vp.Contains(geom.Pt(0, 0)) {
			t.Errorf("Viewport(zoomed %d) = %v does not frame quadrant", q, vp)
		}
	}
}

func TestHoverRegions(t *testing.T) {
	cfg := radar.DefaultConfig()
	regions := HoverRegions(cfg, DefaultAxisBand)

	wantQuadrants := [4]int{2, 3, 0, 1}
	for i, reg := range regions {
		if reg.Index != i || reg.Quadrant != wantQuadrants[i] {
			t.Errorf("region %d = quadrant %d, want %d", i, reg.Quadrant, wantQuadrants[i])
		}
		if reg.Route != cfg.QuadrantRoute(i) {
			t.Errorf("region %d route = %q, want %q", i, reg.Route, cfg.QuadrantRoute(i))
		}
		b := reg.Bounds()
		if b.W != 398 || b.H != 398 {
			t.Errorf("region %d bounds = %v, want 398x398", i, b)
		}
		if b.Contains(geom.Pt(0, 0)) {
			t.Errorf("region %d covers the axis band", i)
		}
	}

	tests := []struct {
		p    geom.Point
		want int
	}{
		{geom.Pt(-100, -100), 0},
		{geom.Pt(100, -100), 1},
		{geom.Pt(100, 100), 2},
		{geom.Pt(-100, 100), 3},
		{geom.Pt(1, 100), -1},
		{geom.Pt(0, 0), -1},
	}
	for _, tt := range tests {
		if got := RegionAt(regions, tt.p); got != tt.want {
			t.Errorf("RegionAt(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestRegionOpacities(t *testing.T) {
	tests := []struct {
		hovered int
		want    [4]float64
	}{
		{-1, [4]float64{0, 0, 0, 0}},
		{1, [4]float64{0.3, 1, 0.3, 0.3}},
		{3, [4]float64{0.3, 0.3, 0.3, 1}},
		{7, [4]float64{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		if got := RegionOpacities(tt.hovered); got != tt.want {
			t.Errorf("RegionOpacities(%d) = %v, want %v", tt.hovered, got, tt.want)
		}
	}
}

func TestLegendStaysOutsideOuterRing(t *testing.T) {
	cfg := radar.DefaultConfig()
	est := Estimate{}
	for q := range radar.NumQuadrants {
		vp := Viewport(cfg, radar.ZoomedView(q, true))
		lg := Legend(cfg, q)
		if lg.Rows[0].Symbol != radar.SymbolTriangleUp || lg.Rows[1].Symbol != radar.SymbolCircle {
			t.Errorf("Legend(%d) symbols = %v, %v", q, lg.Rows[0].Symbol, lg.Rows[1].Symbol)
		}
		for _, row := range lg.Rows {
			w, _ := est.Measure(row.Label, 10)
			end := row.Text.Add(geom.Pt(w, 0))
			for _, p := range []geom.Point{row.Glyph, row.Text, end} {
				if !vp.Contains(p) {
					t.Errorf("Legend(%d) point %v outside viewport %v", q, p, vp)
				}
				if p.Len() <= cfg.OuterRadius() {
					t.Errorf("Legend(%d) point %v inside the outer ring", q, p)
				}
			}
		}
	}
}

func TestRingLabels(t *testing.T) {
	cfg := radar.DefaultConfig()
	labels := RingLabels(cfg, 1)
	if len(labels) != 4 {
		t.Fatalf("RingLabels() = %d labels, want 4", len(labels))
	}
	wantX := []float64{-80, -175, -265, -355}
	vp := Viewport(cfg, radar.ZoomedView(1, true))
	for i, l := range labels {
		if l.Position.X != wantX[i] {
			t.Errorf("label %d x = %g, want %g", i, l.Position.X, wantX[i])
		}
		if l.Name != cfg.Rings[i].Name {
			t.Errorf("label %d name = %q", i, l.Name)
		}
		if !vp.Contains(l.Position) {
			t.Errorf("label %d at %v outside viewport", i, l.Position)
		}
	}
}

func TestTooltip(t *testing.T) {
	cfg := radar.DefaultConfig()
	full := Viewport(cfg, radar.FullView(true))

	t.Run("centered in outer half", func(t *testing.T) {
		tip := Tooltip(cfg, full, geom.Pt(300, 100), "Kubernetes", Estimate{})
		if tip.Anchor != AnchorCenter {
			t.Errorf("Anchor = %q, want center", tip.Anchor)
		}
		if c := tip.Box.Center().X; c < 299.9 || c > 300.1 {
			t.Errorf("box center x = %g, want 300", c)
		}
		if tip.Box.Max().Y > 100 {
			t.Errorf("box bottom %g below target", tip.Box.Max().Y)
		}
	})

	t.Run("biased away from center", func(t *testing.T) {
		zoom := Viewport(cfg, radar.ZoomedView(0, true))
		tip := Tooltip(cfg, zoom, geom.Pt(20, 200), "A rather long technology name", Estimate{})
		if tip.Anchor != AnchorRight {
			t.Errorf("Anchor = %q, want right", tip.Anchor)
		}
		if tip.Box.X < zoom.X {
			t.Errorf("box left %g past viewport edge %g", tip.Box.X, zoom.X)
		}

		tip = Tooltip(cfg, full, geom.Pt(-30, 50), "Go", Estimate{})
		if tip.Anchor != AnchorLeft || tip.Box.Max().X > -30+tooltipBias+1e-9 {
			t.Errorf("left-biased box = %v, anchor %q", tip.Box, tip.Anchor)
		}
	})

	t.Run("clamped into viewport", func(t *testing.T) {
		tip := Tooltip(cfg, full, geom.Pt(395, -395), "Edge of the world", Estimate{})
		if tip.Box.X+tip.Box.W > full.X+full.W+1e-9 || tip.Box.Y < full.Y {
			t.Errorf("box %v escapes viewport %v", tip.Box, full)
		}
	})

	t.Run("headless", func(t *testing.T) {
		tip := Tooltip(cfg, full, geom.Pt(10, 10), "Go", Headless{})
		if !tip.Empty() {
			t.Errorf("headless tooltip box = %v, want zero size", tip.Box)
		}
		if tip := Tooltip(cfg, full, geom.Pt(10, 10), "Go", nil); !tip.Empty() {
			t.Errorf("nil measurer tooltip box = %v, want zero size", tip.Box)
		}
	})
}
