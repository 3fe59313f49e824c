package radar

import (
	"testing"

	"github.com/matzehuels/techradar/pkg/errors"
)

func TestDefaultConfigGeometry(t *testing.T) {
	cfg := DefaultConfig()

	want := [NumQuadrants]struct{ min, max, fx, fy float64 }{
		{0, 0.5, 1, 1},
		{0.5, 1, -1, 1},
		{-1, -0.5, -1, -1},
		{-0.5, 0, 1, -1},
	}
	for i, q := range cfg.Quadrants {
		if q.Index != i {
			t.Errorf("Quadrants[%d].Index = %d", i, q.Index)
		}
		w := want[i]
		if q.RadialMin != w.min || q.RadialMax != w.max || q.FactorX != w.fx || q.FactorY != w.fy {
			t.Errorf("Quadrants[%d] = [%g,%g] (%g,%g), want [%g,%g] (%g,%g)",
				i, q.RadialMin, q.RadialMax, q.FactorX, q.FactorY, w.min, w.max, w.fx, w.fy)
		}
	}

	radii := []float64{130, 220, 310, 400}
	for i, r := range cfg.Rings {
		if r.Radius != radii[i] {
			t.Errorf("Rings[%d].Radius = %g, want %g", i, r.Radius, radii[i])
		}
		if r.Order != i+1 {
			t.Errorf("Rings[%d].Order = %d, want %d", i, r.Order, i+1)
		}
	}

	if cfg.OuterRadius() != 400 {
		t.Errorf("OuterRadius() = %g, want 400", cfg.OuterRadius())
	}
	if cfg.RingInner(0) != 30 {
		t.Errorf("RingInner(0) = %g, want 30", cfg.RingInner(0))
	}
	if cfg.RingInner(2) != 220 {
		t.Errorf("RingInner(2) = %g, want 220", cfg.RingInner(2))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestQuadrantPartition(t *testing.T) {
	cfg := DefaultConfig()
	var total float64
	for _, q := range cfg.Quadrants {
		total += q.RadialMax - q.RadialMin
	}
	if total != 2 {
		t.Errorf("angular ranges sum to %gπ, want 2π", total)
	}
}

func TestQuadrantRoute(t *testing.T) {
	cfg := DefaultConfig()
	for i := 0; i < NumQuadrants; i++ {
		want := cfg.Quadrants[(2+i)%4].Route
		if got := cfg.QuadrantRoute(i); got != want {
			t.Errorf("QuadrantRoute(%d) = %q, want %q", i, got, want)
		}
	}
	if got := cfg.QuadrantRoute(1); got != "technique" {
		t.Errorf("QuadrantRoute(1) = %q, want %q", got, "technique")
	}
}

func TestNormalizeIgnoresOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quadrants[0].FactorX = -1
	cfg.Quadrants[0].RadialMax = 2
	cfg.Normalize()
	if cfg.Quadrants[0].FactorX != 1 || cfg.Quadrants[0].RadialMax != 0.5 {
		t.Errorf("Normalize() kept geometry override: %+v", cfg.Quadrants[0])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"decreasing radii", func(c *Config) { c.Rings[2].Radius = 200 }},
		{"narrow band", func(c *Config) { c.Rings[1].Radius = 150 }},
		{"radius below inner", func(c *Config) { c.Rings[0].Radius = 20 }},
		{"negative padding", func(c *Config) { c.Padding = -1 }},
		{"bad route", func(c *Config) { c.Quadrants[1].Route = "Not A Route" }},
		{"duplicate route", func(c *Config) { c.Quadrants[3].Route = c.Quadrants[0].Route }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name string
		item Item
		code errors.Code
	}{
		{"valid", Item{Name: "Go", Quadrant: 3, Ring: 0}, ""},
		{"quadrant negative", Item{Name: "Go", Quadrant: -1}, errors.ErrCodeInvalidQuadrant},
		{"quadrant too large", Item{Name: "Go", Quadrant: 4}, errors.ErrCodeInvalidQuadrant},
		{"ring too large", Item{Name: "Go", Ring: 4}, errors.ErrCodeInvalidRing},
		{"ring negative", Item{Name: "Go", Ring: -2}, errors.ErrCodeInvalidRing},
		{"empty name", Item{}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.ValidateItem(tt.item)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("ValidateItem() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestSymbolFor(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want Symbol
	}{
		{"unchanged", Item{}, SymbolCircle},
		{"moved in", Item{Moved: 1}, SymbolTriangleUp},
		{"moved out", Item{Moved: -1}, SymbolTriangleDown},
		{"new", Item{IsNew: true}, SymbolTriangleUp},
		{"new and moved out", Item{IsNew: true, Moved: -2}, SymbolTriangleDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SymbolFor(tt.item); got != tt.want {
				t.Errorf("SymbolFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewState(t *testing.T) {
	full := FullView(true)
	if full.Zoomed() || full.ZoomedQuadrant() != -1 {
		t.Errorf("FullView() zoomed = %v/%d", full.Zoomed(), full.ZoomedQuadrant())
	}
	if err := full.Validate(); err != nil {
		t.Errorf("FullView().Validate() = %v", err)
	}

	z := ZoomedView(2, false)
	if !z.Zoomed() || z.ZoomedQuadrant() != 2 {
		t.Errorf("ZoomedView(2) zoomed = %v/%d", z.Zoomed(), z.ZoomedQuadrant())
	}
	if z.Equal(full) {
		t.Error("Equal() = true for full and zoomed views")
	}
	if !z.Equal(ZoomedView(2, false)) {
		t.Error("Equal() = false for identical zoomed views")
	}

	bad := ZoomedView(5, true)
	if !errors.Is(bad.Validate(), errors.ErrCodeInvalidView) {
		t.Errorf("ZoomedView(5).Validate() = %v, want INVALID_VIEW", bad.Validate())
	}
}

func TestFilterCompanies(t *testing.T) {
	items := []Item{
		{Name: "Go", Companies: []string{"ITR_NL", "FM"}},
		{Name: "PHP", Companies: []string{"ITR_BE"}},
		{Name: "Cobol"},
	}
	tests := []struct {
		sel  []string
		want []string
	}{
		{nil, []string{"Go", "PHP", "Cobol"}},
		{[]string{"fm"}, []string{"Go"}},
		{[]string{"ITR_BE", "ITR_NL"}, []string{"Go", "PHP"}},
		{[]string{"ACME"}, nil},
	}
	for _, tt := range tests {
		var got []string
		for _, it := range FilterCompanies(items, tt.sel) {
			got = append(got, it.Name)
		}
		if len(got) != len(tt.want) {
			t.Errorf("FilterCompanies(%v) = %v, want %v", tt.sel, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("FilterCompanies(%v) = %v, want %v", tt.sel, got, tt.want)
				break
			}
		}
	}
}
