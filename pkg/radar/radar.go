package radar

import (
	"fmt"

	"github.com/matzehuels/techradar/pkg/errors"
)

// NumQuadrants and NumRings are fixed by the chart geometry.
const (
	NumQuadrants = 4
	NumRings     = 4
)

// Quadrant is one of the four angular sectors.
type Quadrant struct {
	Index     int     `json:"index" toml:"-" yaml:"-"`
	RadialMin float64 `json:"radial_min" toml:"-" yaml:"-"` // units of π
	RadialMax float64 `json:"radial_max" toml:"-" yaml:"-"` // units of π
	FactorX   float64 `json:"factor_x" toml:"-" yaml:"-"`
	FactorY   float64 `json:"factor_y" toml:"-" yaml:"-"`
	Name      string  `json:"name" toml:"name" yaml:"name"`
	Route     string  `json:"route" toml:"route" yaml:"route"`
	Color     string  `json:"color" toml:"color" yaml:"color"`
	Tooltip   string  `json:"tooltip,omitempty" toml:"tooltip" yaml:"tooltip,omitempty"`
}

// Ring is one of the four concentric bands, innermost first.
type Ring struct {
	Index           int     `json:"index" toml:"-" yaml:"-"`
	Radius          float64 `json:"radius" toml:"radius" yaml:"radius"`
	Name            string  `json:"name" toml:"name" yaml:"name"`
	Color           string  `json:"color" toml:"color" yaml:"color"`
	BackgroundColor string  `json:"background_color" toml:"background_color" yaml:"background_color"`
	Order           int     `json:"order" toml:"order" yaml:"order"`
	Tooltip         string  `json:"tooltip,omitempty" toml:"tooltip" yaml:"tooltip,omitempty"`
}

// Colors holds the global chart palette.
type Colors struct {
	Background string `json:"background" toml:"background" yaml:"background"`
	Grid       string `json:"grid" toml:"grid" yaml:"grid"`
	Inactive   string `json:"inactive" toml:"inactive" yaml:"inactive"`
}

// Legend holds the labels of the two legend rows shown in zoomed view.
type Legend struct {
	NewOrMoved string `json:"new_or_moved" toml:"new_or_moved" yaml:"new_or_moved"`
	NoChange   string `json:"no_change" toml:"no_change" yaml:"no_change"`
}

// Config is the static chart configuration. It is fixed for the lifetime of
// a chart; use [DefaultConfig] and override fields as needed.
type Config struct {
	Quadrants   [NumQuadrants]Quadrant `json:"quadrants"`
	Rings       [NumRings]Ring         `json:"rings"`
	Colors      Colors                 `json:"colors"`
	Legend      Legend                 `json:"legend"`
	InnerRadius float64                `json:"inner_radius"`
	Padding     float64                `json:"padding"`
	BlipRadius  float64                `json:"blip_radius"`
	Width       float64                `json:"width"`
	Height      float64                `json:"height"`
}

// quadrantGeometry is fixed by index and never configurable.
var quadrantGeometry = [NumQuadrants]struct{ min, max, fx, fy float64 }{
	{0, 0.5, 1, 1},
	{0.5, 1, -1, 1},
	{-1, -0.5, -1, -1},
	{-0.5, 0, 1, -1},
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	cfg := Config{
		Quadrants: [NumQuadrants]Quadrant{
			{Name: "Frameworks, CMS & Programmeertalen", Route: "frameworks-and-lang", Color: "#84BFA4"},
			{Name: "Tooling en testing", Route: "tooling-and-testing", Color: "#5DACC4"},
			{Name: "Platforms, infrastructure & Data", Route: "platforms-infra-and-data", Color: "#F8984C"},
			{Name: "Technieken", Route: "technique", Color: "#8D6CAB"},
		},
		Rings: [NumRings]Ring{
			{Radius: 130, Name: "Adopt", Color: "#17a2b8", BackgroundColor: "#BFC0BF",
				Tooltip: "We feel strongly that the industry should be adopting these items. We use them when appropriate on our projects."},
			{Radius: 220, Name: "Trial", Color: "#17a2b8", BackgroundColor: "#CBCCCB",
				Tooltip: "Worth pursuing. It is important to understand how to build up this capability. Enterprises should try this technology on a project that can handle the risk."},
			{Radius: 310, Name: "Assess", Color: "#17a2b8", BackgroundColor: "#D7D8D6",
				Tooltip: "Worth exploring with the goal of understanding how it will affect your enterprise."},
			{Radius: 400, Name: "Hold", Color: "#17a2b8", BackgroundColor: "#E4E5E4",
				Tooltip: "Proceed with caution."},
		},
		Colors: Colors{
			Background: "none",
			Grid:       "#bbb",
			Inactive:   "#ddd",
		},
		Legend: Legend{
			NewOrMoved: "New or moved",
			NoChange:   "No change",
		},
		InnerRadius: 30,
		Padding:     15,
		BlipRadius:  12,
		Width:       460,
		Height:      460,
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills in the fixed per-index geometry (indices, angular ranges,
// sign factors, ring order). Loaders call it after decoding user overrides
// so the geometry can never be configured away.
func (c *Config) Normalize() {
	for i := range c.Quadrants {
		g := quadrantGeometry[i]
		q := &c.Quadrants[i]
		q.Index = i
		q.RadialMin, q.RadialMax = g.min, g.max
		q.FactorX, q.FactorY = g.fx, g.fy
	}
	for i := range c.Rings {
		c.Rings[i].Index = i
		if c.Rings[i].Order == 0 {
			c.Rings[i].Order = i + 1
		}
	}
}

// OuterRadius returns the radius of the outermost ring.
func (c Config) OuterRadius() float64 {
	return c.Rings[NumRings-1].Radius
}

// RingInner returns the inner bound of ring r.
func (c Config) RingInner(r int) float64 {
	if r == 0 {
		return c.InnerRadius
	}
	return c.Rings[r-1].Radius
}

// QuadrantRoute returns the route activated by hover region i.
//
// Hover regions are numbered in screen order and the mapping to
// configuration order rotates by two: region i activates quadrant (2+i) mod 4.
func (c Config) QuadrantRoute(i int) string {
	return c.Quadrants[RegionQuadrant(i)].Route
}

// RegionQuadrant maps a hover region index to a quadrant index.
func RegionQuadrant(i int) int {
	return ((2+i)%NumQuadrants + NumQuadrants) % NumQuadrants
}

// Validate checks the configuration for structural errors.
func (c Config) Validate() error {
	prev := c.InnerRadius
	if prev < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "inner radius must be non-negative, got %g", prev)
	}
	if c.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "padding must be non-negative, got %g", c.Padding)
	}
	for i, r := range c.Rings {
		if r.Radius <= prev {
			return errors.New(errors.ErrCodeInvalidConfig,
				"ring %d radius %g must exceed %g", i, r.Radius, prev)
		}
		if r.Radius-prev <= 2*c.Padding {
			return errors.New(errors.ErrCodeInvalidConfig,
				"ring %d band [%g, %g] is narrower than twice the padding", i, prev, r.Radius)
		}
		prev = r.Radius
	}
	routes := make(map[string]int, NumQuadrants)
	for i, q := range c.Quadrants {
		if err := errors.ValidateRoute(q.Route); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "quadrant %d", i)
		}
		if j, dup := routes[q.Route]; dup {
			return errors.New(errors.ErrCodeInvalidConfig,
				"quadrants %d and %d share route %q", j, i, q.Route)
		}
		routes[q.Route] = i
	}
	return nil
}

// Item is a single plotted technology. Name is the identity key and must be
// unique within a collection.
type Item struct {
	Name        string   `json:"name" toml:"name" yaml:"name"`
	Quadrant    int      `json:"quadrant" toml:"quadrant" yaml:"quadrant"`
	Ring        int      `json:"ring" toml:"ring" yaml:"ring"`
	IsNew       bool     `json:"is_new,omitempty" toml:"is_new" yaml:"is_new,omitempty"`
	Moved       int      `json:"moved,omitempty" toml:"moved" yaml:"moved,omitempty"`
	Companies   []string `json:"companies,omitempty" toml:"companies" yaml:"companies,omitempty"`
	Description string   `json:"description,omitempty" toml:"description" yaml:"description,omitempty"`
	Link        string   `json:"link,omitempty" toml:"link" yaml:"link,omitempty"`
}

// ValidateItem rejects items whose quadrant or ring is out of range.
// Indices are never clamped: a clamped index would silently misplace the
// item into a neighboring segment.
func (c Config) ValidateItem(it Item) error {
	if err := errors.ValidateName(it.Name); err != nil {
		return err
	}
	if it.Quadrant < 0 || it.Quadrant >= NumQuadrants {
		return errors.New(errors.ErrCodeInvalidQuadrant,
			"item %q: quadrant %d out of range [0, %d]", it.Name, it.Quadrant, NumQuadrants-1)
	}
	if it.Ring < 0 || it.Ring >= NumRings {
		return errors.New(errors.ErrCodeInvalidRing,
			"item %q: ring %d out of range [0, %d]", it.Name, it.Ring, NumRings-1)
	}
	return nil
}

// Key returns the (quadrant, ring) pair as a compact string, used for
// logging and cache keys.
func (it Item) Key() string {
	return fmt.Sprintf("%d/%d", it.Quadrant, it.Ring)
}

// ViewState selects between the full four-quadrant view and a zoomed
// single-quadrant view.
type ViewState struct {
	// Quadrant is nil for the full view, else the zoomed quadrant index.
	Quadrant *int `json:"quadrant,omitempty"`
	// IsNotMobile enables hover regions (pointer-capable devices only).
	IsNotMobile bool `json:"is_not_mobile"`
	// Numbered draws numeric labels on blips.
	Numbered bool `json:"numbered"`
}

// FullView returns a full four-quadrant view state.
func FullView(desktop bool) ViewState {
	return ViewState{IsNotMobile: desktop}
}

// ZoomedView returns a view state zoomed on quadrant q.
func ZoomedView(q int, desktop bool) ViewState {
	return ViewState{Quadrant: &q, IsNotMobile: desktop}
}

// Zoomed reports whether the view shows a single quadrant.
func (v ViewState) Zoomed() bool { return v.Quadrant != nil }

// ZoomedQuadrant returns the zoomed quadrant index, or -1 in full view.
func (v ViewState) ZoomedQuadrant() int {
	if v.Quadrant == nil {
		return -1
	}
	return *v.Quadrant
}

// Validate checks that a zoomed view names a quadrant in [0, 3].
func (v ViewState) Validate() error {
	if v.Quadrant != nil && (*v.Quadrant < 0 || *v.Quadrant >= NumQuadrants) {
		return errors.New(errors.ErrCodeInvalidView,
			"zoomed quadrant %d out of range [0, %d]", *v.Quadrant, NumQuadrants-1)
	}
	return nil
}

// Equal reports whether two view states describe the same view.
func (v ViewState) Equal(o ViewState) bool {
	return v.ZoomedQuadrant() == o.ZoomedQuadrant() &&
		v.IsNotMobile == o.IsNotMobile && v.Numbered == o.Numbered
}
