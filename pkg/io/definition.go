package io

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
)

// Definition is a decoded radar: configuration plus the items to plot.
type Definition struct {
	Title  string
	Config radar.Config
	Items  []radar.Item

	// Skipped counts items excluded with in_radar = false.
	Skipped int
}

// NewDefinition returns a definition with the default configuration.
func NewDefinition(items ...radar.Item) *Definition {
	return &Definition{Config: radar.DefaultConfig(), Items: items}
}

type document struct {
	Title     string        `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty"`
	Chart     *chartDoc     `json:"chart,omitempty" toml:"chart,omitempty" yaml:"chart,omitempty"`
	Colors    *radar.Colors `json:"colors,omitempty" toml:"colors,omitempty" yaml:"colors,omitempty"`
	Legend    *radar.Legend `json:"legend,omitempty" toml:"legend,omitempty" yaml:"legend,omitempty"`
	Quadrants []quadrantDoc `json:"quadrants,omitempty" toml:"quadrants,omitempty" yaml:"quadrants,omitempty"`
	Rings     []ringDoc     `json:"rings,omitempty" toml:"rings,omitempty" yaml:"rings,omitempty"`
	Items     []itemDoc     `json:"items" toml:"items" yaml:"items"`
}

type chartDoc struct {
	InnerRadius float64 `json:"inner_radius,omitempty" toml:"inner_radius,omitempty" yaml:"inner_radius,omitempty"`
	Padding     float64 `json:"padding,omitempty" toml:"padding,omitempty" yaml:"padding,omitempty"`
	BlipRadius  float64 `json:"blip_radius,omitempty" toml:"blip_radius,omitempty" yaml:"blip_radius,omitempty"`
	Width       float64 `json:"width,omitempty" toml:"width,omitempty" yaml:"width,omitempty"`
	Height      float64 `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty"`
}

type quadrantDoc struct {
	Name    string `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Route   string `json:"route,omitempty" toml:"route,omitempty" yaml:"route,omitempty"`
	Color   string `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	Tooltip string `json:"tooltip,omitempty" toml:"tooltip,omitempty" yaml:"tooltip,omitempty"`
}

type ringDoc struct {
	Name            string  `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Radius          float64 `json:"radius,omitempty" toml:"radius,omitempty" yaml:"radius,omitempty"`
	Color           string  `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty" toml:"background_color,omitempty" yaml:"background_color,omitempty"`
	Tooltip         string  `json:"tooltip,omitempty" toml:"tooltip,omitempty" yaml:"tooltip,omitempty"`
}

// itemDoc holds quadrant and ring as any: an index or a name.
type itemDoc struct {
	Name        string   `json:"name" toml:"name" yaml:"name"`
	Quadrant    any      `json:"quadrant" toml:"quadrant" yaml:"quadrant"`
	Ring        any      `json:"ring" toml:"ring" yaml:"ring"`
	IsNew       bool     `json:"is_new,omitempty" toml:"is_new,omitempty" yaml:"is_new,omitempty"`
	Moved       int      `json:"moved,omitempty" toml:"moved,omitempty" yaml:"moved,omitempty"`
	Companies   []string `json:"companies,omitempty" toml:"companies,omitempty" yaml:"companies,omitempty"`
	Description string   `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
	Link        string   `json:"link,omitempty" toml:"link,omitempty" yaml:"link,omitempty"`
	InRadar     *bool    `json:"in_radar,omitempty" toml:"in_radar,omitempty" yaml:"in_radar,omitempty"`
}

// resolve turns a decoded document into a validated definition.
func (d *document) resolve() (*Definition, error) {
	cfg := radar.DefaultConfig()
	if c := d.Chart; c != nil {
		override(&cfg.InnerRadius, c.InnerRadius)
		override(&cfg.Padding, c.Padding)
		override(&cfg.BlipRadius, c.BlipRadius)
		override(&cfg.Width, c.Width)
		override(&cfg.Height, c.Height)
	}
	if c := d.Colors; c != nil {
		override(&cfg.Colors.Background, c.Background)
		override(&cfg.Colors.Grid, c.Grid)
		override(&cfg.Colors.Inactive, c.Inactive)
	}
	if l := d.Legend; l != nil {
		override(&cfg.Legend.NewOrMoved, l.NewOrMoved)
		override(&cfg.Legend.NoChange, l.NoChange)
	}
	if len(d.Quadrants) > 0 {
		if len(d.Quadrants) != radar.NumQuadrants {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"definition has %d quadrants, want %d", len(d.Quadrants), radar.NumQuadrants)
		}
		for i, q := range d.Quadrants {
			dst := &cfg.Quadrants[i]
			override(&dst.Name, q.Name)
			override(&dst.Route, q.Route)
			override(&dst.Color, q.Color)
			override(&dst.Tooltip, q.Tooltip)
		}
	}
	if len(d.Rings) > 0 {
		if len(d.Rings) != radar.NumRings {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"definition has %d rings, want %d", len(d.Rings), radar.NumRings)
		}
		for i, r := range d.Rings {
			dst := &cfg.Rings[i]
			override(&dst.Name, r.Name)
			override(&dst.Radius, r.Radius)
			override(&dst.Color, r.Color)
			override(&dst.BackgroundColor, r.BackgroundColor)
			override(&dst.Tooltip, r.Tooltip)
		}
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	def := &Definition{Title: d.Title, Config: cfg, Items: make([]radar.Item, 0, len(d.Items))}
	for i, it := range d.Items {
		if it.InRadar != nil && !*it.InRadar {
			def.Skipped++
			continue
		}
		q, err := ResolveQuadrant(cfg, it.Quadrant)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "item %d (%q)", i, it.Name)
		}
		r, err := ResolveRing(cfg, it.Ring)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "item %d (%q)", i, it.Name)
		}
		def.Items = append(def.Items, radar.Item{
			Name:        it.Name,
			Quadrant:    q,
			Ring:        r,
			IsNew:       it.IsNew,
			Moved:       it.Moved,
			Companies:   it.Companies,
			Description: it.Description,
			Link:        it.Link,
		})
	}
	return def, nil
}

// documentOf is the inverse of resolve. The full configuration is written.
func documentOf(def *Definition) *document {
	cfg := def.Config
	d := &document{
		Title: def.Title,
		Chart: &chartDoc{
			InnerRadius: cfg.InnerRadius,
			Padding:     cfg.Padding,
			BlipRadius:  cfg.BlipRadius,
			Width:       cfg.Width,
			Height:      cfg.Height,
		},
		Colors: &cfg.Colors,
		Legend: &cfg.Legend,
		Items:  make([]itemDoc, len(def.Items)),
	}
	for _, q := range cfg.Quadrants {
		d.Quadrants = append(d.Quadrants, quadrantDoc{Name: q.Name, Route: q.Route, Color: q.Color, Tooltip: q.Tooltip})
	}
	for _, r := range cfg.Rings {
		d.Rings = append(d.Rings, ringDoc{
			Name: r.Name, Radius: r.Radius, Color: r.Color,
			BackgroundColor: r.BackgroundColor, Tooltip: r.Tooltip,
		})
	}
	for i, it := range def.Items {
		d.Items[i] = itemDoc{
			Name:        it.Name,
			Quadrant:    it.Quadrant,
			Ring:        it.Ring,
			IsNew:       it.IsNew,
			Moved:       it.Moved,
			Companies:   it.Companies,
			Description: it.Description,
			Link:        it.Link,
		}
	}
	return d
}

func override[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// ResolveQuadrant turns an index or a quadrant name or route into an
// index. Numeric values are returned unchecked.
func ResolveQuadrant(cfg radar.Config, v any) (int, error) {
	i, name, err := index(v, "quadrant")
	if err != nil || name == "" {
		return i, err
	}
	for _, q := range cfg.Quadrants {
		if strings.EqualFold(q.Name, name) || strings.EqualFold(q.Route, name) {
			return q.Index, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidQuadrant, "no quadrant named %q", name)
}

// ResolveRing turns an index or a ring name into an index. Numeric values
// are returned unchecked.
func ResolveRing(cfg radar.Config, v any) (int, error) {
	i, name, err := index(v, "ring")
	if err != nil || name == "" {
		return i, err
	}
	for _, r := range cfg.Rings {
		if strings.EqualFold(r.Name, name) {
			return r.Index, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidRing, "no ring named %q", name)
}

// index decodes a numeric reference, or returns the name to look up.
// Decoders differ in how they represent numbers: TOML yields int64, YAML
// int, BSON int32 and JSON float64.
func index(v any, what string) (int, string, error) {
	switch x := v.(type) {
	case nil:
		return 0, "", errors.New(errors.ErrCodeInvalidInput, "missing %s", what)
	case int:
		return x, "", nil
	case int64:
		return int(x), "", nil
	case int32:
		return int(x), "", nil
	case uint64:
		return int(x), "", nil
	case float64:
		if x != math.Trunc(x) {
			return 0, "", errors.New(errors.ErrCodeInvalidInput, "%s %v is not an integer", what, x)
		}
		return int(x), "", nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.Atoi(s); err == nil {
			return n, "", nil
		}
		if s == "" {
			return 0, "", errors.New(errors.ErrCodeInvalidInput, "empty %s", what)
		}
		return 0, s, nil
	}
	return 0, "", errors.New(errors.ErrCodeInvalidInput, "%s has unsupported type %T", what, v)
}
