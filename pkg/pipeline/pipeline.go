// Package pipeline renders radar definitions to static artifacts.
//
// This package implements the complete load → layout → render pipeline
// shared by the CLI and the server, so that both produce identical output
// for identical inputs.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a definition file and select the items to plot
//  2. Layout: drive a headless chart through one render and settle it,
//     producing the final scene
//  3. Render: serialize the scene to SVG, PNG, JSON or DOT
//
// Layouts and artifacts are cached. Layout keys cover the definition
// contents and everything that moves blips (seed, view, company filter);
// artifact keys add the format options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Definition: def,
//	    Formats:    []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/techradar/pkg/cache"
	"github.com/matzehuels/techradar/pkg/errors"
	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/chart"
	"github.com/matzehuels/techradar/pkg/radar/relax"
)

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// DefaultBudget bounds relaxation of a headless layout.
	DefaultBudget = 5 * time.Second
)

// Output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz" // DOT laid out and rasterized by Graphviz
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatGraphviz: true,
}

// Extension returns the file extension for format.
func Extension(format string) string {
	if format == FormatGraphviz {
		return "gv.png"
	}
	return format
}

// Options contains all configuration for the pipeline. It supports JSON
// serialization for server requests; the definition travels separately.
type Options struct {
	// Load options
	Definition *radario.Definition `json:"-"`
	Source     string              `json:"source,omitempty"` // where Definition came from, for logs
	Companies  []string            `json:"companies,omitempty"`

	// Layout options
	Quadrant *int          `json:"quadrant,omitempty"`
	Numbered bool          `json:"numbered,omitempty"`
	Seed     uint64        `json:"seed,omitempty"`
	Budget   time.Duration `json:"budget,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Title       string   `json:"title,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the settled scene.
	Layout Layout

	// DefinitionHash is the content hash of the selected items and config.
	DefinitionHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items      int
	Skipped    int // in_radar = false
	Filtered   int // removed by the company filter
	Dropped    int // invalid quadrant or ring
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, json, dot, graphviz)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out, ValidateFormats(out)
}

// ValidateAndSetDefaults checks required fields and applies defaults. It
// is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Definition == nil {
		return errors.New(errors.ErrCodeInvalidInput, "definition is required")
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and validates the view.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.ViewState().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Title == "" && o.Definition != nil {
		o.Title = o.Definition.Title
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and validates the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ViewState returns the chart view the layout is computed for. Hover
// regions are only laid out for interactive output.
func (o *Options) ViewState() radar.ViewState {
	return radar.ViewState{Quadrant: o.Quadrant, IsNotMobile: o.Interactive, Numbered: o.Numbered}
}

// ChartOptions returns the chart options of a headless layout.
func (o *Options) ChartOptions() []chart.Option {
	ro := relax.DefaultOptions()
	ro.Budget = o.Budget
	return []chart.Option{
		chart.WithSeed(o.Seed),
		chart.WithLogger(o.Logger),
		chart.WithRelax(ro),
		chart.WithDropInvalid(true),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	q := -1
	if o.Quadrant != nil {
		q = *o.Quadrant
	}
	return cache.LayoutKeyOpts{
		Seed:        o.Seed,
		Quadrant:    q,
		Numbered:    o.Numbered,
		Companies:   o.Companies,
		Budget:      int(o.Budget / time.Millisecond),
		Interactive: o.Interactive,
	}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Title: o.Title}
	switch format {
	case FormatPNG:
		opts.Scale = o.Scale
	case FormatSVG:
		opts.Interactive = o.Interactive
	}
	return opts
}
