package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string // output file path (or base path for multiple outputs)
	formats     string // comma-separated output formats
	quadrant    int    // zoomed quadrant, -1 for the full radar
	numbered    bool
	interactive bool
	companies   []string
	scale       float64
	title       string
	refresh     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{quadrant: -1}
	var noCache bool

	cmd := &cobra.Command{
		Use:   "render [definition]",
		Short: "Render a radar definition to SVG, PNG, JSON or DOT",
		Long: `Render a radar definition to static files.

The definition is a TOML, YAML or JSON document listing the radar items and,
optionally, its quadrants and rings. Blips are placed with a seeded random
walk and relaxed until they no longer overlap, so the same definition and
seed always produce the same chart.

Formats:
  svg       vector chart with legends (default)
  png       rasterized chart (--scale sets the pixel density)
  json      settled scene: every node with its shape and transform
  dot       Graphviz source with pinned blip positions
  graphviz  the DOT source laid out and rasterized by Graphviz

Layouts and artifacts are cached; use --no-cache or --refresh to bypass.`,
		Example: `  techradar render radar.toml
  techradar render radar.yaml -f svg,png -o out/radar
  techradar render radar.toml --quadrant 2 --numbered
  techradar render radar.toml --companies acme,globex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := map[string]string{"seed": "seed", "budget": "budget"}
			if noCache {
				c.config.Set("cache.backend", cacheNone)
			}
			if err := bindFlags(c.config, cmd.Flags(), keys); err != nil {
				return err
			}
			settings, err := loadSettings(c.config)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, settings)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatSVG, "output format(s): svg, png, json, dot, graphviz (comma-separated)")
	cmd.Flags().IntVarP(&opts.quadrant, "quadrant", "q", -1, "zoom into quadrant 0-3 (-1 for the full radar)")
	cmd.Flags().BoolVar(&opts.numbered, "numbered", false, "label blips with numbers and list them in the legend")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "include hover regions and tooltips in SVG output")
	cmd.Flags().StringSliceVar(&opts.companies, "companies", nil, "only plot items used by these companies")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (defaults to the definition title)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached layouts and artifacts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Uint64("seed", pipeline.DefaultSeed, "random seed for blip placement")
	cmd.Flags().Duration("budget", pipeline.DefaultBudget, "time budget for collision relaxation")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runRender loads the definition at input and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts, s Settings) error {
	logger := loggerFromContext(ctx)

	formats, err := pipeline.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	def, err := radario.Load(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	prog.done(fmt.Sprintf("Loaded %d items", len(def.Items)))

	runner, err := c.newRunner(ctx, s)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	po := pipeline.Options{
		Definition:  def,
		Source:      input,
		Companies:   opts.companies,
		Numbered:    opts.numbered,
		Seed:        s.Seed,
		Budget:      s.Budget,
		Formats:     formats,
		Scale:       opts.scale,
		Interactive: opts.interactive,
		Title:       opts.title,
		Refresh:     opts.refresh,
		Logger:      logger,
	}
	if opts.quadrant >= 0 {
		q := opts.quadrant
		po.Quadrant = &q
	}

	prog = newProgress(logger)
	res, err := runner.Execute(ctx, po)
	if err != nil {
		printError("Render failed")
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(formats, ", ")))

	paths, err := writeArtifacts(res.Artifacts, formats, input, opts.output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	if res.Stats.Dropped > 0 {
		printWarning("%d items had an invalid quadrant or ring and were left out", res.Stats.Dropped)
	}
	return nil
}

// writeArtifacts writes each format next to its base path and returns the
// written paths in format order. A single format honors output verbatim.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	if len(formats) == 1 && output != "" {
		if err := writeFile(output, artifacts[formats[0]]); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p := base + "." + pipeline.Extension(f)
		if filepath.Clean(p) == filepath.Clean(input) {
			p = base + "_radar." + pipeline.Extension(f)
		}
		if err := writeFile(p, artifacts[f]); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// basePath derives the base output path. With no output it strips the
// extension from input; a known format extension on output is stripped too.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
