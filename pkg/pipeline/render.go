package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/techradar/pkg/radar/sink"
)

// RenderFromLayout renders every requested format of l.
func RenderFromLayout(ctx context.Context, l Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, err := renderFormat(ctx, l, f, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out[f] = data
	}
	return out, nil
}

func renderFormat(ctx context.Context, l Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(l.Scene, svgOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(l.Scene, sink.WithScale(opts.Scale), sink.WithPNGSVGOptions(sink.WithTitle(opts.Title)))
	case FormatJSON:
		return sink.RenderJSON(l.Scene, sink.WithJSONTitle(opts.Title), sink.WithJSONSeed(l.Seed))
	case FormatDOT:
		return []byte(sink.ToDOT(l.Scene)), nil
	case FormatGraphviz:
		return sink.RenderGraphviz(ctx, sink.ToDOT(l.Scene), "png")
	}
	return nil, ValidateFormat(format)
}

func svgOptions(opts Options) []sink.SVGOption {
	out := []sink.SVGOption{sink.WithTitle(opts.Title)}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	return out
}
