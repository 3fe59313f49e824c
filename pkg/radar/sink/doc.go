// Package sink serializes a radar scene into output formats.
//
// # Overview
//
// A "sink" turns a [scene.Snapshot] into bytes. This package provides:
//
//   - SVG: vector output through svgo, optionally interactive
//   - PNG: raster output, rasterizing the SVG with oksvg
//   - JSON: the retained scene for external tools
//   - DOT: the blip layout as a Graphviz graph with pinned positions
//
// Sinks never lay anything out. They draw exactly what the chart put into
// the scene, so a settled chart must be snapshotted first:
//
//	c, _ := chart.New(cfg, sc, nil)
//	c.Render(items, radar.FullView(true))
//	c.Settle(ctx)
//	svg := sink.RenderSVG(sc.Snapshot(), sink.WithInteraction())
//
// # SVG Options
//
//   - [WithTitle]: document title
//   - [WithInteraction]: embed CSS and script for blip and region hover
//   - [WithBackground]: fill color behind the chart
//   - [WithSize]: output width and height in pixels
//
// # PNG Output
//
// [RenderPNG] rasterizes with pure Go. oksvg has no text support, so labels
// and tooltips are dropped from PNG output.
//
// # DOT Output
//
// [ToDOT] emits one node per blip pinned at its position and one per ring
// label. [RenderGraphviz] lays the graph out with neato, which keeps pinned
// nodes in place.
package sink
