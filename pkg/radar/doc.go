// Package radar defines the static configuration and item model of a
// technology radar chart.
//
// A radar is divided into four quadrants (fixed 90° angular sectors) and four
// concentric rings. Every [Item] is assigned one quadrant and one ring; the
// intersection of the two is a segment (see the segment subpackage) that
// bounds the item's plotted position.
//
// # Coordinate System
//
// The chart is centered on the origin with the y axis pointing down, as in
// SVG. Quadrant angular ranges are fixed by index and expressed in units of π:
//
//	0 → [0, 0.5]     factors (+1, +1)   bottom right
//	1 → [0.5, 1]     factors (−1, +1)   bottom left
//	2 → [−1, −0.5]   factors (−1, −1)   top left
//	3 → [−0.5, 0]    factors (+1, −1)   top right
//
// The factors give the screen quadrant each angular range maps to. Ring radii
// default to 130, 220, 310 and 400; ring 0's inner bound is [Config.InnerRadius]
// rather than a previous ring's radius, keeping the chart center clear.
//
// # Subpackages
//
//   - geom: polar/cartesian math and rectangles
//   - segment: per (quadrant, ring) bounds, clipping and sampling
//   - layout: the single owner of item positions
//   - reconcile: keyed diff of consecutive item collections
//   - relax: collision relaxation
//   - view: viewports, hover regions, tooltips and legend geometry
//   - schedule: single-threaded scheduler and transitions
//   - scene: retained scene and draw commands
//   - chart: the orchestrator tying everything together
//   - sink: SVG, PNG, JSON and DOT output
package radar
