// Package view computes the secondary geometry of a radar chart: the visible
// viewport, hover regions, tooltip boxes, the legend and ring labels.
//
// Everything here is a pure function of the configuration, the view state
// and, for tooltips, a blip position and a [TextMeasurer].
//
// # Viewports
//
// The full view is a square centered on the origin covering the outermost
// ring. A zoomed view frames a single quadrant plus a 20 unit margin on the
// axis side, offset by the quadrant's sign factors.
//
// # Hover Regions
//
// In the full view on pointer-capable devices four rectangles cover the four
// screen quadrants, minus a band along the axes. Regions are numbered
// clockwise from the top left, so region i activates quadrant (2+i) mod 4.
package view
