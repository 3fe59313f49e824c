// Package geom provides the coordinate math shared by the radar packages.
//
// Two coordinate systems are in play: screen-space cartesian points (x grows
// right, y grows down) and polar coordinates around the chart center, where
// the angle T is measured with atan2 in radians and R is the distance from
// the origin. All functions are pure.
package geom

import (
	"fmt"
	"math"
)

// Point is a cartesian position in chart units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polar is a position expressed as angle T (radians) and radius R.
type Polar struct {
	T float64 `json:"t"`
	R float64 `json:"r"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Dist(q Point) float64  { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }

// Eq reports whether p and q are equal within eps on both axes.
func (p Point) Eq(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// ToPolar converts p to polar coordinates around the origin.
func ToPolar(p Point) Polar {
	return Polar{T: math.Atan2(p.Y, p.X), R: math.Sqrt(p.X*p.X + p.Y*p.Y)}
}

// ToCartesian converts a polar coordinate back to a point.
func ToCartesian(p Polar) Point {
	return Point{X: p.R * math.Cos(p.T), Y: p.R * math.Sin(p.T)}
}

// ClampInterval clamps v into [min(a,b), max(a,b)]. The bounds may be given
// in either order, which matters for quadrants whose sign factors are negative.
func ClampInterval(v, a, b float64) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	return math.Min(math.Max(v, lo), hi)
}

// ClampBox clamps each coordinate of p into the box spanned by min and max.
func ClampBox(p, min, max Point) Point {
	return Point{
		X: ClampInterval(p.X, min.X, max.X),
		Y: ClampInterval(p.Y, min.Y, max.Y),
	}
}

// ClampRadius clamps the radius of p into [rmin, rmax] leaving the angle untouched.
func ClampRadius(p Polar, rmin, rmax float64) Polar {
	return Polar{T: p.T, R: ClampInterval(p.R, rmin, rmax)}
}

// Lerp interpolates between a and b; t=0 yields a and t=1 yields b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// LerpPoint interpolates each coordinate between a and b.
func LerpPoint(a, b Point, t float64) Point {
	return Point{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Min() Point    { return Point{r.X, r.Y} }
func (r Rect) Max() Point    { return Point{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Lerp interpolates every component of the rectangle towards s.
func (r Rect) Lerp(s Rect, t float64) Rect {
	return Rect{
		X: Lerp(r.X, s.X, t),
		Y: Lerp(r.Y, s.Y, t),
		W: Lerp(r.W, s.W, t),
		H: Lerp(r.H, s.H, t),
	}
}

// String formats the rectangle as an SVG viewBox value.
func (r Rect) String() string {
	return fmt.Sprintf("%g %g %g %g", r.X, r.Y, r.W, r.H)
}
