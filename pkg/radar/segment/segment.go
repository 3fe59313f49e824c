// Package segment computes the geometric cell formed by one quadrant and one
// ring, and keeps points inside it.
package segment

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
)

// containsEps absorbs the float error of a polar round trip.
const containsEps = 1e-9

// Segment is the containment region of every item sharing a
// (quadrant, ring) pair. It is an immutable value; rebuild it when an item is
// reassigned.
type Segment struct {
	Quadrant int `json:"quadrant"`
	Ring     int `json:"ring"`

	PolarMin geom.Polar `json:"polar_min"`
	PolarMax geom.Polar `json:"polar_max"`

	CartesianMin geom.Point `json:"cartesian_min"`
	CartesianMax geom.Point `json:"cartesian_max"`

	Padding float64 `json:"padding"`
}

// Build returns the segment for quadrant q and ring r. Out-of-range indices
// are rejected, never clamped.
func Build(cfg radar.Config, q, r int) (Segment, error) {
	if q < 0 || q >= radar.NumQuadrants {
		return Segment{}, errors.New(errors.ErrCodeInvalidQuadrant, "quadrant %d out of range", q)
	}
	if r < 0 || r >= radar.NumRings {
		return Segment{}, errors.New(errors.ErrCodeInvalidRing, "ring %d out of range", r)
	}

	quad := cfg.Quadrants[q]
	outer := cfg.OuterRadius()
	return Segment{
		Quadrant: q,
		Ring:     r,
		PolarMin: geom.Polar{T: quad.RadialMin * math.Pi, R: cfg.RingInner(r)},
		PolarMax: geom.Polar{T: quad.RadialMax * math.Pi, R: cfg.Rings[r].Radius},
		CartesianMin: geom.Point{
			X: cfg.Padding * quad.FactorX,
			Y: cfg.Padding * quad.FactorY,
		},
		CartesianMax: geom.Point{
			X: outer * quad.FactorX,
			Y: outer * quad.FactorY,
		},
		Padding: cfg.Padding,
	}, nil
}

// MustBuild is like [Build] but panics on invalid indices.
func MustBuild(cfg radar.Config, q, r int) Segment {
	s, err := Build(cfg, q, r)
	if err != nil {
		panic(err)
	}
	return s
}

// RadiusMin and RadiusMax bound the radius of a clipped point.
func (s Segment) RadiusMin() float64 { return s.PolarMin.R + s.Padding }
func (s Segment) RadiusMax() float64 { return s.PolarMax.R - s.Padding }

// Clip maps p to the nearest admissible point of the segment: clamp into
// the cartesian box, convert to polar, clamp the radius into the padded ring
// band, convert back. The angle survives the radius clamp untouched.
func (s Segment) Clip(p geom.Point) geom.Point {
	c := geom.ClampBox(p, s.CartesianMin, s.CartesianMax)
	pol := geom.ClampRadius(geom.ToPolar(c), s.RadiusMin(), s.RadiusMax())
	return geom.ToCartesian(pol)
}

// ClipX returns the x coordinate of Clip(p).
func (s Segment) ClipX(p geom.Point) float64 { return s.Clip(p).X }

// ClipY returns the y coordinate of Clip(p).
func (s Segment) ClipY(p geom.Point) float64 { return s.Clip(p).Y }

// Contains reports whether p lies in the padded segment: radius within
// [RadiusMin, RadiusMax] and angle within the quadrant's range.
func (s Segment) Contains(p geom.Point) bool {
	pol := geom.ToPolar(p)
	if pol.R < s.RadiusMin()-containsEps || pol.R > s.RadiusMax()+containsEps {
		return false
	}
	return pol.T >= s.PolarMin.T-containsEps && pol.T <= s.PolarMax.T+containsEps
}

// Source is a uniform [0, 1) float source. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded PCG source. The same seed reproduces the same
// layout.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// RandomPosition samples a seed position: angle uniform over the quadrant,
// radius center-biased as the mean of two uniforms over [PolarMin.R,
// PolarMax.R]. The result is not padded; pass it through Clip.
func (s Segment) RandomPosition(rng Source) geom.Point {
	t := geom.Lerp(s.PolarMin.T, s.PolarMax.T, rng.Float64())
	u := (rng.Float64() + rng.Float64()) * 0.5
	r := geom.Lerp(s.PolarMin.R, s.PolarMax.R, u)
	return geom.ToCartesian(geom.Polar{T: t, R: r})
}

// Seed returns Clip(RandomPosition(rng)).
func (s Segment) Seed(rng Source) geom.Point {
	return s.Clip(s.RandomPosition(rng))
}

// Same reports whether two segments cover the same (quadrant, ring) cell.
func (s Segment) Same(o Segment) bool {
	return s.Quadrant == o.Quadrant && s.Ring == o.Ring
}

// Center returns the polar midpoint of the padded segment, useful as a
// deterministic anchor for labels.
func (s Segment) Center() geom.Point {
	return geom.ToCartesian(geom.Polar{
		T: (s.PolarMin.T + s.PolarMax.T) / 2,
		R: (s.RadiusMin() + s.RadiusMax()) / 2,
	})
}
