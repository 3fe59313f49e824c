package relax

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/techradar/pkg/radar/geom"
)

// Body is a relaxable disc. Constrain maps a candidate position to the
// nearest admissible one; SetPosition receives only constrained positions.
type Body interface {
	Position() geom.Point
	SetPosition(p geom.Point)
	Constrain(p geom.Point) geom.Point
}

// activity is implemented by bodies that can leave a running simulation.
// Inactive bodies neither collide nor move.
type activity interface {
	Active() bool
}

func isActive(b Body) bool {
	a, ok := b.(activity)
	return !ok || a.Active()
}

// Options configures a simulation.
type Options struct {
	// Radius is the collision radius of every body. Default: 12.
	Radius float64

	// Strength scales the collision response in (0, 1]. Default: 0.85.
	Strength float64

	// VelocityDecay is the fraction of velocity lost per tick. Default: 0.19.
	VelocityDecay float64

	// AlphaMin ends the simulation once alpha falls below it. Default: 0.001.
	AlphaMin float64

	// AlphaDecay is the per-tick alpha decay rate.
	// Default: 1 - AlphaMin^(1/300).
	AlphaDecay float64

	// Iterations is the number of collision passes per tick. Default: 1.
	Iterations int

	// Seed drives the jiggle applied to coincident bodies.
	Seed uint64

	// Budget bounds a runner pass in scheduler time. Default: 5s.
	Budget time.Duration

	// QuietTicks stops a runner pass after that many consecutive ticks with
	// maximum displacement below Epsilon. Default: 30.
	QuietTicks int

	// Epsilon is the displacement under which a tick counts as quiet.
	// Default: 0.01.
	Epsilon float64
}

// DefaultOptions returns the reference relaxation parameters.
func DefaultOptions() Options {
	const alphaMin = 0.001
	return Options{
		Radius:        12,
		Strength:      0.85,
		VelocityDecay: 0.19,
		AlphaMin:      alphaMin,
		AlphaDecay:    1 - math.Pow(alphaMin, 1.0/300),
		Iterations:    1,
		Seed:          42,
		Budget:        5 * time.Second,
		QuietTicks:    30,
		Epsilon:       0.01,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Radius <= 0 {
		o.Radius = d.Radius
	}
	if o.Strength <= 0 {
		o.Strength = d.Strength
	}
	if o.VelocityDecay <= 0 {
		o.VelocityDecay = d.VelocityDecay
	}
	if o.AlphaMin <= 0 {
		o.AlphaMin = d.AlphaMin
	}
	if o.AlphaDecay <= 0 {
		o.AlphaDecay = 1 - math.Pow(o.AlphaMin, 1.0/300)
	}
	if o.Iterations <= 0 {
		o.Iterations = d.Iterations
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Budget <= 0 {
		o.Budget = d.Budget
	}
	if o.QuietTicks <= 0 {
		o.QuietTicks = d.QuietTicks
	}
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	return o
}

// Stats describes one tick.
type Stats struct {
	Alpha           float64
	MaxDisplacement float64
}

// Simulation is a collision relaxation over a fixed set of bodies. It is not
// safe for concurrent use.
type Simulation struct {
	opts   Options
	bodies []Body
	vel    []geom.Point
	alpha  float64
	ticks  int
	rng    *rand.Rand
}

// NewSimulation creates a simulation with alpha 1 and zero velocities.
func NewSimulation(bodies []Body, opts Options) *Simulation {
	opts = opts.withDefaults()
	return &Simulation{
		opts:   opts,
		bodies: bodies,
		vel:    make([]geom.Point, len(bodies)),
		alpha:  1,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
}

// Options returns the effective options.
func (s *Simulation) Options() Options { return s.opts }

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Settled reports whether alpha has decayed below AlphaMin.
func (s *Simulation) Settled() bool { return s.alpha < s.opts.AlphaMin }

// Len returns the number of bodies.
func (s *Simulation) Len() int { return len(s.bodies) }

// Tick advances the simulation by one step.
func (s *Simulation) Tick() Stats {
	s.alpha += (0 - s.alpha) * s.opts.AlphaDecay
	s.ticks++

	pos := make([]geom.Point, len(s.bodies))
	live := make([]bool, len(s.bodies))
	for i, b := range s.bodies {
		pos[i] = b.Position()
		live[i] = isActive(b)
	}
	for range s.opts.Iterations {
		s.collide(pos, live)
	}

	keep := 1 - s.opts.VelocityDecay
	var maxDisp float64
	for i, b := range s.bodies {
		if !live[i] {
			continue
		}
		s.vel[i] = s.vel[i].Scale(keep)
		next := b.Constrain(pos[i].Add(s.vel[i]))
		if d := next.Dist(pos[i]); d > maxDisp {
			maxDisp = d
		}
		b.SetPosition(next)
	}
	return Stats{Alpha: s.alpha, MaxDisplacement: maxDisp}
}

// collide applies the pairwise collision response to velocities. Equal radii
// split the response evenly between both bodies.
func (s *Simulation) collide(pos []geom.Point, live []bool) {
	r := 2 * s.opts.Radius
	r2 := r * r
	for i := range pos {
		if !live[i] {
			continue
		}
		xi := pos[i].X + s.vel[i].X
		yi := pos[i].Y + s.vel[i].Y
		for j := i + 1; j < len(pos); j++ {
			if !live[j] {
				continue
			}
			x := xi - pos[j].X - s.vel[j].X
			y := yi - pos[j].Y - s.vel[j].Y
			l := x*x + y*y
			if l >= r2 {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l * s.opts.Strength
			x *= l
			y *= l
			s.vel[i].X += x * 0.5
			s.vel[i].Y += y * 0.5
			s.vel[j].X -= x * 0.5
			s.vel[j].Y -= y * 0.5
		}
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// Result summarizes a synchronous run.
type Result struct {
	Ticks    int
	Settled  bool
	Duration time.Duration
	Last     Stats
}

// Run ticks until the simulation settles, ctx is cancelled or budget of wall
// clock time elapses. A non-positive budget means no time bound. Running
// out of budget is not an error; only a cancelled context is reported.
func (s *Simulation) Run(ctx context.Context, budget time.Duration) (Result, error) {
	start := time.Now()
	var res Result
	for !s.Settled() {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		if budget > 0 && time.Since(start) > budget {
			break
		}
		res.Last = s.Tick()
		res.Ticks++
	}
	res.Settled = s.Settled()
	res.Duration = time.Since(start)
	return res, nil
}
