package relax

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
	"github.com/matzehuels/techradar/pkg/radar/segment"
)

// disc is a test body, optionally constrained by a segment.
type disc struct {
	p   geom.Point
	seg *segment.Segment
}

func (d *disc) Position() geom.Point     { return d.p }
func (d *disc) SetPosition(p geom.Point) { d.p = p }
func (d *disc) Constrain(p geom.Point) geom.Point {
	if d.seg == nil {
		return p
	}
	return d.seg.Clip(p)
}

func bodies(ds []*disc) []Body {
	out := make([]Body, len(ds))
	for i, d := range ds {
		out[i] = d
	}
	return out
}

func minDistance(ds []*disc) float64 {
	best := math.Inf(1)
	for i := range ds {
		for j := i + 1; j < len(ds); j++ {
			best = math.Min(best, ds[i].p.Dist(ds[j].p))
		}
	}
	return best
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.Radius != 12 || o.Strength != 0.85 || o.VelocityDecay != 0.19 || o.AlphaMin != 0.001 {
		t.Errorf("DefaultOptions() = %+v", o)
	}
	want := 1 - math.Pow(0.001, 1.0/300)
	if math.Abs(o.AlphaDecay-want) > 1e-15 {
		t.Errorf("AlphaDecay = %g, want %g", o.AlphaDecay, want)
	}
	if got := (Options{}).withDefaults(); got != o {
		t.Errorf("zero Options withDefaults() = %+v, want %+v", got, o)
	}
}

func TestSimulationSettlesAfterAbout300Ticks(t *testing.T) {
	sim := NewSimulation(nil, DefaultOptions())
	res, err := sim.Run(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Settled {
		t.Fatal("Run() did not settle")
	}
	if res.Ticks < 299 || res.Ticks > 302 {
		t.Errorf("Run() ticks = %d, want about 300", res.Ticks)
	}
}

func TestCoincidentBodiesSeparate(t *testing.T) {
	a := &disc{p: geom.Pt(100, 100)}
	b := &disc{p: geom.Pt(100, 100)}
	sim := NewSimulation(bodies([]*disc{a, b}), DefaultOptions())
	if _, err := sim.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if d := a.p.Dist(b.p); d < 20 {
		t.Errorf("coincident bodies ended %g apart, want close to 24", d)
	}
}

func TestSeparatedBodiesStayPut(t *testing.T) {
	a := &disc{p: geom.Pt(0, 0)}
	b := &disc{p: geom.Pt(100, 0)}
	sim := NewSimulation(bodies([]*disc{a, b}), DefaultOptions())
	st := sim.Tick()
	if st.MaxDisplacement != 0 {
		t.Errorf("MaxDisplacement = %g, want 0", st.MaxDisplacement)
	}
	if a.p != geom.Pt(0, 0) || b.p != geom.Pt(100, 0) {
		t.Errorf("bodies moved: %v %v", a.p, b.p)
	}
}

func TestRelaxationKeepsContainment(t *testing.T) {
	cfg := radar.DefaultConfig()
	seg := segment.MustBuild(cfg, 2, 1)
	rng := segment.NewSource(11)

	var ds []*disc
	for range 12 {
		ds = append(ds, &disc{p: seg.Seed(rng), seg: &seg})
	}
	before := minDistance(ds)

	sim := NewSimulation(bodies(ds), DefaultOptions())
	for !sim.Settled() {
		sim.Tick()
		for i, d := range ds {
			if !seg.Contains(d.p) {
				t.Fatalf("tick %d: body %d at %v escaped its segment", sim.Ticks(), i, d.p)
			}
		}
	}
	if after := minDistance(ds); before < 2*DefaultOptions().Radius && after <= before {
		t.Errorf("min distance %g -> %g, want growth", before, after)
	}
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sim := NewSimulation([]Body{&disc{}}, DefaultOptions())
	if _, err := sim.Run(ctx, 0); err == nil {
		t.Error("Run() with cancelled context returned nil error")
	}
}

func newManual() *schedule.Manual {
	return schedule.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestRunnerStopsWhenQuiet(t *testing.T) {
	m := newManual()
	var reasons []StopReason
	r := NewRunner(m, DefaultOptions(), OnStop(func(s StopReason) { reasons = append(reasons, s) }))

	r.Start(bodies([]*disc{{p: geom.Pt(0, 0)}, {p: geom.Pt(200, 0)}}))
	if !r.Running() {
		t.Fatal("Running() = false after Start")
	}
	m.Advance(time.Second)
	if r.Running() {
		t.Error("runner still running after 1s of quiet ticks")
	}
	if len(reasons) != 1 || reasons[0] != StopQuiet {
		t.Errorf("stop reasons = %v, want [quiet]", reasons)
	}
}

func TestRunnerBudget(t *testing.T) {
	m := newManual()
	opts := DefaultOptions()
	opts.Budget = 100 * time.Millisecond
	opts.QuietTicks = 1 << 20

	var reason StopReason
	r := NewRunner(m, opts, OnStop(func(s StopReason) { reason = s }))
	r.Start(bodies([]*disc{{p: geom.Pt(0, 0)}, {p: geom.Pt(1, 0)}}))
	m.Advance(time.Second)
	if r.Running() || reason != StopBudget {
		t.Errorf("Running() = %v, reason = %q; want false, budget", r.Running(), reason)
	}
}

func TestRunnerRestartSupersedes(t *testing.T) {
	m := newManual()
	var reasons []StopReason
	ticks := 0
	r := NewRunner(m, DefaultOptions(),
		OnStop(func(s StopReason) { reasons = append(reasons, s) }),
		OnTick(func(Stats) { ticks++ }),
	)
	ds := bodies([]*disc{{p: geom.Pt(0, 0)}, {p: geom.Pt(1, 1)}})

	r.Start(ds)
	m.Advance(50 * time.Millisecond)
	r.Start(ds)
	if r.Starts() != 2 {
		t.Errorf("Starts() = %d, want 2", r.Starts())
	}
	if len(reasons) != 1 || reasons[0] != StopSuperseded {
		t.Errorf("reasons = %v, want [superseded]", reasons)
	}
	if m.Pending() != 1 {
		t.Errorf("Pending() = %d, want exactly one live tick timer", m.Pending())
	}

	r.Stop()
	if r.Running() || m.Pending() != 0 {
		t.Errorf("after Stop: Running() = %v, Pending() = %d", r.Running(), m.Pending())
	}
	if ticks == 0 {
		t.Error("OnTick never fired")
	}

	r.Start(nil)
	if r.Running() {
		t.Error("Start(nil) began a pass")
	}
}

// ghost is a body that has left the simulation.
type ghost struct{ disc }

func (*ghost) Active() bool { return false }

func TestInactiveBodiesAreIgnored(t *testing.T) {
	live := &disc{p: geom.Pt(50, 50)}
	g := &ghost{disc{p: geom.Pt(50, 50)}}
	sim := NewSimulation([]Body{live, g}, DefaultOptions())
	for range 10 {
		sim.Tick()
	}
	if live.p != geom.Pt(50, 50) {
		t.Errorf("live body pushed by an inactive one to %v", live.p)
	}
	if g.p != geom.Pt(50, 50) {
		t.Errorf("inactive body moved to %v", g.p)
	}
}
