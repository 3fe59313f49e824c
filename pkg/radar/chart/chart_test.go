package chart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/relax"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
	"github.com/matzehuels/techradar/pkg/radar/view"
)

type hostLog struct {
	highlighted []string
	selected    []string
	redirects   []string
}

func (h *hostLog) SetHighlighted(name string) { h.highlighted = append(h.highlighted, name) }
func (h *hostLog) SetSelected(token string)   { h.selected = append(h.selected, token) }
func (h *hostLog) Redirect(route string)      { h.redirects = append(h.redirects, route) }

type fixture struct {
	chart *Chart
	clock *schedule.Manual
	scene *scene.Scene
	host  *hostLog
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		clock: schedule.NewManual(time.Unix(0, 0)),
		scene: scene.New(),
		host:  &hostLog{},
	}
	opts = append([]Option{WithScheduler(f.clock), WithSeed(7)}, opts...)
	c, err := New(radar.DefaultConfig(), f.scene, f.host, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	f.chart = c
	return f
}

func sampleItems() []radar.Item {
	return []radar.Item{
		{Name: "Go", Quadrant: 0, Ring: 0},
		{Name: "Kafka", Quadrant: 1, Ring: 1},
		{Name: "Terraform", Quadrant: 2, Ring: 2, IsNew: true},
		{Name: "Pairing", Quadrant: 3, Ring: 3, Moved: 1},
	}
}

func requireContained(t *testing.T, c *Chart) {
	t.Helper()
	for _, b := range c.Blips() {
		require.Truef(t, b.Segment.Contains(b.Position),
			"blip %q at %v outside segment %s", b.Name(), b.Position, b.Item.Key())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := radar.DefaultConfig()
	cfg.Rings[2].Radius = 100
	_, err := New(cfg, scene.New(), nil)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)

	_, err = New(radar.DefaultConfig(), nil, nil)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}

func TestFirstRenderDrawsAndRelaxes(t *testing.T) {
	f := newFixture(t)

	res, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 4, res.Enter)
	require.True(t, res.RelaxerStarted)
	require.True(t, f.chart.RelaxerRunning())

	snap := f.scene.Snapshot()
	require.Len(t, snap.Layer(scene.LayerBlips), 4)
	require.Len(t, snap.Layer(scene.LayerGrid), radar.NumRings+2)
	require.Len(t, snap.Layer(scene.LayerRegions), radar.NumQuadrants)
	require.Equal(t, view.Viewport(radar.DefaultConfig(), radar.FullView(true)), snap.Viewport)
	requireContained(t, f.chart)

	f.clock.Flush(10 * time.Second)
	require.False(t, f.chart.RelaxerRunning())
	requireContained(t, f.chart)

	// The scene follows the engine.
	for _, b := range f.chart.Blips() {
		n, ok := f.scene.Node(blipID(b.Name()))
		require.True(t, ok)
		require.InDelta(t, b.Position.X, n.Transform.X, 1e-9)
		require.InDelta(t, b.Position.Y, n.Transform.Y, 1e-9)
	}
}

func TestUnchangedRenderKeepsRelaxerIdle(t *testing.T) {
	f := newFixture(t)
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	f.clock.Flush(10 * time.Second)
	before := f.chart.Blips()

	res, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 4, res.Update)
	require.Zero(t, res.Moves)
	require.False(t, res.RelaxerStarted)
	require.Equal(t, 1, f.chart.RelaxerStarts())
	require.Equal(t, before, f.chart.Blips())
}

func TestRingChangeAnimatesThenRelaxes(t *testing.T) {
	f := newFixture(t)
	items := sampleItems()
	_, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	f.clock.Flush(10 * time.Second)

	items[0].Ring = 2
	res, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 1, res.Moves)
	require.False(t, res.RelaxerStarted)
	require.False(t, f.chart.RelaxerRunning())
	require.Equal(t, 1, f.chart.MovesInFlight())

	b, ok := f.chart.Blip("Go")
	require.True(t, ok)
	require.Equal(t, 2, b.Segment.Ring)

	f.clock.Advance(DefaultMoveDuration + 2*schedule.FrameInterval)
	require.Zero(t, f.chart.MovesInFlight())
	require.Equal(t, 2, f.chart.RelaxerStarts())
	require.True(t, f.chart.RelaxerRunning())

	f.clock.Flush(10 * time.Second)
	requireContained(t, f.chart)
}

func TestRingChangeDuringMoveKeepsRelaxerIdle(t *testing.T) {
	f := newFixture(t)
	items := sampleItems()
	_, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	f.clock.Flush(10 * time.Second)

	items[0].Ring = 2
	_, err = f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	f.clock.Advance(100 * time.Millisecond)
	require.Equal(t, 1, f.chart.MovesInFlight())
	require.False(t, f.chart.RelaxerRunning())

	items[0].Ring = 3
	res, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 1, res.Moves)
	require.Equal(t, 1, f.chart.MovesInFlight())
	require.False(t, res.RelaxerStarted)
	require.False(t, f.chart.RelaxerRunning(), "relaxer must wait for the move to finish")

	f.clock.Advance(DefaultMoveDuration + 2*schedule.FrameInterval)
	require.Zero(t, f.chart.MovesInFlight())
	require.True(t, f.chart.RelaxerRunning())

	f.clock.Flush(10 * time.Second)
	b, _ := f.chart.Blip("Go")
	require.Equal(t, 3, b.Segment.Ring)
	requireContained(t, f.chart)
}

func TestSurfaceFailureKeepsChartUsable(t *testing.T) {
	clock := schedule.NewManual(time.Unix(0, 0))
	sc := scene.New()
	fail := true
	surface := scene.SurfaceFunc(func(cmds ...scene.Command) error {
		if fail {
			return fmt.Errorf("surface detached")
		}
		return sc.Apply(cmds...)
	})
	c, err := New(radar.DefaultConfig(), surface, nil, WithScheduler(clock), WithSeed(7))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	res, err := c.Render(sampleItems(), radar.FullView(true))
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrCodeInternal), "got %v", err)
	require.Equal(t, 4, res.Enter)
	require.Len(t, c.Blips(), 4)

	fail = false
	res, err = c.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.Zero(t, res.Enter)
	require.Equal(t, 4, res.Update)
	require.Len(t, c.Blips(), 4)

	snap := sc.Snapshot()
	require.Len(t, snap.Layer(scene.LayerBlips), 4)
	require.Len(t, snap.Layer(scene.LayerGrid), radar.NumRings+2)
	require.Len(t, snap.Layer(scene.LayerRegions), radar.NumQuadrants)
	for _, b := range c.Blips() {
		n, ok := sc.Node(blipID(b.Name()))
		require.True(t, ok)
		require.InDelta(t, b.Position.X, n.Transform.X, 1e-9)
	}

	res, err = c.Render(sampleItems()[:3], radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 1, res.Exit)
	require.Len(t, sc.Snapshot().Layer(scene.LayerBlips), 3)
}

func TestPartialSurfaceFailureRedraws(t *testing.T) {
	clock := schedule.NewManual(time.Unix(0, 0))
	sc := scene.New()
	budget := 3
	surface := scene.SurfaceFunc(func(cmds ...scene.Command) error {
		if budget >= 0 && len(cmds) > budget {
			err := sc.Apply(cmds[:budget]...)
			budget = -1
			if err != nil {
				return err
			}
			return fmt.Errorf("surface accepted %d of %d commands", 3, len(cmds))
		}
		return sc.Apply(cmds...)
	})
	c, err := New(radar.DefaultConfig(), surface, nil, WithScheduler(clock), WithSeed(7))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.Render(sampleItems(), radar.FullView(true))
	require.Error(t, err)
	require.NotZero(t, sc.Len())

	_, err = c.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.Len(t, sc.Snapshot().Layer(scene.LayerBlips), 4)
	require.Len(t, sc.Snapshot().Layer(scene.LayerGrid), radar.NumRings+2)
}

func TestQuadrantChangeIsAMove(t *testing.T) {
	f := newFixture(t)
	items := sampleItems()
	_, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)

	items[1].Quadrant = 3
	res, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 1, res.Moves)

	f.clock.Flush(10 * time.Second)
	b, _ := f.chart.Blip("Kafka")
	require.Equal(t, 3, b.Segment.Quadrant)
	require.True(t, b.Segment.Contains(b.Position))
}

func TestEnterDuringMoveDefersRelaxer(t *testing.T) {
	f := newFixture(t)
	items := sampleItems()
	_, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	f.clock.Flush(10 * time.Second)

	items[0].Ring = 1
	_, err = f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)

	items = append(items, radar.Item{Name: "Rust", Quadrant: 0, Ring: 1})
	res, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 1, res.Enter)
	require.False(t, res.RelaxerStarted)
	require.Equal(t, 1, f.chart.MovesInFlight())

	f.clock.Flush(10 * time.Second)
	require.Equal(t, 2, f.chart.RelaxerStarts())
	requireContained(t, f.chart)
}

func TestZeroMoveDurationRelaxesImmediately(t *testing.T) {
	f := newFixture(t, WithMoveDuration(0))
	items := sampleItems()
	_, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	f.clock.Flush(10 * time.Second)

	items[3].Ring = 0
	res, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	require.True(t, res.RelaxerStarted)
	require.Zero(t, f.chart.MovesInFlight())
	require.Equal(t, 2, f.chart.RelaxerStarts())
}

func TestExitRemovesBlip(t *testing.T) {
	f := newFixture(t)
	items := sampleItems()
	_, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	require.NoError(t, f.chart.Hover("Kafka"))

	res, err := f.chart.Render(append(items[:1:1], items[2:]...), radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 1, res.Exit)
	require.False(t, res.RelaxerStarted)

	_, ok := f.scene.Node(blipID("Kafka"))
	require.False(t, ok)
	_, ok = f.chart.Blip("Kafka")
	require.False(t, ok)
	_, shown := f.chart.Tooltip()
	require.False(t, shown)
}

func TestEmptyRenderStopsRelaxer(t *testing.T) {
	f := newFixture(t)
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.True(t, f.chart.RelaxerRunning())

	res, err := f.chart.Render(nil, radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 4, res.Exit)
	require.False(t, f.chart.RelaxerRunning())
	require.Empty(t, f.chart.Blips())
	require.Empty(t, f.scene.Snapshot().Layer(scene.LayerBlips))

	// Re-entering from empty starts a new pass.
	res, err = f.chart.Render(sampleItems()[:1], radar.FullView(true))
	require.NoError(t, err)
	require.True(t, res.RelaxerStarted)
}

func TestRenderRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.chart.Render([]radar.Item{{Name: "Go", Quadrant: 4}}, radar.FullView(true))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidQuadrant), "got %v", err)

	_, err = f.chart.Render([]radar.Item{{Name: "Go", Ring: -1}}, radar.FullView(true))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidRing), "got %v", err)

	_, err = f.chart.Render([]radar.Item{{Name: "Go"}, {Name: "Go", Ring: 1}}, radar.FullView(true))
	require.True(t, errors.Is(err, errors.ErrCodeDuplicateKey), "got %v", err)

	_, err = f.chart.Render(sampleItems(), radar.ZoomedView(4, true))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidView), "got %v", err)

	require.Empty(t, f.chart.Blips())
	require.Zero(t, f.scene.Len())
	require.Zero(t, f.chart.RelaxerStarts())
}

func TestDropInvalid(t *testing.T) {
	f := newFixture(t, WithDropInvalid(true))
	items := append(sampleItems(), radar.Item{Name: "Bogus", Quadrant: 7})

	res, err := f.chart.Render(items, radar.FullView(true))
	require.NoError(t, err)
	require.Equal(t, 1, res.Dropped)
	require.Equal(t, 4, res.Enter)
	_, ok := f.chart.Blip("Bogus")
	require.False(t, ok)
}

func TestHoverRegions(t *testing.T) {
	f := newFixture(t)
	cfg := radar.DefaultConfig()
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)

	for i := range radar.NumQuadrants {
		n, ok := f.scene.Node(regionID(i))
		require.True(t, ok)
		require.Zero(t, n.Opacity)
	}

	require.NoError(t, f.chart.HoverQuadrant(1))
	want := []float64{0.3, 1, 0.3, 0.3}
	for i, o := range want {
		n, _ := f.scene.Node(regionID(i))
		require.Equalf(t, o, n.Opacity, "region %d", i)
	}
	tip, shown := f.chart.Tooltip()
	require.True(t, shown)
	require.Equal(t, cfg.Quadrants[3].Name, tip.Text)

	var events []Event
	f.chart.OnEvent(func(e Event) { events = append(events, e) })
	require.NoError(t, f.chart.ClickQuadrant(1))
	require.Equal(t, []string{cfg.Quadrants[(2+1)%4].Route}, f.host.redirects)
	require.Equal(t, []Event{{Kind: EventQuadrantActivated, Quadrant: 3, Route: cfg.Quadrants[3].Route}}, events)

	require.NoError(t, f.chart.LeaveQuadrant())
	for i := range radar.NumQuadrants {
		n, _ := f.scene.Node(regionID(i))
		require.Zero(t, n.Opacity)
	}
	_, shown = f.chart.Tooltip()
	require.False(t, shown)
}

func TestHoverRegionsNeedPointerAndFullView(t *testing.T) {
	f := newFixture(t)
	_, err := f.chart.Render(sampleItems(), radar.FullView(false))
	require.NoError(t, err)
	require.Empty(t, f.scene.Snapshot().Layer(scene.LayerRegions))
	require.True(t, errors.Is(f.chart.HoverQuadrant(0), errors.ErrCodeInvalidView))
	require.True(t, errors.Is(f.chart.ClickQuadrant(0), errors.ErrCodeInvalidView))
	require.NoError(t, f.chart.LeaveQuadrant())

	_, err = f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.True(t, errors.Is(f.chart.HoverQuadrant(4), errors.ErrCodeInvalidQuadrant))
	require.Equal(t, 0, f.chart.QuadrantAt(view.HoverRegions(radar.DefaultConfig(), view.DefaultAxisBand)[0].Bounds().Center()))
}

func TestHoverAndClickItem(t *testing.T) {
	f := newFixture(t)
	cfg := radar.DefaultConfig()
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)

	var events []Event
	f.chart.OnEvent(func(e Event) { events = append(events, e) })

	require.NoError(t, f.chart.Hover("Kafka"))
	require.Equal(t, []string{"Kafka"}, f.host.highlighted)
	n, _ := f.scene.Node(idTooltip)
	require.Equal(t, 1.0, n.Opacity)
	tip, shown := f.chart.Tooltip()
	require.True(t, shown)
	require.Equal(t, "Kafka", tip.Text)

	require.NoError(t, f.chart.Click("Kafka"))
	token := cfg.Quadrants[1].Route + "/Kafka"
	require.Equal(t, []string{token}, f.host.selected)

	require.NoError(t, f.chart.Unhover())
	require.Equal(t, []string{"Kafka", ""}, f.host.highlighted)
	n, _ = f.scene.Node(idTooltip)
	require.Zero(t, n.Opacity)

	require.Equal(t, []EventKind{EventItemHighlighted, EventItemSelected, EventItemHighlighted},
		[]EventKind{events[0].Kind, events[1].Kind, events[2].Kind})
	require.Equal(t, token, events[1].Token)
	require.Empty(t, events[2].Item)

	require.True(t, errors.Is(f.chart.Hover("Nope"), errors.ErrCodeItemNotFound))
	require.True(t, errors.Is(f.chart.Click("Nope"), errors.ErrCodeItemNotFound))
}

func TestHighlightDoesNotEcho(t *testing.T) {
	f := newFixture(t)
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)

	require.NoError(t, f.chart.Highlight("Go"))
	_, shown := f.chart.Tooltip()
	require.True(t, shown)
	require.Empty(t, f.host.highlighted)

	require.NoError(t, f.chart.Highlight(""))
	_, shown = f.chart.Tooltip()
	require.False(t, shown)
}

func TestHeadlessTooltipIsEmpty(t *testing.T) {
	f := newFixture(t, WithMeasurer(view.Headless{}))
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.NoError(t, f.chart.Hover("Go"))
	tip, shown := f.chart.Tooltip()
	require.True(t, shown)
	require.True(t, tip.Empty())
}

func TestZoom(t *testing.T) {
	f := newFixture(t)
	cfg := radar.DefaultConfig()
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)

	vs := radar.ZoomedView(0, true)
	_, err = f.chart.Render(sampleItems(), vs)
	require.NoError(t, err)
	target := view.Viewport(cfg, vs)
	require.Equal(t, target, f.chart.Viewport())
	require.NotEqual(t, target, f.scene.Viewport())

	f.clock.Advance(DefaultZoomDuration + 2*schedule.FrameInterval)
	require.Equal(t, target, f.scene.Viewport())

	snap := f.scene.Snapshot()
	require.Empty(t, snap.Layer(scene.LayerRegions))
	require.Len(t, snap.Layer(scene.LayerLegend), 1)
	require.Len(t, snap.Layer(scene.LayerLabels), radar.NumRings)

	require.NoError(t, f.chart.HoverRing(2))
	tip, _ := f.chart.Tooltip()
	require.Equal(t, cfg.Rings[2].Tooltip, tip.Text)
	require.NoError(t, f.chart.LeaveRing())

	// Back to full view swaps the decorations back.
	_, err = f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	snap = f.scene.Snapshot()
	require.Len(t, snap.Layer(scene.LayerRegions), radar.NumQuadrants)
	require.Empty(t, snap.Layer(scene.LayerLegend))
	require.Empty(t, snap.Layer(scene.LayerLabels))
	require.True(t, errors.Is(f.chart.HoverRing(0), errors.ErrCodeInvalidView))
}

func TestNumberedLabels(t *testing.T) {
	f := newFixture(t)
	vs := radar.FullView(true)
	vs.Numbered = true
	_, err := f.chart.Render(sampleItems(), vs)
	require.NoError(t, err)

	labels := map[string]string{}
	for _, b := range f.chart.Blips() {
		labels[b.Name()] = b.Label
	}
	require.Equal(t, map[string]string{"Terraform": "1", "Pairing": "2", "Kafka": "3", "Go": "4"}, labels)

	// Labels go away in zoomed view and the blip shapes are redrawn.
	_, err = f.chart.Render(sampleItems(), radar.ZoomedView(0, true))
	require.NoError(t, err)
	n, _ := f.scene.Node(blipID("Go"))
	require.Len(t, n.Shape.Children, 1)
}

func TestSettle(t *testing.T) {
	f := newFixture(t)
	var items []radar.Item
	for i := range 12 {
		items = append(items, radar.Item{Name: string(rune('A' + i)), Quadrant: 2, Ring: 0})
	}
	_, err := f.chart.Render(items, radar.FullView(false))
	require.NoError(t, err)

	items[0].Ring = 3
	_, err = f.chart.Render(items, radar.FullView(false))
	require.NoError(t, err)

	require.NoError(t, f.chart.Settle(context.Background()))
	require.False(t, f.chart.RelaxerRunning())
	require.Zero(t, f.chart.MovesInFlight())
	requireContained(t, f.chart)
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	_, err := f.chart.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)

	f.chart.Close()
	require.False(t, f.chart.RelaxerRunning())
	require.Empty(t, f.chart.Blips())
	require.Zero(t, f.clock.Pending())

	_, err = f.chart.Render(sampleItems(), radar.FullView(true))
	require.True(t, errors.Is(err, errors.ErrCodeClosed))
	require.True(t, errors.Is(f.chart.Hover("Go"), errors.ErrCodeClosed))
	require.True(t, errors.Is(f.chart.Settle(context.Background()), errors.ErrCodeClosed))
}

func TestDefaultLoopScheduler(t *testing.T) {
	c, err := New(radar.DefaultConfig(), scene.New(), nil, WithRelax(relax.Options{Budget: 50 * time.Millisecond}))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Render(sampleItems(), radar.FullView(true))
	require.NoError(t, err)
	require.NoError(t, c.Settle(context.Background()))
	require.False(t, c.RelaxerRunning())
	require.Len(t, c.Blips(), 4)
}
