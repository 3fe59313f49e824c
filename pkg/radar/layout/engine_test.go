package layout

import (
	"testing"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/segment"
)

func newEngine() *Engine {
	return New(radar.DefaultConfig(), segment.NewSource(1))
}

func TestSeedPlacesInsideSegment(t *testing.T) {
	e := newEngine()
	for q := range radar.NumQuadrants {
		for r := range radar.NumRings {
			it := radar.Item{Name: string(rune('a'+q)) + string(rune('0'+r)), Quadrant: q, Ring: r}
			b, err := e.Seed(it)
			if err != nil {
				t.Fatalf("Seed(%v) error: %v", it, err)
			}
			if !b.Segment.Contains(b.Position) {
				t.Errorf("Seed(%v) position %v outside segment", it, b.Position)
			}
		}
	}
	if e.Len() != 16 {
		t.Errorf("Len() = %d, want 16", e.Len())
	}
}

func TestSeedRejects(t *testing.T) {
	e := newEngine()
	if _, err := e.Seed(radar.Item{Name: "Go", Ring: 4}); !errors.Is(err, errors.ErrCodeInvalidRing) {
		t.Errorf("Seed(ring 4) = %v, want INVALID_RING", err)
	}
	if _, err := e.Seed(radar.Item{Name: "Go", Quadrant: 9}); !errors.Is(err, errors.ErrCodeInvalidQuadrant) {
		t.Errorf("Seed(quadrant 9) = %v, want INVALID_QUADRANT", err)
	}
	if e.Len() != 0 {
		t.Errorf("rejected items were stored: Len() = %d", e.Len())
	}

	if _, err := e.Seed(radar.Item{Name: "Go"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Seed(radar.Item{Name: "Go"}); !errors.Is(err, errors.ErrCodeDuplicateKey) {
		t.Errorf("second Seed() = %v, want DUPLICATE_KEY", err)
	}
}

func TestRetainKeepsPosition(t *testing.T) {
	e := newEngine()
	first, _ := e.Seed(radar.Item{Name: "Go", Quadrant: 1, Ring: 2})

	b, err := e.Retain(radar.Item{Name: "Go", Quadrant: 1, Ring: 2, Link: "https://go.dev", Moved: 1})
	if err != nil {
		t.Fatalf("Retain() error: %v", err)
	}
	if b.Position != first.Position {
		t.Errorf("Retain() position = %v, want %v", b.Position, first.Position)
	}
	if b.Item.Link != "https://go.dev" {
		t.Errorf("Retain() did not refresh pass-through fields: %+v", b.Item)
	}
	if b.Symbol != radar.SymbolTriangleUp {
		t.Errorf("Retain() symbol = %v, want triangle-up", b.Symbol)
	}

	if _, err := e.Retain(radar.Item{Name: "Go", Quadrant: 1, Ring: 3}); err == nil {
		t.Error("Retain() across rings succeeded, want error")
	}
	if _, err := e.Retain(radar.Item{Name: "Rust"}); !errors.Is(err, errors.ErrCodeItemNotFound) {
		t.Errorf("Retain(unknown) = %v, want ITEM_NOT_FOUND", err)
	}
}

func TestReassign(t *testing.T) {
	e := newEngine()
	before, _ := e.Seed(radar.Item{Name: "Go", Quadrant: 0, Ring: 0})

	target, err := e.Reassign(radar.Item{Name: "Go", Quadrant: 0, Ring: 2})
	if err != nil {
		t.Fatalf("Reassign() error: %v", err)
	}

	b, _ := e.Blip("Go")
	if b.Position != before.Position {
		t.Errorf("Reassign() moved the blip to %v; position must stay until the transition", b.Position)
	}
	if b.Segment.Ring != 2 {
		t.Errorf("Reassign() segment ring = %d, want 2", b.Segment.Ring)
	}
	if !b.Segment.Contains(target) {
		t.Errorf("Reassign() target %v outside ring 2 segment", target)
	}
	if _, err := e.Reassign(radar.Item{Name: "Go", Quadrant: 0, Ring: 7}); !errors.Is(err, errors.ErrCodeInvalidRing) {
		t.Errorf("Reassign(ring 7) = %v, want INVALID_RING", err)
	}
}

func TestSetPositionClips(t *testing.T) {
	e := newEngine()
	b, _ := e.Seed(radar.Item{Name: "Go", Quadrant: 3, Ring: 1})

	got, ok := e.SetPosition("Go", geom.Pt(-500, 500))
	if !ok {
		t.Fatal("SetPosition() on existing blip returned false")
	}
	if !b.Segment.Contains(got) {
		t.Errorf("SetPosition() stored %v outside its segment", got)
	}

	if !e.MoveTo("Go", geom.Pt(1, 1)) {
		t.Fatal("MoveTo() returned false")
	}
	if b, _ := e.Blip("Go"); b.Position != geom.Pt(1, 1) {
		t.Errorf("MoveTo() stored %v, want unclipped (1,1)", b.Position)
	}

	if _, ok := e.SetPosition("nope", geom.Pt(0, 0)); ok {
		t.Error("SetPosition(unknown) returned true")
	}
}

func TestRemoveAndReset(t *testing.T) {
	e := newEngine()
	for _, n := range []string{"a", "b", "c"} {
		e.Seed(radar.Item{Name: n})
	}
	e.Remove("b")
	e.Remove("missing")

	var names []string
	for _, b := range e.Blips() {
		names = append(names, b.Name())
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("Blips() after Remove = %v, want [a c]", names)
	}

	e.Reset()
	if e.Len() != 0 || e.Has("a") {
		t.Errorf("Reset() left %d blips", e.Len())
	}
}

func TestNumber(t *testing.T) {
	e := newEngine()
	items := []radar.Item{
		{Name: "zeta", Quadrant: 0, Ring: 0},
		{Name: "Alpha", Quadrant: 0, Ring: 0},
		{Name: "kappa", Quadrant: 2, Ring: 1},
		{Name: "beta", Quadrant: 2, Ring: 0},
		{Name: "gamma", Quadrant: 3, Ring: 3},
		{Name: "delta", Quadrant: 1, Ring: 0},
	}
	for _, it := range items {
		if _, err := e.Seed(it); err != nil {
			t.Fatal(err)
		}
	}

	got := e.Number()
	want := map[string]string{
		"beta":  "1",
		"kappa": "2",
		"gamma": "3",
		"delta": "4",
		"Alpha": "5",
		"zeta":  "6",
	}
	for name, label := range want {
		if got[name] != label {
			t.Errorf("Number()[%q] = %q, want %q", name, got[name], label)
		}
		if b, _ := e.Blip(name); b.Label != label {
			t.Errorf("Blip(%q).Label = %q, want %q", name, b.Label, label)
		}
	}

	e.ClearLabels()
	if b, _ := e.Blip("beta"); b.Label != "" {
		t.Errorf("ClearLabels() left label %q", b.Label)
	}
}

func TestBodies(t *testing.T) {
	e := newEngine()
	e.Seed(radar.Item{Name: "Go", Quadrant: 2, Ring: 0})

	bodies := e.Bodies()
	if len(bodies) != 1 || bodies[0].Name() != "Go" {
		t.Fatalf("Bodies() = %v", bodies)
	}
	body := bodies[0]
	c := body.Constrain(geom.Pt(300, 300))
	b, _ := e.Blip("Go")
	if !b.Segment.Contains(c) {
		t.Errorf("Constrain() = %v outside segment", c)
	}
	body.SetPosition(c)
	if body.Position() != c {
		t.Errorf("Position() = %v, want %v", body.Position(), c)
	}
	if !body.Active() {
		t.Error("Active() = false for a live blip")
	}

	e.Remove("Go")
	if body.Active() {
		t.Error("Active() = true after Remove")
	}
	body.SetPosition(geom.Pt(-1, -1))
	if body.Position() != c {
		t.Error("inactive body accepted a write")
	}
}
