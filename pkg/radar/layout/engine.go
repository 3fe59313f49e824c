package layout

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/segment"
)

// numberingOrder is the quadrant visiting order for numeric labels.
var numberingOrder = [radar.NumQuadrants]int{2, 3, 1, 0}

// Blip is the plotted state of a single item.
type Blip struct {
	Item     radar.Item      `json:"item"`
	Segment  segment.Segment `json:"segment"`
	Position geom.Point      `json:"position"`
	Color    string          `json:"color"`
	Label    string          `json:"label,omitempty"`
	Symbol   radar.Symbol    `json:"symbol"`
}

// Name returns the blip's identity key.
func (b Blip) Name() string { return b.Item.Name }

// Engine owns item positions across render passes.
type Engine struct {
	cfg   radar.Config
	rng   segment.Source
	blips map[string]*Blip
	order []string
}

// New creates an engine. rng drives seed positions; pass a seeded
// segment.NewSource for reproducible layouts.
func New(cfg radar.Config, rng segment.Source) *Engine {
	if rng == nil {
		rng = segment.NewSource(42)
	}
	return &Engine{
		cfg:   cfg,
		rng:   rng,
		blips: make(map[string]*Blip),
	}
}

// Config returns the engine's chart configuration.
func (e *Engine) Config() radar.Config { return e.cfg }

// Len returns the number of blips.
func (e *Engine) Len() int { return len(e.order) }

// Has reports whether a blip named name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.blips[name]
	return ok
}

// Blip returns a copy of the named blip.
func (e *Engine) Blip(name string) (Blip, bool) {
	b, ok := e.blips[name]
	if !ok {
		return Blip{}, false
	}
	return *b, true
}

// Blips returns copies of all blips in insertion order.
func (e *Engine) Blips() []Blip {
	out := make([]Blip, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, *e.blips[name])
	}
	return out
}

// Seed places a newly appeared item at a random admissible position in its
// segment. Seeding an existing name is an error.
func (e *Engine) Seed(it radar.Item) (Blip, error) {
	if e.Has(it.Name) {
		return Blip{}, errors.New(errors.ErrCodeDuplicateKey, "item %q already placed", it.Name)
	}
	seg, err := e.segmentFor(it)
	if err != nil {
		return Blip{}, err
	}
	b := &Blip{
		Item:     it,
		Segment:  seg,
		Position: seg.Seed(e.rng),
		Color:    e.colorFor(it),
		Symbol:   radar.SymbolFor(it),
	}
	e.blips[it.Name] = b
	e.order = append(e.order, it.Name)
	return *b, nil
}

// Retain refreshes an existing blip whose cell has not changed. The position
// is left untouched.
func (e *Engine) Retain(it radar.Item) (Blip, error) {
	b, err := e.lookup(it)
	if err != nil {
		return Blip{}, err
	}
	if b.Item.Quadrant != it.Quadrant || b.Item.Ring != it.Ring {
		return Blip{}, errors.New(errors.ErrCodeInvalidInput,
			"item %q changed cell %s -> %s; use Reassign", it.Name, b.Item.Key(), it.Key())
	}
	b.Item = it
	b.Color = e.colorFor(it)
	b.Symbol = radar.SymbolFor(it)
	return *b, nil
}

// Reassign moves an existing blip into a new cell. The segment is rebuilt
// and the current position kept; the returned target is a freshly sampled
// admissible point of the new segment.
func (e *Engine) Reassign(it radar.Item) (geom.Point, error) {
	b, err := e.lookup(it)
	if err != nil {
		return geom.Point{}, err
	}
	seg, err := e.segmentFor(it)
	if err != nil {
		return geom.Point{}, err
	}
	b.Item = it
	b.Segment = seg
	b.Color = e.colorFor(it)
	b.Symbol = radar.SymbolFor(it)
	return seg.Seed(e.rng), nil
}

// Remove discards a blip. Removing an unknown name is a no-op.
func (e *Engine) Remove(name string) {
	if _, ok := e.blips[name]; !ok {
		return
	}
	delete(e.blips, name)
	e.order = slices.DeleteFunc(e.order, func(n string) bool { return n == name })
}

// Reset discards all blips.
func (e *Engine) Reset() {
	clear(e.blips)
	e.order = e.order[:0]
}

// SetPosition writes p, clipped through the blip's segment, and returns the
// stored position.
func (e *Engine) SetPosition(name string, p geom.Point) (geom.Point, bool) {
	b, ok := e.blips[name]
	if !ok {
		return geom.Point{}, false
	}
	b.Position = b.Segment.Clip(p)
	return b.Position, true
}

// MoveTo writes p unclipped. It is reserved for transitions interpolating
// between two admissible points, whose path may cross a ring boundary.
func (e *Engine) MoveTo(name string, p geom.Point) bool {
	b, ok := e.blips[name]
	if !ok {
		return false
	}
	b.Position = p
	return true
}

// cell is one quadrant and ring pair.
type cell struct{ quadrant, ring int }

// Number assigns sequential numeric labels and returns them by name.
func (e *Engine) Number() map[string]string {
	cells := lo.GroupBy(lo.Map(e.order, func(name string, _ int) *Blip {
		return e.blips[name]
	}), func(b *Blip) cell {
		return cell{b.Item.Quadrant, b.Item.Ring}
	})

	labels := make(map[string]string, len(e.order))
	next := 1
	for _, q := range numberingOrder {
		for r := range radar.NumRings {
			blips := cells[cell{q, r}]
			slices.SortFunc(blips, func(a, b *Blip) int {
				if c := strings.Compare(strings.ToLower(a.Item.Name), strings.ToLower(b.Item.Name)); c != 0 {
					return c
				}
				return strings.Compare(a.Item.Name, b.Item.Name)
			})
			for _, b := range blips {
				b.Label = strconv.Itoa(next)
				labels[b.Item.Name] = b.Label
				next++
			}
		}
	}
	return labels
}

// ClearLabels removes all numeric labels.
func (e *Engine) ClearLabels() {
	for _, b := range e.blips {
		b.Label = ""
	}
}

func (e *Engine) lookup(it radar.Item) (*Blip, error) {
	b, ok := e.blips[it.Name]
	if !ok {
		return nil, errors.New(errors.ErrCodeItemNotFound, "item %q has no position", it.Name)
	}
	return b, nil
}

func (e *Engine) segmentFor(it radar.Item) (segment.Segment, error) {
	if err := e.cfg.ValidateItem(it); err != nil {
		return segment.Segment{}, err
	}
	return segment.Build(e.cfg, it.Quadrant, it.Ring)
}

func (e *Engine) colorFor(it radar.Item) string {
	if c := e.cfg.Rings[it.Ring].Color; c != "" {
		return c
	}
	return e.cfg.Quadrants[it.Quadrant].Color
}
