// Package reconcile classifies the difference between two consecutive item
// collections.
//
// Items are keyed by name. Every key of the current collection that is
// missing from the previous one is an ENTER, every key only in the previous
// collection is an EXIT, and every shared key is an UPDATE. The three sets
// partition the union of both collections exactly.
//
// The reconciler never touches positions; the layout engine acts on a
// [Plan].
package reconcile

import (
	"github.com/samber/lo"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
)

// Kind is the classification of a key.
type Kind int

const (
	KindEnter Kind = iota
	KindUpdate
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindEnter:
		return "enter"
	case KindUpdate:
		return "update"
	case KindExit:
		return "exit"
	}
	return "unknown"
}

// Update pairs the previous and current snapshot of a shared key.
type Update struct {
	Prev            radar.Item
	Cur             radar.Item
	RingChanged     bool
	QuadrantChanged bool
}

// NeedsMove reports whether the item changed cell and must be animated to a
// new target. Unchanged updates are pure no-ops for geometry.
func (u Update) NeedsMove() bool { return u.RingChanged || u.QuadrantChanged }

// Plan is the result of [Diff].
type Plan struct {
	Enter  []radar.Item
	Update []Update
	Exit   []radar.Item
}

// Diff classifies cur against prev. Enter and Update follow the order of
// cur; Exit follows the order of prev. Duplicate names in either collection
// are a data error.
func Diff(prev, cur []radar.Item) (Plan, error) {
	if err := checkUnique("previous", prev); err != nil {
		return Plan{}, err
	}
	if err := checkUnique("current", cur); err != nil {
		return Plan{}, err
	}

	before := lo.KeyBy(prev, func(it radar.Item) string { return it.Name })
	now := lo.KeyBy(cur, func(it radar.Item) string { return it.Name })

	var plan Plan
	for _, it := range cur {
		old, ok := before[it.Name]
		if !ok {
			plan.Enter = append(plan.Enter, it)
			continue
		}
		plan.Update = append(plan.Update, Update{
			Prev:            old,
			Cur:             it,
			RingChanged:     old.Ring != it.Ring,
			QuadrantChanged: old.Quadrant != it.Quadrant,
		})
	}
	plan.Exit = lo.Filter(prev, func(it radar.Item, _ int) bool {
		_, ok := now[it.Name]
		return !ok
	})
	return plan, nil
}

// Moves returns the updates that need an animated move.
func (p Plan) Moves() []Update {
	return lo.Filter(p.Update, func(u Update, _ int) bool { return u.NeedsMove() })
}

// Empty reports whether the plan changes nothing: no enters, no exits and
// no moves.
func (p Plan) Empty() bool {
	return len(p.Enter) == 0 && len(p.Exit) == 0 && len(p.Moves()) == 0
}

// Keys returns the classification of every key in the union of both
// collections.
func (p Plan) Keys() map[string]Kind {
	out := make(map[string]Kind, len(p.Enter)+len(p.Update)+len(p.Exit))
	for _, it := range p.Enter {
		out[it.Name] = KindEnter
	}
	for _, u := range p.Update {
		out[u.Cur.Name] = KindUpdate
	}
	for _, it := range p.Exit {
		out[it.Name] = KindExit
	}
	return out
}

func checkUnique(which string, items []radar.Item) error {
	dups := lo.FindDuplicatesBy(items, func(it radar.Item) string { return it.Name })
	if len(dups) == 0 {
		return nil
	}
	names := lo.Map(dups, func(it radar.Item, _ int) string { return it.Name })
	return errors.New(errors.ErrCodeDuplicateKey, "%s collection has duplicate names: %v", which, names)
}
