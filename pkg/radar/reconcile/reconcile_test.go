package reconcile

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
)

func items(specs ...string) []radar.Item {
	out := make([]radar.Item, 0, len(specs))
	for _, s := range specs {
		var it radar.Item
		fmt.Sscanf(s, "%s %d %d", &it.Name, &it.Quadrant, &it.Ring)
		out = append(out, it)
	}
	return out
}

func names(its []radar.Item) []string {
	out := make([]string, len(its))
	for i, it := range its {
		out[i] = it.Name
	}
	return out
}

func TestDiffClassifies(t *testing.T) {
	prev := items("a 0 0", "b 1 0", "c 2 1", "d 3 3")
	cur := items("e 0 1", "b 1 0", "c 2 3", "a 1 0")

	plan, err := Diff(prev, cur)
	if err != nil {
		t.Fatalf("Diff() error: %v", err)
	}

	if got := names(plan.Enter); fmt.Sprint(got) != "[e]" {
		t.Errorf("Enter = %v, want [e]", got)
	}
	if got := names(plan.Exit); fmt.Sprint(got) != "[d]" {
		t.Errorf("Exit = %v, want [d]", got)
	}
	if len(plan.Update) != 3 {
		t.Fatalf("Update = %d entries, want 3", len(plan.Update))
	}

	tests := []struct {
		name          string
		ring, quad    bool
		wantNeedsMove bool
	}{
		{"b", false, false, false},
		{"c", true, false, true},
		{"a", false, true, true},
	}
	for i, tt := range tests {
		u := plan.Update[i]
		if u.Cur.Name != tt.name {
			t.Errorf("Update[%d] = %q, want %q", i, u.Cur.Name, tt.name)
			continue
		}
		if u.RingChanged != tt.ring || u.QuadrantChanged != tt.quad || u.NeedsMove() != tt.wantNeedsMove {
			t.Errorf("Update %q = ring %v quad %v move %v, want %v %v %v",
				tt.name, u.RingChanged, u.QuadrantChanged, u.NeedsMove(), tt.ring, tt.quad, tt.wantNeedsMove)
		}
	}

	if got := len(plan.Moves()); got != 2 {
		t.Errorf("Moves() = %d, want 2", got)
	}
}

func TestDiffUnchangedIsEmpty(t *testing.T) {
	cur := items("a 0 0", "b 1 0", "c 2 0", "d 3 0")
	plan, err := Diff(cur, cur)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Empty() {
		t.Errorf("Diff(x, x) = %+v, want empty plan", plan)
	}
	if len(plan.Update) != 4 {
		t.Errorf("Update = %d, want 4", len(plan.Update))
	}
}

func TestDiffFromEmpty(t *testing.T) {
	plan, err := Diff(nil, items("a 0 0", "b 0 1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Enter) != 2 || len(plan.Update) != 0 || len(plan.Exit) != 0 {
		t.Errorf("Diff(nil, 2 items) = %+v", plan)
	}

	plan, _ = Diff(items("a 0 0"), nil)
	if len(plan.Exit) != 1 {
		t.Errorf("Diff(1 item, nil) exits = %d, want 1", len(plan.Exit))
	}
}

func TestDiffDuplicates(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur []radar.Item
	}{
		{"current", nil, items("a 0 0", "a 1 1")},
		{"previous", items("b 0 0", "b 0 0"), items("b 0 0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Diff(tt.prev, tt.cur); !errors.Is(err, errors.ErrCodeDuplicateKey) {
				t.Errorf("Diff() = %v, want DUPLICATE_KEY", err)
			}
		})
	}
}

// TestDiffPartition checks that Enter/Update/Exit partition the union of
// keys for random collections.
func TestDiffPartition(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	pick := func() []radar.Item {
		var out []radar.Item
		for i := range 20 {
			if rng.IntN(2) == 0 {
				out = append(out, radar.Item{Name: fmt.Sprintf("t%02d", i), Quadrant: rng.IntN(4), Ring: rng.IntN(4)})
			}
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	for trial := range 50 {
		a, b := pick(), pick()
		plan, err := Diff(a, b)
		if err != nil {
			t.Fatal(err)
		}

		inA := map[string]bool{}
		inB := map[string]bool{}
		for _, it := range a {
			inA[it.Name] = true
		}
		for _, it := range b {
			inB[it.Name] = true
		}

		keys := plan.Keys()
		if got, want := len(keys), len(plan.Enter)+len(plan.Update)+len(plan.Exit); got != want {
			t.Fatalf("trial %d: classes overlap (%d keys, %d entries)", trial, got, want)
		}
		union := map[string]bool{}
		for k := range inA {
			union[k] = true
		}
		for k := range inB {
			union[k] = true
		}
		if len(keys) != len(union) {
			t.Fatalf("trial %d: %d keys classified, union has %d", trial, len(keys), len(union))
		}
		for k, kind := range keys {
			var want Kind
			switch {
			case inA[k] && inB[k]:
				want = KindUpdate
			case inB[k]:
				want = KindEnter
			default:
				want = KindExit
			}
			if kind != want {
				t.Errorf("trial %d: %q = %v, want %v", trial, k, kind, want)
			}
		}
	}
}
