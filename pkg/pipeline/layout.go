package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/techradar/pkg/radar/chart"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
)

// Layout is a settled chart scene.
type Layout struct {
	Scene  scene.Snapshot `json:"scene"`
	Render chart.Result   `json:"render"`
	Seed   uint64         `json:"seed"`
}

// MarshalLayout serializes l for caching.
func MarshalLayout(l Layout) ([]byte, error) { return json.Marshal(l) }

// UnmarshalLayout is the inverse of [MarshalLayout].
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}

// ComputeLayout renders sel once on a headless chart driven by a virtual
// clock, then settles it. The result depends only on sel and opts.
func ComputeLayout(ctx context.Context, sel Selection, opts Options) (Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return Layout{}, err
	}
	clock := schedule.NewManual(time.Unix(0, 0))
	sc := scene.New()
	c, err := chart.New(sel.Config, sc, nil, append(opts.ChartOptions(), chart.WithScheduler(clock))...)
	if err != nil {
		return Layout{}, err
	}
	defer c.Close()

	res, err := c.Render(sel.Items, opts.ViewState())
	if err != nil {
		return Layout{}, err
	}
	if err := c.Settle(ctx); err != nil {
		return Layout{}, fmt.Errorf("settle: %w", err)
	}
	return Layout{Scene: sc.Snapshot(), Render: res, Seed: opts.Seed}, nil
}
