package chart_test

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/chart"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/radar/schedule"
)

func ExampleChart_Render() {
	clock := schedule.NewManual(time.Unix(0, 0))
	sc := scene.New()
	c, err := chart.New(radar.DefaultConfig(), sc, nil, chart.WithScheduler(clock))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer c.Close()

	items := []radar.Item{
		{Name: "Go", Quadrant: 0, Ring: 0},
		{Name: "Kubernetes", Quadrant: 2, Ring: 1, IsNew: true},
	}
	res, _ := c.Render(items, radar.FullView(true))
	fmt.Println("entered:", res.Enter, "relaxing:", res.RelaxerStarted)

	// Drive the relaxer to completion on the virtual clock.
	clock.Flush(10 * time.Second)

	// Moving Go to Trial animates it, then relaxes again.
	items[0].Ring = 1
	res, _ = c.Render(items, radar.FullView(true))
	fmt.Println("moves:", res.Moves)
	_ = c.Settle(context.Background())

	b, _ := c.Blip("Go")
	fmt.Println("inside Trial:", b.Segment.Ring == 1 && b.Segment.Contains(b.Position))
	fmt.Println("blips drawn:", len(sc.Snapshot().Layer(scene.LayerBlips)))
	// Output:
	// entered: 2 relaxing: true
	// moves: 1
	// inside Trial: true
	// blips drawn: 2
}

func ExampleChart_ClickQuadrant() {
	clock := schedule.NewManual(time.Unix(0, 0))
	host := chart.HostFuncs{
		Navigate: func(route string) { fmt.Println("redirect:", route) },
	}
	c, _ := chart.New(radar.DefaultConfig(), scene.New(), host, chart.WithScheduler(clock))
	defer c.Close()

	_, _ = c.Render([]radar.Item{{Name: "Go"}}, radar.FullView(true))

	// Region 0 is the top-left screen quadrant.
	_ = c.ClickQuadrant(0)
	// Output:
	// redirect: platforms-infra-and-data
}
