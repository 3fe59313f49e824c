// Package pkg provides the core libraries for techradar chart layout.
//
// # Overview
//
// Techradar plots technologies as blips on a radar of four quadrants and four
// concentric rings. Every blip is seeded at a random point of its segment and
// a collision relaxation then pushes overlapping blips apart while keeping
// each inside its segment. The pkg directory is organized into four areas:
//
//  1. [radar] - Domain logic (configuration, layout, relaxation, the live chart)
//  2. [io] and [source] - Definition documents and item sources
//  3. [pipeline] - Orchestration (load → layout → render) with caching
//  4. [session], [cache], [observability] - Infrastructure shared by the CLI
//     and the server
//
// # Architecture
//
// The typical data flow through techradar:
//
//	TOML/YAML/JSON definition, MongoDB collection
//	         ↓
//	    [io] / [source] (decode, resolve quadrant and ring references)
//	         ↓
//	    [radar/chart] (reconcile items, place blips, relax, animate)
//	         ↓
//	    [radar/scene] (retained scene graph of the chart)
//	         ↓
//	    [radar/sink] (SVG, PNG, JSON, DOT output)
//
// # Quick Start
//
// Render a definition file to SVG:
//
//	def, _ := io.Load("radar.toml")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{Definition: def})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// Drive a live chart:
//
//	sc := scene.New()
//	c, _ := chart.New(def.Config, sc, chart.HostFuncs{
//	    Selected: func(token string) { fmt.Println("open", token) },
//	})
//	defer c.Close()
//	c.Render(def.Items, radar.FullView(true))
//	c.Hover("Go")
//
// # Main Packages
//
// ## Chart
//
// [radar] - Quadrants, rings, items, view states and their validation.
//
// [radar/segment] - Polar segments of one quadrant and ring, with clipping of
// points and random seed positions.
//
// [radar/layout] - Owns blip positions across render passes, assigns colors,
// symbols and numeric labels.
//
// [radar/relax] - Collision relaxation on a scheduler tick, stopped on
// convergence or a time budget.
//
// [radar/reconcile] - Keyed enter/update/exit diffing of items between
// renders.
//
// [radar/view] - Viewports, legends, hover regions, ring labels and tooltips.
//
// [radar/chart] - The live chart: render passes, move animations and
// pointer interactions, reported through a host and events.
//
// [radar/scene], [radar/schedule] - The surface a chart draws into and the
// clock it runs on.
//
// ## Infrastructure
//
// [pipeline] - The headless render pipeline used by the CLI and the server.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [session] - Live charts kept for remote clients.
//
// [observability] - Hooks for metrics and tracing; [observability/prom]
// implements them with Prometheus.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/radar/...           # Chart packages
//	go test -run Example ./pkg/...    # Examples only
//
// [radar]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar
// [radar/segment]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/segment
// [radar/layout]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/layout
// [radar/relax]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/relax
// [radar/reconcile]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/reconcile
// [radar/view]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/view
// [radar/chart]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/chart
// [radar/scene]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/scene
// [radar/schedule]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/schedule
// [radar/sink]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/radar/sink
// [io]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/io
// [source]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/source
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/session
// [observability]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/techradar/pkg/observability/prom
package pkg
