package sink

import (
	"encoding/json"
	"strconv"

	"github.com/matzehuels/techradar/pkg/radar/geom"
	"github.com/matzehuels/techradar/pkg/radar/scene"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title  string
	seed   uint64
	hidden bool
}

// WithJSONTitle records a title in the output.
func WithJSONTitle(t string) JSONOption { return func(r *jsonRenderer) { r.title = t } }

// WithJSONSeed records the layout seed, enabling reproducible re-rendering.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// WithJSONHidden keeps nodes with zero opacity, such as idle hover regions.
func WithJSONHidden() JSONOption { return func(r *jsonRenderer) { r.hidden = true } }

type jsonOutput struct {
	Title    string       `json:"title,omitempty"`
	Seed     uint64       `json:"seed,omitempty"`
	Viewport geom.Rect    `json:"viewport"`
	Blips    []jsonBlip   `json:"blips"`
	Nodes    []scene.Node `json:"nodes"`
}

// jsonBlip flattens a blip node for consumers that only want positions.
type jsonBlip struct {
	Name     string     `json:"name"`
	Quadrant int        `json:"quadrant"`
	Ring     int        `json:"ring"`
	Symbol   string     `json:"symbol"`
	Link     string     `json:"link,omitempty"`
	Position geom.Point `json:"position"`
}

// RenderJSON serializes snap with a flattened blip list in front.
func RenderJSON(snap scene.Snapshot, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, o := range opts {
		o(&r)
	}

	out := jsonOutput{
		Title:    r.title,
		Seed:     r.seed,
		Viewport: snap.Viewport,
		Blips:    []jsonBlip{},
		Nodes:    make([]scene.Node, 0, len(snap.Nodes)),
	}
	for _, n := range snap.Nodes {
		if n.Opacity == 0 && !r.hidden {
			continue
		}
		out.Nodes = append(out.Nodes, n)
		if n.Layer != scene.LayerBlips {
			continue
		}
		d := n.Shape.Data
		q, _ := strconv.Atoi(d["quadrant"])
		ring, _ := strconv.Atoi(d["ring"])
		out.Blips = append(out.Blips, jsonBlip{
			Name:     d["name"],
			Quadrant: q,
			Ring:     ring,
			Symbol:   d["symbol"],
			Link:     d["link"],
			Position: n.Transform,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
