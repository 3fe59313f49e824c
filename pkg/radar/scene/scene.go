// Package scene models the retained drawing surface a chart mutates.
//
// A chart never draws directly. It emits declarative [Command] values
// (create, update, remove, transform, opacity, viewport) against a
// [Surface]. [Scene] is the in-memory retained implementation that sinks
// serialize; [Recorder] captures command batches for clients that replay
// them on a real surface.
package scene

import (
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar/geom"
)

// Op is a command verb.
type Op string

const (
	OpCreate    Op = "create"
	OpUpdate    Op = "update"
	OpRemove    Op = "remove"
	OpTransform Op = "transform"
	OpOpacity   Op = "opacity"
	OpViewport  Op = "viewport"
)

// Layer orders nodes back to front.
type Layer int

const (
	LayerGrid Layer = iota
	LayerRegions
	LayerBlips
	LayerLabels
	LayerLegend
	LayerTooltip
)

var layerNames = [...]string{"grid", "regions", "blips", "labels", "legend", "tooltip"}

func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return "unknown"
	}
	return layerNames[l]
}

// Kind is a shape primitive.
type Kind string

const (
	KindCircle  Kind = "circle"
	KindPath    Kind = "path"
	KindRect    Kind = "rect"
	KindPolygon Kind = "polygon"
	KindLine    Kind = "line"
	KindText    Kind = "text"
	KindGroup   Kind = "group"
)

// Shape describes a drawable in the node's local coordinates. Only the
// fields relevant to Kind are set. Groups carry their parts in Children.
type Shape struct {
	Kind        Kind              `json:"kind"`
	Class       string            `json:"class,omitempty"`
	Fill        string            `json:"fill,omitempty"`
	Stroke      string            `json:"stroke,omitempty"`
	StrokeWidth float64           `json:"stroke_width,omitempty"`
	R           float64           `json:"r,omitempty"`
	D           string            `json:"d,omitempty"`
	Points      []geom.Point      `json:"points,omitempty"`
	X           float64           `json:"x,omitempty"`
	Y           float64           `json:"y,omitempty"`
	W           float64           `json:"w,omitempty"`
	H           float64           `json:"h,omitempty"`
	Rx          float64           `json:"rx,omitempty"`
	Text        string            `json:"text,omitempty"`
	FontSize    float64           `json:"font_size,omitempty"`
	Anchor      string            `json:"anchor,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	Children    []Shape           `json:"children,omitempty"`
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	s.Points = slices.Clone(s.Points)
	s.Data = maps.Clone(s.Data)
	if s.Children != nil {
		kids := make([]Shape, len(s.Children))
		for i, c := range s.Children {
			kids[i] = c.Clone()
		}
		s.Children = kids
	}
	return s
}

// Command is a single scene mutation.
type Command struct {
	Op        Op          `json:"op"`
	ID        string      `json:"id,omitempty"`
	Layer     Layer       `json:"layer,omitempty"`
	Shape     *Shape      `json:"shape,omitempty"`
	Transform *geom.Point `json:"transform,omitempty"`
	Opacity   *float64    `json:"opacity,omitempty"`
	Viewport  *geom.Rect  `json:"viewport,omitempty"`
}

// Create returns a create command with an initial translation and opacity.
func Create(id string, layer Layer, s Shape, at geom.Point, opacity float64) Command {
	return Command{Op: OpCreate, ID: id, Layer: layer, Shape: &s, Transform: &at, Opacity: &opacity}
}

// Update replaces a node's shape.
func Update(id string, s Shape) Command {
	return Command{Op: OpUpdate, ID: id, Shape: &s}
}

// Remove deletes a node.
func Remove(id string) Command {
	return Command{Op: OpRemove, ID: id}
}

// Translate moves a node.
func Translate(id string, p geom.Point) Command {
	return Command{Op: OpTransform, ID: id, Transform: &p}
}

// SetOpacity changes a node's opacity.
func SetOpacity(id string, o float64) Command {
	return Command{Op: OpOpacity, ID: id, Opacity: &o}
}

// SetViewport changes the visible window.
func SetViewport(r geom.Rect) Command {
	return Command{Op: OpViewport, Viewport: &r}
}

// Surface receives scene commands.
type Surface interface {
	Apply(cmds ...Command) error
}

// SurfaceFunc adapts a function to [Surface].
type SurfaceFunc func(cmds ...Command) error

// Apply implements [Surface].
func (f SurfaceFunc) Apply(cmds ...Command) error { return f(cmds...) }

// Node is a retained scene element.
type Node struct {
	ID        string     `json:"id"`
	Layer     Layer      `json:"layer"`
	Shape     Shape      `json:"shape"`
	Transform geom.Point `json:"transform"`
	Opacity   float64    `json:"opacity"`
	seq       int
}

// Snapshot is a consistent copy of a scene.
type Snapshot struct {
	Viewport geom.Rect `json:"viewport"`
	Nodes    []Node    `json:"nodes"`
}

// Node returns the node with the given id from the snapshot.
func (s Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Layer returns the snapshot's nodes on layer l, in draw order.
func (s Snapshot) Layer(l Layer) []Node {
	var out []Node
	for _, n := range s.Nodes {
		if n.Layer == l {
			out = append(out, n)
		}
	}
	return out
}

// Scene is an in-memory retained [Surface]. It is safe for concurrent use.
type Scene struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	viewport geom.Rect
	seq      int
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{nodes: make(map[string]*Node)}
}

// Apply implements [Surface]. Commands apply in order; the first failing
// command stops the batch.
func (s *Scene) Apply(cmds ...Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cmds {
		if err := s.apply(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) apply(c Command) error {
	if c.Op == OpViewport {
		if c.Viewport == nil {
			return errors.New(errors.ErrCodeInvalidInput, "viewport command without viewport")
		}
		s.viewport = *c.Viewport
		return nil
	}

	n, exists := s.nodes[c.ID]
	switch c.Op {
	case OpCreate:
		if exists {
			return errors.New(errors.ErrCodeDuplicateKey, "node %q already exists", c.ID)
		}
		if c.Shape == nil {
			return errors.New(errors.ErrCodeInvalidInput, "create %q without shape", c.ID)
		}
		s.seq++
		n = &Node{ID: c.ID, Layer: c.Layer, Shape: c.Shape.Clone(), Opacity: 1, seq: s.seq}
		if c.Transform != nil {
			n.Transform = *c.Transform
		}
		if c.Opacity != nil {
			n.Opacity = *c.Opacity
		}
		s.nodes[c.ID] = n
		return nil
	case OpRemove:
		delete(s.nodes, c.ID)
		return nil
	}

	if !exists {
		return errors.New(errors.ErrCodeNotFound, "%s: node %q not found", c.Op, c.ID)
	}
	switch c.Op {
	case OpUpdate:
		if c.Shape == nil {
			return errors.New(errors.ErrCodeInvalidInput, "update %q without shape", c.ID)
		}
		n.Shape = c.Shape.Clone()
	case OpTransform:
		if c.Transform == nil {
			return errors.New(errors.ErrCodeInvalidInput, "transform %q without translation", c.ID)
		}
		n.Transform = *c.Transform
	case OpOpacity:
		if c.Opacity == nil {
			return errors.New(errors.ErrCodeInvalidInput, "opacity %q without value", c.ID)
		}
		n.Opacity = *c.Opacity
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown op %q", c.Op)
	}
	return nil
}

// Node returns a copy of the node with the given id.
func (s *Scene) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	out := *n
	out.Shape = n.Shape.Clone()
	return out, true
}

// Len returns the number of nodes.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Viewport returns the current viewport.
func (s *Scene) Viewport() geom.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Nodes returns copies of all nodes ordered by layer, then creation.
func (s *Scene) Nodes() []Node {
	return s.Snapshot().Nodes
}

// Snapshot returns a consistent copy of the scene.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		c := *n
		c.Shape = n.Shape.Clone()
		nodes = append(nodes, c)
	}
	slices.SortFunc(nodes, func(a, b Node) int {
		if a.Layer != b.Layer {
			return int(a.Layer) - int(b.Layer)
		}
		return a.seq - b.seq
	})
	return Snapshot{Viewport: s.viewport, Nodes: nodes}
}

// Reset removes every node and clears the viewport.
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.nodes)
	s.viewport = geom.Rect{}
}
