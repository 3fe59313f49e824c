package chart

// Host receives interaction callbacks. An empty string stands for "nothing"
// (no highlighted item, no selection). Callbacks run on the chart's
// scheduler, synchronously from the interaction that caused them, and never
// from inside a relaxation tick.
type Host interface {
	SetHighlighted(name string)
	SetSelected(token string)
	Redirect(route string)
}

// HostFuncs adapts plain functions to [Host]. Nil fields are ignored.
type HostFuncs struct {
	Highlighted func(name string)
	Selected    func(token string)
	Navigate    func(route string)
}

func (h HostFuncs) SetHighlighted(name string) {
	if h.Highlighted != nil {
		h.Highlighted(name)
	}
}

func (h HostFuncs) SetSelected(token string) {
	if h.Selected != nil {
		h.Selected(token)
	}
}

func (h HostFuncs) Redirect(route string) {
	if h.Navigate != nil {
		h.Navigate(route)
	}
}

// EventKind names a semantic chart event.
type EventKind string

const (
	EventItemHighlighted   EventKind = "itemHighlighted"
	EventItemSelected      EventKind = "itemSelected"
	EventQuadrantActivated EventKind = "quadrantActivated"
)

// Event is emitted to listeners registered with [Chart.OnEvent].
type Event struct {
	Kind     EventKind `json:"kind"`
	Item     string    `json:"item,omitempty"`
	Token    string    `json:"token,omitempty"`
	Quadrant int       `json:"quadrant"`
	Route    string    `json:"route,omitempty"`
}

// PositionID returns the navigation token identifying an item: its
// quadrant route and name joined by a slash.
func PositionID(route, name string) string {
	return route + "/" + name
}
