package radar

// Symbol is the glyph drawn for an item.
type Symbol int

const (
	SymbolCircle Symbol = iota
	SymbolTriangleUp
	SymbolTriangleDown
)

// Glyph geometry, in chart units.
const (
	CircleRadius     = 9
	TriangleUpPath   = "M -11,5 11,5 0,-13 z"
	TriangleDownPath = "M -11,-5 11,-5 0,13 z"
)

var symbolNames = [...]string{"circle", "triangle-up", "triangle-down"}

func (s Symbol) String() string {
	if s < 0 || int(s) >= len(symbolNames) {
		return "unknown"
	}
	return symbolNames[s]
}

// SymbolFor selects the glyph for an item:
//
//	Moved > 0            triangle up
//	Moved < 0            triangle down
//	IsNew, Moved == 0    triangle up
//	otherwise            circle
//
// New items share the "new or moved" legend glyph with upward moves.
func SymbolFor(it Item) Symbol {
	switch {
	case it.Moved > 0:
		return SymbolTriangleUp
	case it.Moved < 0:
		return SymbolTriangleDown
	case it.IsNew:
		return SymbolTriangleUp
	default:
		return SymbolCircle
	}
}

// Changed reports whether the item is drawn with a "new or moved" glyph.
func (s Symbol) Changed() bool { return s != SymbolCircle }
