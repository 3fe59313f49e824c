// Package layout owns the positions of every plotted item.
//
// # Overview
//
// An [Engine] holds one [Blip] per item name. It is the only writer of blip
// positions: callers seed, retain, reassign and move blips through it, and
// every write except the raw transition writer is clipped through the
// blip's segment.
//
// # Lifecycle
//
//   - [Engine.Seed]: first appearance. The segment is built and the position
//     sampled with segment.Segment.Seed.
//   - [Engine.Retain]: reappearance in the same cell. The position is left
//     untouched; pass-through fields (companies, link, description) refresh.
//   - [Engine.Reassign]: reappearance in a different cell. The segment is
//     rebuilt, the position stays where it is and a freshly sampled target in
//     the new segment is returned for an animated move.
//   - [Engine.Remove]: exit. Position state is discarded.
//
// # Numbering
//
// [Engine.Number] assigns sequential labels starting at 1, visiting
// quadrants in the order 2, 3, 1, 0 (top left, top right, bottom left,
// bottom right), rings from the inside out, and names alphabetically within
// a segment.
//
// # Relaxation
//
// [Engine.Bodies] exposes blips to the collision relaxer. A body constrains
// candidate positions through its segment and writes through the engine.
package layout
