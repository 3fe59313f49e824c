// Package io reads and writes radar definitions.
//
// # Overview
//
// A definition is a complete radar: the chart configuration (quadrants,
// rings, colors, legend labels) and the plotted items. It is stored as a
// TOML, YAML or JSON document; the format follows the file extension.
//
// # Format
//
// Every section except items is optional and overrides [radar.DefaultConfig]
// field by field:
//
//	title = "Tech Radar 2024"
//
//	[chart]
//	width = 460
//	height = 460
//
//	[[quadrants]]   # exactly four when present
//	name = "Languages"
//	route = "languages"
//	color = "#84BFA4"
//
//	[[items]]
//	name = "Go"
//	quadrant = "Languages"   # index, name or route
//	ring = "Adopt"           # index or name
//	is_new = true
//	companies = ["ITR_NL"]
//
// Items with in_radar = false are skipped. Numeric indices are passed
// through unchecked so the chart decides whether an out-of-range item is
// rejected or dropped; names that match no quadrant or ring are rejected
// here.
//
// Unknown keys are rejected in all three formats.
//
// # Import
//
// Use [Load] to read a definition from a file, or [Read] to read from any
// io.Reader:
//
//	def, err := io.Load("radar.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// Use [Save] to write a definition to a file, or [Write] to write to any
// io.Writer. Export always writes numeric indices and the complete
// configuration, so a saved file reloads identically.
package io
