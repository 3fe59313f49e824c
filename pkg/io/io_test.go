package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/radar"
)

const tomlDoc = `
title = "Radar"

[chart]
blip_radius = 10

[legend]
new_or_moved = "Nieuw"

[[items]]
name = "Go"
quadrant = "frameworks-and-lang"
ring = "adopt"
is_new = true
companies = ["ITR_NL", "FM"]

[[items]]
name = "Kafka"
quadrant = "Platforms, infrastructure & Data"
ring = 2

[[items]]
name = "Flash"
quadrant = 1
ring = 3
in_radar = false
`

func TestReadTOML(t *testing.T) {
	def, err := Read(strings.NewReader(tomlDoc), FormatTOML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if def.Title != "Radar" {
		t.Errorf("Title = %q", def.Title)
	}
	if def.Config.BlipRadius != 10 || def.Config.Legend.NewOrMoved != "Nieuw" {
		t.Errorf("overrides not applied: blip %v legend %q", def.Config.BlipRadius, def.Config.Legend.NewOrMoved)
	}
	if def.Config.Legend.NoChange != radar.DefaultConfig().Legend.NoChange {
		t.Errorf("unset legend field lost its default: %q", def.Config.Legend.NoChange)
	}
	if def.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", def.Skipped)
	}
	want := []radar.Item{
		{Name: "Go", Quadrant: 0, Ring: 0, IsNew: true, Companies: []string{"ITR_NL", "FM"}},
		{Name: "Kafka", Quadrant: 2, Ring: 2},
	}
	if !reflect.DeepEqual(def.Items, want) {
		t.Errorf("Items = %+v, want %+v", def.Items, want)
	}
}

func TestReadYAML(t *testing.T) {
	doc := `
quadrants:
  - name: Languages
    route: languages
  - {}
  - {}
  - {}
items:
  - name: Go
    quadrant: languages
    ring: 1
  - name: Rust
    quadrant: "3"
    ring: Hold
`
	def, err := Read(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if def.Config.Quadrants[0].Name != "Languages" || def.Config.Quadrants[0].Color != "#84BFA4" {
		t.Errorf("quadrant 0 = %+v", def.Config.Quadrants[0])
	}
	if def.Config.Quadrants[1].Route != "tooling-and-testing" {
		t.Errorf("empty quadrant lost its default route: %q", def.Config.Quadrants[1].Route)
	}
	if got := def.Items[0]; got.Quadrant != 0 || got.Ring != 1 {
		t.Errorf("Go = %+v", got)
	}
	if got := def.Items[1]; got.Quadrant != 3 || got.Ring != 3 {
		t.Errorf("Rust = %+v", got)
	}
}

func TestReadJSON(t *testing.T) {
	doc := `{"items": [{"name": "Go", "quadrant": 2, "ring": 0, "moved": -1}]}`
	def, err := Read(strings.NewReader(doc), FormatJSON)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := def.Items[0]; got.Quadrant != 2 || got.Moved != -1 {
		t.Errorf("Go = %+v", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		f    Format
		code errors.Code
	}{
		{"toml unknown key", "colour = 1\n", FormatTOML, errors.ErrCodeInvalidFormat},
		{"yaml unknown key", "itemz: []\n", FormatYAML, errors.ErrCodeInvalidFormat},
		{"json unknown key", `{"itemz": []}`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"malformed", "[[items]\n", FormatTOML, errors.ErrCodeInvalidFormat},
		{"quadrant count", `{"quadrants": [{}, {}], "items": []}`, FormatJSON, errors.ErrCodeInvalidConfig},
		{"bad radii", `{"rings": [{"radius": 300}, {}, {}, {}], "items": []}`, FormatJSON, errors.ErrCodeInvalidConfig},
		{"unknown quadrant", `{"items": [{"name": "Go", "quadrant": "nope", "ring": 0}]}`, FormatJSON, errors.ErrCodeInvalidQuadrant},
		{"unknown ring", `{"items": [{"name": "Go", "quadrant": 0, "ring": "Later"}]}`, FormatJSON, errors.ErrCodeInvalidRing},
		{"fractional index", `{"items": [{"name": "Go", "quadrant": 1.5, "ring": 0}]}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"missing ring", `{"items": [{"name": "Go", "quadrant": 0}]}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"unknown format", `{}`, Format("xml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc), tt.f)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestReadKeepsOutOfRangeIndices(t *testing.T) {
	def, err := Read(strings.NewReader(`{"items": [{"name": "Go", "quadrant": 7, "ring": -1}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := def.Items[0]; got.Quadrant != 7 || got.Ring != -1 {
		t.Errorf("Go = %+v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	def := NewDefinition(
		radar.Item{Name: "Go", Quadrant: 0, Ring: 0, IsNew: true, Link: "https://go.dev"},
		radar.Item{Name: "Pairing", Quadrant: 3, Ring: 1, Moved: -1, Companies: []string{"FM"}},
	)
	def.Title = "Round trip"
	def.Config.Quadrants[2].Tooltip = "Infra"

	for _, ext := range []string{".toml", ".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "radar"+ext)
			if err := Save(def, path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, def) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, def)
			}
		})
	}
}

func TestWriteUsesIndices(t *testing.T) {
	var buf bytes.Buffer
	def := NewDefinition(radar.Item{Name: "Go", Quadrant: 2, Ring: 1})
	if err := Write(&buf, def, FormatYAML); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "quadrant: 2") {
		t.Errorf("yaml output lacks numeric quadrant:\n%s", buf.String())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"radar.toml", FormatTOML, true},
		{"radar.YML", FormatYAML, true},
		{"a/b/radar.yaml", FormatYAML, true},
		{"radar.json", FormatJSON, true},
		{"radar.xml", "", false},
		{"radar", "", false},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
	}
}
