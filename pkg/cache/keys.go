package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// SourceKey addresses a snapshot of items fetched from an external
	// source, for example a MongoDB collection.
	SourceKey(namespace, key string) string
	// LayoutKey addresses the settled blip positions of a definition.
	LayoutKey(definitionHash string, opts LayoutKeyOpts) string
	// ArtifactKey addresses one rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the definition that change where
// blips settle.
type LayoutKeyOpts struct {
	Seed        uint64   `json:"seed"`
	Quadrant    int      `json:"quadrant"` // -1 for the full view
	Numbered    bool     `json:"numbered"`
	Companies   []string `json:"companies,omitempty"`
	Budget      int      `json:"budget,omitempty"`
	Interactive bool     `json:"interactive,omitempty"` // hover regions laid out
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Title       string  `json:"title,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
}

// DefaultKeyer builds keys of the form kind:sha256(inputs).
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SourceKey returns source:namespace:key. Source keys stay readable so
// that an operator can invalidate them by hand.
func (DefaultKeyer) SourceKey(namespace, key string) string {
	return fmt.Sprintf("source:%s:%s", namespace, key)
}

// LayoutKey hashes the definition hash with opts. Company order does not
// matter.
func (DefaultKeyer) LayoutKey(definitionHash string, opts LayoutKeyOpts) string {
	if len(opts.Companies) > 0 {
		cs := make([]string, len(opts.Companies))
		for i, c := range opts.Companies {
			cs[i] = strings.ToLower(c)
		}
		slices.Sort(cs)
		opts.Companies = slices.Compact(cs)
	}
	return hashKey("layout", definitionHash, opts)
}

// ArtifactKey hashes the layout hash with opts.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
