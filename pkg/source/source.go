// Package source loads radar definitions from where they live.
//
// A [Source] yields a complete [io.Definition]: configuration plus items.
// [File] reads a TOML, YAML or JSON document from disk. The mongo
// subpackage reads items from a MongoDB collection and takes its
// configuration from a base definition. [Cached] wraps any source with a
// [cache.Cache] so repeated loads within the TTL skip the backend.
package source

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/techradar/pkg/cache"
	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/radar"
)

// Source produces a radar definition.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	Load(ctx context.Context) (*radario.Definition, error)
}

// File reads a definition document. The format follows the extension.
type File struct {
	Path string
}

// NewFile returns a source for the document at path.
func NewFile(path string) *File { return &File{Path: path} }

func (f *File) Name() string { return "file:" + f.Path }

func (f *File) Load(ctx context.Context) (*radario.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return radario.Load(f.Path)
}

// Static serves a fixed definition. Tests and embedders use it.
type Static struct {
	Def *radario.Definition
}

func (s Static) Name() string { return "static" }

func (s Static) Load(context.Context) (*radario.Definition, error) { return s.Def, nil }

type cached struct {
	src    Source
	cache  cache.Cache
	key    string
	logger *log.Logger
}

// Cached memoizes src in c under the keyer's source key. Cache failures
// are logged and fall through to the backend.
func Cached(src Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) Source {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &cached{src: src, cache: c, key: keyer.SourceKey("definition", src.Name()), logger: logger}
}

func (c *cached) Name() string { return c.src.Name() }

func (c *cached) Load(ctx context.Context) (*radario.Definition, error) {
	data, ok, err := c.cache.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("source cache read failed", "source", c.src.Name(), "err", err)
	}
	if ok {
		var e entry
		if err := json.Unmarshal(data, &e); err == nil {
			return e.definition(), nil
		}
	}

	def, err := c.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(entryOf(def)); err == nil {
		if err := c.cache.Set(ctx, c.key, data, cache.SourceTTL); err != nil {
			c.logger.Warn("source cache write failed", "source", c.src.Name(), "err", err)
		}
	}
	return def, nil
}

// entry is the cached form of a definition.
type entry struct {
	Title   string       `json:"title,omitempty"`
	Config  radar.Config `json:"config"`
	Items   []radar.Item `json:"items"`
	Skipped int          `json:"skipped,omitempty"`
}

func entryOf(d *radario.Definition) entry {
	return entry{Title: d.Title, Config: d.Config, Items: d.Items, Skipped: d.Skipped}
}

func (e entry) definition() *radario.Definition {
	return &radario.Definition{Title: e.Title, Config: e.Config, Items: e.Items, Skipped: e.Skipped}
}
