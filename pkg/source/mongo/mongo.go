// Package mongo reads radar items from a MongoDB collection.
//
// Each document in the collection is one technology:
//
//	{
//	  "name": "Go",
//	  "quadrant": "frameworks-and-lang",   // index, name, route or {name: ...}
//	  "ring": "Adopt",                     // index, name or {name: ...}
//	  "isNew": true,
//	  "moved": 0,
//	  "inRadar": true,
//	  "companies": [{"name": "FM"}, "ITR_NL"],
//	  "description": "...",
//	  "link": "https://go.dev",
//	  "publishedAt": ISODate("2024-01-01")
//	}
//
// The chart configuration comes from a base definition. Documents with
// inRadar set to false are counted as skipped.
package mongo

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/techradar/pkg/errors"
	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/radar"
)

// Config selects the collection to read.
type Config struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`

	// PublishedOnly ignores documents without a publishedAt date.
	PublishedOnly bool `mapstructure:"published_only"`

	Timeout time.Duration `mapstructure:"timeout"`
}

const (
	DefaultDatabase   = "techradar"
	DefaultCollection = "technologies"
	DefaultTimeout    = 10 * time.Second
)

func (c *Config) setDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Source loads items from one collection.
type Source struct {
	client *mongo.Client
	coll   *mongo.Collection
	base   *radario.Definition
	cfg    Config
}

// Open connects to cfg.URI and verifies the server is reachable. base
// supplies the title and configuration; nil means the defaults.
func Open(ctx context.Context, cfg Config, base *radario.Definition) (*Source, error) {
	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo URI must use the mongodb:// or mongodb+srv:// scheme")
	}
	cfg.setDefaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, classify(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, classify(err, "ping mongo")
	}
	s := New(client.Database(cfg.Database).Collection(cfg.Collection), base, cfg)
	s.client = client
	return s, nil
}

// New wraps an existing collection.
func New(coll *mongo.Collection, base *radario.Definition, cfg Config) *Source {
	cfg.setDefaults()
	if base == nil {
		base = radario.NewDefinition()
	}
	return &Source{coll: coll, base: base, cfg: cfg}
}

func (s *Source) Name() string {
	return "mongo:" + s.coll.Database().Name() + "/" + s.coll.Name()
}

// Load fetches all documents sorted by name and resolves them against the
// base configuration.
func (s *Source) Load(ctx context.Context) (*radario.Definition, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.coll.Find(ctx, s.filter(), opts)
	if err != nil {
		return nil, classify(err, "query %s", s.Name())
	}
	var docs []techDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(err, "decode %s", s.Name())
	}
	return toDefinition(s.base, docs)
}

// Close disconnects a client created by Open.
func (s *Source) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Source) filter() bson.D {
	if s.cfg.PublishedOnly {
		return bson.D{{Key: "publishedAt", Value: bson.D{{Key: "$ne", Value: nil}}}}
	}
	return bson.D{}
}

type techDoc struct {
	Name        string          `bson:"name"`
	Quadrant    bson.RawValue   `bson:"quadrant"`
	Ring        bson.RawValue   `bson:"ring"`
	IsNew       bool            `bson:"isNew"`
	Moved       int             `bson:"moved"`
	InRadar     *bool           `bson:"inRadar"`
	Companies   []bson.RawValue `bson:"companies"`
	Description string          `bson:"description"`
	Link        string          `bson:"link"`
	PublishedAt *time.Time      `bson:"publishedAt"`
}

func toDefinition(base *radario.Definition, docs []techDoc) (*radario.Definition, error) {
	def := &radario.Definition{Title: base.Title, Config: base.Config, Items: make([]radar.Item, 0, len(docs))}
	for _, d := range docs {
		if d.InRadar != nil && !*d.InRadar {
			def.Skipped++
			continue
		}
		it, err := toItem(def.Config, d)
		if err != nil {
			return nil, err
		}
		def.Items = append(def.Items, it)
	}
	return def, nil
}

func toItem(cfg radar.Config, d techDoc) (radar.Item, error) {
	q, err := radario.ResolveQuadrant(cfg, reference(d.Quadrant))
	if err != nil {
		return radar.Item{}, errors.Wrap(errors.GetCode(err), err, "technology %q", d.Name)
	}
	r, err := radario.ResolveRing(cfg, reference(d.Ring))
	if err != nil {
		return radar.Item{}, errors.Wrap(errors.GetCode(err), err, "technology %q", d.Name)
	}
	return radar.Item{
		Name:        d.Name,
		Quadrant:    q,
		Ring:        r,
		IsNew:       d.IsNew,
		Moved:       d.Moved,
		Companies:   companies(d.Companies),
		Description: d.Description,
		Link:        d.Link,
	}, nil
}

// reference unwraps a quadrant or ring field into the forms the resolvers
// accept. Embedded documents are referenced by their name.
func reference(v bson.RawValue) any {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeInt32:
		return v.Int32()
	case bson.TypeInt64:
		return v.Int64()
	case bson.TypeDouble:
		return v.Double()
	case bson.TypeEmbeddedDocument:
		if name, ok := v.Document().Lookup("name").StringValueOK(); ok {
			return name
		}
	}
	return nil
}

func companies(vs []bson.RawValue) []string {
	var out []string
	for _, v := range vs {
		switch v.Type {
		case bson.TypeString:
			out = append(out, v.StringValue())
		case bson.TypeEmbeddedDocument:
			if name, ok := v.Document().Lookup("name").StringValueOK(); ok {
				out = append(out, name)
			}
		}
	}
	return out
}

func classify(err error, format string, args ...any) error {
	code := errors.ErrCodeNetwork
	if stderrors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		code = errors.ErrCodeTimeout
	}
	return errors.Wrap(code, err, format, args...)
}
