package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/techradar/internal/server"
	"github.com/matzehuels/techradar/pkg/cache"
	"github.com/matzehuels/techradar/pkg/errors"
	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/observability/prom"
	"github.com/matzehuels/techradar/pkg/pipeline"
	"github.com/matzehuels/techradar/pkg/session"
	"github.com/matzehuels/techradar/pkg/source"
	"github.com/matzehuels/techradar/pkg/source/mongo"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [definition]",
		Short: "Serve rendered radars and live chart sessions over HTTP",
		Long: `Serve a radar over HTTP.

Static endpoints (/radar.svg, /radar.png, /radar.json, /radar.dot) render the
current definition and share the render cache. Session endpoints
(/sessions/...) drive one live chart per client and answer every interaction
with the scene commands and events it produced.

Items come from the definition file or, with --mongo-uri, from a MongoDB
collection; the file then only supplies title, quadrants and rings. With
--watch the file is reloaded on change and every live session is re-rendered.`,
		Example: `  techradar serve radar.toml --watch
  techradar serve --cache redis --redis-addr localhost:6379 radar.yaml
  techradar serve --mongo-uri mongodb://localhost:27017 --mongo-db radar`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := bindFlags(c.config, cmd.Flags(), map[string]string{
				"seed":                 "seed",
				"cache.backend":        "cache",
				"redis.addr":           "redis-addr",
				"mongo.uri":            "mongo-uri",
				"mongo.database":       "mongo-db",
				"mongo.collection":     "mongo-collection",
				"mongo.published_only": "published-only",
				"server.addr":          "addr",
				"server.watch":         "watch",
				"server.metrics":       "metrics",
				"server.session_ttl":   "session-ttl",
			})
			if err != nil {
				return err
			}
			settings, err := loadSettings(c.config)
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runServe(cmd.Context(), path, settings)
		},
	}

	cmd.Flags().String("addr", server.DefaultAddr, "listen address")
	cmd.Flags().Bool("watch", false, "reload the definition file when it changes")
	cmd.Flags().Bool("metrics", true, "expose Prometheus metrics at /metrics")
	cmd.Flags().Duration("session-ttl", session.DefaultTTL, "idle time after which a session is closed")
	cmd.Flags().String("cache", cacheFile, "cache backend: file, redis or none")
	_ = cmd.RegisterFlagCompletionFunc("cache", completeBackends)
	cmd.Flags().String("redis-addr", "localhost:6379", "redis address for --cache redis")
	cmd.Flags().String("mongo-uri", "", "load items from this MongoDB deployment")
	cmd.Flags().String("mongo-db", mongo.DefaultDatabase, "MongoDB database")
	cmd.Flags().String("mongo-collection", mongo.DefaultCollection, "MongoDB collection")
	cmd.Flags().Bool("published-only", false, "ignore MongoDB documents without a publishedAt date")
	cmd.Flags().Uint64("seed", pipeline.DefaultSeed, "random seed for blip placement")

	return cmd
}

// runServe wires the item source, cache, metrics and server together and
// serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, path string, s Settings) error {
	logger := loggerFromContext(ctx)

	if path == "" && s.Mongo.URI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a definition file or --mongo-uri is required")
	}
	if s.Server.Watch && path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--watch needs a definition file")
	}

	var metrics *prom.Metrics
	if s.Server.Metrics {
		metrics = prom.New(prom.Config{Namespace: appName, EnableGoMetrics: true, EnableProcessMetrics: true})
		metrics.Install()
	}

	store, err := c.newCache(ctx, s)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	keyer := cache.NewDefaultKeyer()

	src, closeSrc, err := c.openSource(ctx, path, s)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer closeSrc()
	if s.Mongo.URI != "" {
		src = source.Cached(src, store, keyer, logger)
	}

	cfg := server.Config{
		Addr:     s.Server.Addr,
		Source:   src,
		Runner:   pipeline.NewRunner(store, keyer, logger),
		Sessions: session.NewMemoryStore(s.Server.SessionTTL),
		Seed:     s.Seed,
		Logger:   logger,
	}
	if metrics != nil {
		cfg.Metrics = metrics.Handler()
	}
	srv, err := server.New(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer cfg.Runner.Close()

	printSuccess("Serving %s", src.Name())
	printKeyValue("address", s.Server.Addr)
	printKeyValue("cache", s.Cache.Backend)
	printKeyValue("items", fmt.Sprint(len(srv.Definition().Items)))
	if metrics != nil {
		printKeyValue("metrics", "/metrics")
	}
	if strings.HasPrefix(s.Server.Addr, ":") {
		printNextStep("Render the chart", "curl http://localhost"+s.Server.Addr+"/radar.svg")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if s.Server.Watch {
		g.Go(func() error { return srv.Watch(gctx, path, server.DefaultDebounce) })
	}
	return g.Wait()
}

// openSource returns the item source and a function releasing it.
func (c *CLI) openSource(ctx context.Context, path string, s Settings) (source.Source, func(), error) {
	if s.Mongo.URI == "" {
		return source.NewFile(path), func() {}, nil
	}
	var base *radario.Definition
	if path != "" {
		def, err := radario.Load(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		base = def
	}
	ms, err := mongo.Open(ctx, s.Mongo, base)
	if err != nil {
		return nil, nil, err
	}
	return ms, func() {
		if err := ms.Close(context.Background()); err != nil {
			c.Logger.Warn("close mongo", "err", err)
		}
	}, nil
}
