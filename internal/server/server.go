// Package server exposes radar rendering and live chart sessions over HTTP.
//
// Static endpoints render the current definition through the pipeline
// runner and share its cache. Session endpoints drive a live chart per
// client: every interaction returns the scene commands and chart events it
// produced, which the client replays on its own surface.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/observability"
	"github.com/matzehuels/techradar/pkg/pipeline"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/chart"
	"github.com/matzehuels/techradar/pkg/session"
	"github.com/matzehuels/techradar/pkg/source"
)

// Config holds the server dependencies. Source is required.
type Config struct {
	Addr   string
	Source source.Source

	// Runner renders static artifacts. Nil means an uncached runner.
	Runner *pipeline.Runner

	// Sessions holds live charts. Nil means an in-memory store with
	// session.DefaultTTL.
	Sessions *session.MemoryStore

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// Seed seeds blip placement of new sessions.
	Seed uint64

	// ChartOptions are appended to the options of every session chart.
	ChartOptions []chart.Option

	Logger *log.Logger
}

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server serves one radar definition.
type Server struct {
	cfg    Config
	logger *log.Logger
	runner *pipeline.Runner
	store  *session.MemoryStore
	router http.Handler

	mu  sync.RWMutex
	def *radario.Definition
}

// New loads the definition from cfg.Source and builds the router.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Seed == 0 {
		cfg.Seed = pipeline.DefaultSeed
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	store := cfg.Sessions
	if store == nil {
		store = session.NewMemoryStore(session.DefaultTTL)
	}

	s := &Server{cfg: cfg, logger: logger, runner: runner, store: store}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Definition returns the definition currently served.
func (s *Server) Definition() *radario.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// Reload reads the source again and re-renders every live session with the
// new items. Sessions keep their view and company filter.
func (s *Server) Reload(ctx context.Context) error {
	hooks := observability.Pipeline()
	name := s.cfg.Source.Name()
	start := time.Now()
	hooks.OnLoadStart(ctx, name)
	def, err := s.cfg.Source.Load(ctx)
	if err != nil {
		hooks.OnLoadComplete(ctx, name, 0, time.Since(start), err)
		return err
	}
	hooks.OnLoadComplete(ctx, name, len(def.Items), time.Since(start), nil)

	s.mu.Lock()
	prev := s.def
	s.def = def
	s.mu.Unlock()

	s.logger.Info("loaded definition", "source", name, "items", len(def.Items), "skipped", def.Skipped)
	if prev == nil {
		return nil
	}
	if prev.Config != def.Config {
		s.logger.Warn("configuration changed; live sessions keep the previous one")
	}

	var rendered, failed int
	s.store.Range(func(sess *session.Session) bool {
		items := radar.FilterCompanies(def.Items, sess.Companies())
		if _, err := sess.Chart.Render(items, sess.Chart.View()); err != nil {
			failed++
			s.logger.Warn("re-render failed", "session", sess.ID, "err", err)
			return true
		}
		rendered++
		return true
	})
	if rendered+failed > 0 {
		s.logger.Info("re-rendered sessions", "ok", rendered, "failed", failed)
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// closes every session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.store.Janitor(janitorCtx, time.Minute, func(n int) {
		s.logger.Debug("expired sessions", "count", n)
	})

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close closes every live session.
func (s *Server) Close() error {
	return s.store.Close()
}

// chartOptions returns the options of a new session chart.
func (s *Server) chartOptions() []chart.Option {
	opts := []chart.Option{
		chart.WithSeed(s.cfg.Seed),
		chart.WithLogger(s.logger),
		chart.WithDropInvalid(true),
	}
	return append(opts, s.cfg.ChartOptions...)
}
