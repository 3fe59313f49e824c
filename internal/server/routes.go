package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/techradar/pkg/observability"
	"github.com/matzehuels/techradar/pkg/pipeline"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Handle("/metrics", s.cfg.Metrics)
	}

	r.Get("/items", s.handleItems)
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatJSON, pipeline.FormatDOT} {
		r.Get("/radar."+f, s.handleRadar(f))
	}

	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", s.handleCreateSession)
		sr.Route("/{id}", func(item chi.Router) {
			item.Use(s.withSession)
			item.Delete("/", s.handleDeleteSession)
			item.Get("/scene", s.handleScene)
			item.Post("/view", s.handleView)
			item.Post("/settle", s.handleSettle)

			item.Post("/hover", s.handleBlip(blipHover))
			item.Post("/unhover", s.handleUnhover)
			item.Post("/click", s.handleBlip(blipClick))
			item.Post("/highlight", s.handleBlip(blipHighlight))

			item.Post("/quadrants/leave", s.handleQuadrantLeave)
			item.Post("/quadrants/{i}/hover", s.handleQuadrant(quadrantHover))
			item.Post("/quadrants/{i}/click", s.handleQuadrant(quadrantClick))

			item.Post("/rings/leave", s.handleRingLeave)
			item.Post("/rings/{i}/hover", s.handleRingHover)
		})
	})
	return r
}

// instrument logs requests and reports them to the HTTP hooks, labelled
// with the matched route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", chimw.GetReqID(r.Context()))
	})
}
