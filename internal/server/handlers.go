package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/techradar/pkg/buildinfo"
	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/pipeline"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/chart"
	"github.com/matzehuels/techradar/pkg/radar/scene"
	"github.com/matzehuels/techradar/pkg/session"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"build":    buildinfo.Get(),
		"items":    len(s.Definition().Items),
		"sessions": s.store.Len(),
	})
}

// ItemsResponse lists the items of the current definition.
type ItemsResponse struct {
	Title     string         `json:"title,omitempty"`
	Quadrants []string       `json:"quadrants"`
	Rings     []string       `json:"rings"`
	Items     []radar.Item   `json:"items"`
	Skipped   int            `json:"skipped,omitempty"`
	Counts    map[string]int `json:"counts"`
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	def := s.Definition()
	companies := splitList(r.URL.Query().Get("companies"))
	items := radar.FilterCompanies(def.Items, companies)

	resp := ItemsResponse{Title: def.Title, Items: items, Skipped: def.Skipped, Counts: map[string]int{}}
	for _, q := range def.Config.Quadrants {
		resp.Quadrants = append(resp.Quadrants, q.Name)
	}
	for _, rg := range def.Config.Rings {
		resp.Rings = append(resp.Rings, rg.Name)
	}
	for _, it := range items {
		if it.Quadrant >= 0 && it.Quadrant < radar.NumQuadrants {
			resp.Counts[def.Config.Quadrants[it.Quadrant].Route]++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRadar renders the current definition through the pipeline.
//
// Query parameters: quadrant, numbered, companies (comma separated), seed,
// interactive and title.
func (s *Server) handleRadar(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := pipeline.Options{
			Definition:  s.Definition(),
			Source:      s.cfg.Source.Name(),
			Companies:   splitList(q.Get("companies")),
			Numbered:    parseBool(q.Get("numbered")),
			Interactive: parseBool(q.Get("interactive")),
			Title:       q.Get("title"),
			Formats:     []string{format},
		}
		if v := q.Get("quadrant"); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				s.writeError(w, r, errors.New(errors.ErrCodeInvalidQuadrant, "invalid quadrant %q", v))
				return
			}
			opts.Quadrant = &i
		}
		if v := q.Get("seed"); v != "" {
			seed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", v))
				return
			}
			opts.Seed = seed
		}

		res, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Radar-Items", strconv.Itoa(res.Stats.Items))
		if res.CacheInfo.RenderHit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		_, _ = w.Write(res.Artifacts[format])
	}
}

// ViewRequest selects the view of a session chart. Desktop defaults to
// true and enables quadrant hover regions.
type ViewRequest struct {
	Quadrant  *int     `json:"quadrant,omitempty"`
	Numbered  bool     `json:"numbered,omitempty"`
	Desktop   *bool    `json:"desktop,omitempty"`
	Companies []string `json:"companies,omitempty"`
}

func (v ViewRequest) state() radar.ViewState {
	desktop := v.Desktop == nil || *v.Desktop
	return radar.ViewState{Quadrant: v.Quadrant, IsNotMobile: desktop, Numbered: v.Numbered}
}

// BatchResponse carries the commands and events an interaction produced.
type BatchResponse struct {
	ID     string        `json:"id"`
	Result *chart.Result `json:"result,omitempty"`
	session.Batch
}

// SceneResponse is the full scene of a session, for clients that join or
// fall behind.
type SceneResponse struct {
	ID    string         `json:"id"`
	Scene scene.Snapshot `json:"scene"`
	State chart.State    `json:"state"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	vs := req.state()
	if err := vs.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	def := s.Definition()
	sess, err := session.New(def.Config, s.chartOptions()...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.SetCompanies(req.Companies)
	res, err := sess.Chart.Render(radar.FilterCompanies(def.Items, req.Companies), vs)
	if err != nil {
		sess.Close()
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Put(r.Context(), sess); err != nil {
		sess.Close()
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("created session", "id", sess.ID, "enter", res.Enter, "dropped", res.Dropped)
	writeJSON(w, http.StatusCreated, BatchResponse{ID: sess.ID, Result: &res, Batch: sess.Drain()})
}

type sessionKey struct{}

// withSession resolves the {id} parameter into a live session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), sessionFrom(r).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	// The snapshot supersedes anything buffered.
	sess.Recorder.Drain()
	writeJSON(w, http.StatusOK, SceneResponse{ID: sess.ID, Scene: sess.Scene.Snapshot(), State: sess.Chart.Snapshot()})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req ViewRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Companies != nil {
		sess.SetCompanies(req.Companies)
	}
	items := radar.FilterCompanies(s.Definition().Items, sess.Companies())
	res, err := sess.Chart.Render(items, req.state())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondBatch(w, sess, &res)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Chart.Settle(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondBatch(w, sess, nil)
}

type blipAction func(c *chart.Chart, name string) error

var (
	blipHover     blipAction = (*chart.Chart).Hover
	blipClick     blipAction = (*chart.Chart).Click
	blipHighlight blipAction = (*chart.Chart).Highlight
)

// BlipRequest names the blip an interaction targets.
type BlipRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleBlip(action blipAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		var req BlipRequest
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := action(sess.Chart, req.Name); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.respondBatch(w, sess, nil)
	}
}

func (s *Server) handleUnhover(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Chart.Unhover(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondBatch(w, sess, nil)
}

type quadrantAction func(c *chart.Chart, i int) error

var (
	quadrantHover quadrantAction = (*chart.Chart).HoverQuadrant
	quadrantClick quadrantAction = (*chart.Chart).ClickQuadrant
)

func (s *Server) handleQuadrant(action quadrantAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		i, err := strconv.Atoi(chi.URLParam(r, "i"))
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidQuadrant, "invalid quadrant %q", chi.URLParam(r, "i")))
			return
		}
		if err := action(sess.Chart, i); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.respondBatch(w, sess, nil)
	}
}

func (s *Server) handleQuadrantLeave(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Chart.LeaveQuadrant(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondBatch(w, sess, nil)
}

func (s *Server) handleRingHover(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	i, err := strconv.Atoi(chi.URLParam(r, "i"))
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidRing, "invalid ring %q", chi.URLParam(r, "i")))
		return
	}
	if err := sess.Chart.HoverRing(i); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondBatch(w, sess, nil)
}

func (s *Server) handleRingLeave(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Chart.LeaveRing(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondBatch(w, sess, nil)
}

func (s *Server) respondBatch(w http.ResponseWriter, sess *session.Session, res *chart.Result) {
	writeJSON(w, http.StatusOK, BatchResponse{ID: sess.ID, Result: res, Batch: sess.Drain()})
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
