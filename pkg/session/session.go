// Package session keeps live charts for remote clients.
//
// A [Session] pairs a chart.Chart with the scene it draws into and a
// scene.Recorder that buffers the commands produced since the client last
// asked. Each interaction endpoint of the server calls the chart and then
// [Session.Drain], returning the command batch and the emitted events to
// the client, which replays them on its own surface.
//
// Sessions live in a [Store]. [MemoryStore] expires sessions that have not
// been seen for a TTL and closes their charts.
//
//	store := session.NewMemoryStore(session.DefaultTTL)
//	sess, err := session.New(cfg)
//	if err != nil {
//	    return err
//	}
//	store.Put(ctx, sess)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/chart"
	"github.com/matzehuels/techradar/pkg/radar/scene"
)

// Default limits.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// MaxRecorded bounds the commands buffered between two drains. A
	// client that falls further behind must fetch the full scene.
	MaxRecorded = 4096
)

// Session is one live chart.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Chart    *chart.Chart    `json:"-"`
	Scene    *scene.Scene    `json:"-"`
	Recorder *scene.Recorder `json:"-"`

	mu        sync.Mutex
	lastSeen  time.Time
	events    []chart.Event
	companies []string
	closed    bool
}

// Batch is what a client receives after an interaction.
type Batch struct {
	Commands []scene.Command `json:"commands"`
	Events   []chart.Event   `json:"events"`
	// Truncated is set when commands were dropped because the client fell
	// behind; the client should reload the scene.
	Truncated bool `json:"truncated,omitempty"`
}

// New creates a session with a fresh chart. opts are passed to chart.New.
func New(cfg radar.Config, opts ...chart.Option) (*Session, error) {
	sc := scene.New()
	rec := scene.NewRecorder(sc, MaxRecorded)
	c, err := chart.New(cfg, rec, nil, opts...)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Chart:     c,
		Scene:     sc,
		Recorder:  rec,
		lastSeen:  now,
	}
	c.OnEvent(s.record)
	return s, nil
}

func (s *Session) record(e chart.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

// Touch marks the session as seen at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

// Companies returns the company filter applied to the items the chart
// shows. Empty means all items.
func (s *Session) Companies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.companies
}

// SetCompanies replaces the company filter. It takes effect on the next
// render.
func (s *Session) SetCompanies(companies []string) {
	s.mu.Lock()
	s.companies = companies
	s.mu.Unlock()
}

// LastSeen returns when the session was last touched.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Drain returns and clears the commands and events accumulated since the
// previous call.
func (s *Session) Drain() Batch {
	// Events are recorded on the chart's scheduler; taking the commands
	// first keeps them no older than the events.
	cmds := s.Recorder.Drain()
	s.mu.Lock()
	events := s.events
	s.events = nil
	s.mu.Unlock()
	if cmds == nil {
		cmds = []scene.Command{}
	}
	if events == nil {
		events = []chart.Event{}
	}
	return Batch{Commands: cmds, Events: events, Truncated: len(cmds) >= MaxRecorded}
}

// Close closes the chart. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.Chart.Close()
	return nil
}

// Store holds sessions by ID.
type Store interface {
	// Get returns the session and marks it as seen. It fails with
	// SESSION_NOT_FOUND for unknown or expired IDs.
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	// Delete closes and removes the session. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error
	// Range calls fn for each session until fn returns false.
	Range(fn func(*Session) bool)
	// Cleanup closes and removes expired sessions.
	Cleanup(ctx context.Context) (int, error)
	Close() error
}
