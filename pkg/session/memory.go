package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/techradar/pkg/errors"
)

// MemoryStore keeps sessions in process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore returns a store expiring sessions idle for longer than
// ttl. A ttl of zero or less uses [DefaultTTL].
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	now := m.now()
	if !ok || m.expired(s, now) {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	s.Touch(now)
	return s, nil
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "session without id")
	}
	s.Touch(m.now())
	m.mu.Lock()
	old := m.sessions[s.ID]
	m.sessions[s.ID] = s
	m.mu.Unlock()
	if old != nil && old != s {
		old.Close()
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return nil
}

// Range visits live sessions in no particular order. fn may call other
// store methods.
func (m *MemoryStore) Range(fn func(*Session) bool) {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()
	for _, s := range list {
		if !fn(s) {
			return
		}
	}
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) Cleanup(_ context.Context) (int, error) {
	now := m.now()
	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if m.expired(s, now) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range expired {
		s.Close()
	}
	return len(expired), nil
}

// Janitor runs Cleanup every interval until ctx is done. onExpire, if
// set, receives the number of sessions removed by each run.
func (m *MemoryStore) Janitor(ctx context.Context, interval time.Duration, onExpire func(int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, _ := m.Cleanup(ctx)
			if n > 0 && onExpire != nil {
				onExpire(n)
			}
		}
	}
}

// Close closes every session.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	list := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range list {
		s.Close()
	}
	return nil
}

func (m *MemoryStore) expired(s *Session, now time.Time) bool {
	return now.Sub(s.LastSeen()) > m.ttl
}

var _ Store = (*MemoryStore)(nil)
