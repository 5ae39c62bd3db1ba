package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
)

type sessionEntry struct {
	sess    auth.Session
	expires time.Time
}

type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

var _ auth.SessionStore = (*Sessions)(nil)

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]sessionEntry)}
}

func (s *Sessions) Save(_ context.Context, sess auth.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sessionEntry{sess: sess, expires: core.NowFunc().Add(ttl)}
	return nil
}

func (s *Sessions) Get(_ context.Context, id string) (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok || core.NowFunc().After(entry.expires) {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return entry.sess, nil
}

func (s *Sessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return auth.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
