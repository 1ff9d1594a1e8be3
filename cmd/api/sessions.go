package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdvisorAI/advisor-mvp/engine/rag"
)

// sessionStore holds per-session conversations. Sessions are created on
// first use and dropped after sitting idle for the TTL.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
	now      func() time.Time
}

type session struct {
	conv     *rag.Conversation
	lastSeen time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// get returns the conversation for id, creating the session if needed.
// An empty id gets a fresh one. The effective id is returned so callers
// can echo it back to the client.
func (s *sessionStore) get(id string) (string, *rag.Conversation) {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{conv: rag.NewConversation()}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return id, sess.conv
}

// reset clears the history of id. Unknown ids are a no-op.
func (s *sessionStore) reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.conv.Reset()
		sess.lastSeen = s.now()
	}
}

// sweep drops sessions idle past the TTL and reports how many went.
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	var dropped int
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// janitor sweeps on an interval until ctx is cancelled.
func (s *sessionStore) janitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				logger.Info("expired sessions dropped", "count", n, "active", s.len())
			}
		}
	}
}
