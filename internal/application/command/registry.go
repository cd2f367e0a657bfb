// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ecokids/ecokids-hub/internal/domain/session"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REGISTRY
// Holds all open activity sessions in memory. Sessions are transient by
// design: a restart discards them, only profiles persist.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSessionTTL is how long an idle session survives before the
// sweeper discards it.
const DefaultSessionTTL = 30 * time.Minute

// SessionRegistry is an in-memory store of active sessions keyed by
// session ID. All session mutations go through With so that concurrent
// interactions with the same session are serialized.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	idleTTL  time.Duration
}

// NewSessionRegistry creates a registry with the given idle TTL.
// A non-positive TTL falls back to DefaultSessionTTL.
func NewSessionRegistry(idleTTL time.Duration) *SessionRegistry {
	if idleTTL <= 0 {
		idleTTL = DefaultSessionTTL
	}
	return &SessionRegistry{
		sessions: make(map[string]*session.Session),
		idleTTL:  idleTTL,
	}
}

// Put registers a session.
func (r *SessionRegistry) Put(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// With runs fn against the session under the registry lock. Returns
// shared.ErrNotFound when the session does not exist (expired, never
// started, or already consumed by a completion).
func (r *SessionRegistry) With(id string, fn func(s *session.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %q: %w", id, shared.ErrNotFound)
	}
	return fn(s)
}

// Remove deletes a session from the registry.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep discards finished sessions and active sessions idle past the
// TTL. Returns the number of sessions removed.
func (r *SessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-r.idleTTL)
	removed := 0
	for id, s := range r.sessions {
		if s.State != session.StateActive || s.LastActivityAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until the context is
// cancelled.
func (r *SessionRegistry) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
