// Package registry tracks live chat sessions for the HTTP layer. Sessions
// exist only in memory: discarding one drops the remote handle without any
// close negotiated with the backend, and nothing survives a restart.
package registry

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"graminhealth/internal/chat"
)

// ErrNotFound is returned for unknown or already-discarded session IDs.
var ErrNotFound = errors.New("registry: session not found")

// Registry is a mutex-guarded map of session ID to live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]*chat.Session)}
}

// Add stores a session under a fresh UUID and returns the ID.
func (r *Registry) Add(s *chat.Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return id
}

// Get looks up a live session.
func (r *Registry) Get(id string) (*chat.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete discards a session. Deleting an unknown ID is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
