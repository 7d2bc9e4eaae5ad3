package session

import (
	"errors"
	"sync"
)

// ErrSessionNotFound is returned for lookups of unknown or removed sessions.
var ErrSessionNotFound = errors.New("session: not found")

// Manager holds live sessions in memory. Nothing survives a process restart;
// that is deliberate, there is no persistence anywhere in this service.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create registers a fresh session in the collectingProfile stage. deps is
// per-session; each session owns its playback controller.
func (m *Manager) Create(deps Deps) *Session {
	s := New(deps)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session; safe to call for unknown ids.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
