package session

import "sync"

// Manager is the in-process registry of live sessions, one per token.
// Sessions are ephemeral: they exist only between token resolution and
// the terminal transition, and are dropped once the host discards them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the live session for a token, if any.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

// Put registers a session under its token, replacing nothing: an
// existing live session for the token wins, so a duplicate open
// resumes rather than resets.
func (m *Manager) Put(s *Session) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[s.Token]; ok {
		return existing
	}
	m.sessions[s.Token] = s
	return s
}

// Delete drops a session from the registry after tearing its timer
// down.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[token]; ok {
		s.Teardown()
		delete(m.sessions, token)
	}
}

// Close tears down every live session; used on host shutdown so no
// timer outlives the process's serving loop.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		s.Teardown()
		delete(m.sessions, token)
	}
}
