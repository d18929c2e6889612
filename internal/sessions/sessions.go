// Package sessions maintains the table of named MIDI sessions commands can
// be routed to. Session transports are shared handles; the table supports
// concurrent senders.
package sessions

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

// SendFunc delivers one MIDI message over a session's transport
type SendFunc func(msg midi.Message) error

// Manager maps session names to their transports
type Manager struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	sessions map[string]SendFunc
}

// NewManager creates an empty session manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:   logger,
		sessions: map[string]SendFunc{},
	}
}

// Add registers a session transport under a name, replacing any previous
// transport with that name
func (m *Manager) Add(name string, send SendFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[name] = send
}

// Remove drops a session from the table
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, name)
}

// SendToSession delivers a MIDI message to a named session. An unknown
// session name is reported and swallowed so that sibling commands still run;
// transport failures are returned to the caller.
func (m *Manager) SendToSession(name string, msg midi.Message) error {
	m.mu.RLock()
	send, ok := m.sessions[name]
	m.mu.RUnlock()

	if !ok {
		m.logger.Warn("session not found", zap.String("session", name))
		return nil
	}

	m.logger.Debug("sending MIDI message to session",
		zap.String("session", name),
		zap.String("message", msg.String()))

	if err := send(msg); err != nil {
		return fmt.Errorf("send to session %q: %w", name, err)
	}
	return nil
}

// SessionNames returns the names of all registered sessions
func (m *Manager) SessionNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	return names
}
