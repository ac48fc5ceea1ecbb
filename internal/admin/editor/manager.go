package editor

import "sync"

// Manager hands out one Editor per session so each signed-in user gets an
// independent edit slot.
type Manager struct {
	mu      sync.Mutex
	editors map[string]*Editor
	build   func() *Editor
}

// NewManager constructs a Manager building editors with the given commit
// function and options.
func NewManager(fn CommitFunc, opts ...Option) *Manager {
	return &Manager{
		editors: make(map[string]*Editor),
		build: func() *Editor {
			return New(fn, opts...)
		},
	}
}

// Editor returns the session's editor, creating it on first use.
func (m *Manager) Editor(sessionID string) *Editor {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.editors[sessionID]
	if !ok {
		e = m.build()
		m.editors[sessionID] = e
	}
	return e
}

// Drop removes the session's editor, cancelling any open edit.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	e, ok := m.editors[sessionID]
	if ok {
		delete(m.editors, sessionID)
	}
	m.mu.Unlock()

	if ok {
		e.Cancel()
	}
}
