package a11y

import "sync"

// ModalSlot tracks the single open modal. Opening a second modal replaces
// the first; there is no stack.
type ModalSlot struct {
	mu     sync.Mutex
	active string
}

// Open makes id the active modal and returns the one it displaced, if any.
func (m *ModalSlot) Open(id string) (replaced string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != id {
		replaced = m.active
	}
	m.active = id
	return replaced
}

// Close closes id if it is the active modal.
func (m *ModalSlot) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" || m.active != id {
		return false
	}
	m.active = ""
	return true
}

// Escape closes whichever modal is open.
func (m *ModalSlot) Escape() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return "", false
	}
	id := m.active
	m.active = ""
	return id, true
}

func (m *ModalSlot) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != ""
}
