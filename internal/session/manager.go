package session

import "sync"

// Manager holds the conversation state for every active chat. States default
// to Idle and are dropped from memory once a chat returns to Idle.
type Manager struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{states: make(map[int64]State)}
}

// Get returns the current state for a chat, defaulting to Idle.
func (m *Manager) Get(chatID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[chatID]; ok {
		return state
	}
	return Idle{}
}

// Apply transitions the chat's state with the given event and returns the
// resulting state. Invalid events leave the state untouched.
func (m *Manager) Apply(chatID int64, event Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.states[chatID]
	if !ok {
		current = Idle{}
	}

	next, err := Transition(current, event)
	if err != nil {
		return current, err
	}

	if next.Kind() == KindIdle {
		delete(m.states, chatID)
	} else {
		m.states[chatID] = next
	}
	return next, nil
}

// Reset forces a chat back to Idle regardless of its current state.
func (m *Manager) Reset(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
}

// ProcessingChat returns the chat currently processing the given job, if any.
func (m *Manager) ProcessingChat(jobID int64) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for chatID, state := range m.states {
		if processing, ok := state.(Processing); ok && processing.JobID == jobID {
			return chatID, true
		}
	}
	return 0, false
}

// ActiveCount reports how many chats are mid-conversation.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
