package convstate

import (
	"context"
	"sync"
)

// MemoryStore is an in-process state store. Used when no database is
// configured and by tests. States are cloned on the way in and out so
// callers can't mutate stored history behind the store's back.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (m *MemoryStore) Get(_ context.Context, conversationID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.states[conversationID]; ok {
		return st.Clone(), nil
	}
	return NewState(conversationID), nil
}

func (m *MemoryStore) Put(_ context.Context, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.ConversationID] = st.Clone()
	return nil
}
