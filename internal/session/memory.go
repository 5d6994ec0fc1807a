package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Expired entries are dropped on read.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Session
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Session),
		now:   time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s Session) error {
	m.mu.Lock()
	m.items[s.ID] = s
	m.mu.Unlock()

	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	s, ok := m.items[id]
	m.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}

	if s.Expired(m.now()) {
		m.mu.Lock()
		delete(m.items, id)
		m.mu.Unlock()
		return Session{}, ErrNotFound
	}

	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}

	delete(m.items, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}
