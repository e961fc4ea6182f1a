package session

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Each session expires after the TTL since its last write.
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration
	// mu guards the value maps stored in the cache.
	mu sync.Mutex
}

// NewMemoryStore returns a new MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(ttl, time.Minute), ttl: ttl}
}

// Put implements the Store interface.
func (m *MemoryStore) Put(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := m.values(sessionID)
	if values == nil {
		values = map[string]string{}
	}

	values[key] = value
	m.cache.Set(sessionID, values, m.ttl)
	return nil
}

// Get implements the Store interface.
func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, exists := m.values(sessionID)[key]
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

// Forget implements the Store interface.
func (m *MemoryStore) Forget(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values(sessionID), key)
	return nil
}

// Rename implements the Store interface.
func (m *MemoryStore) Rename(_ context.Context, oldID, newID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := m.values(oldID)
	if values == nil {
		return nil
	}

	m.cache.Delete(oldID)
	m.cache.Set(newID, values, m.ttl)
	return nil
}

// Delete implements the Store interface.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Delete(sessionID)
	return nil
}

// values returns the value map of a session, or nil.
func (m *MemoryStore) values(sessionID string) map[string]string {
	v, ok := m.cache.Get(sessionID)
	if !ok {
		return nil
	}
	values, _ := v.(map[string]string)
	return values
}
