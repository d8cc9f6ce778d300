package store

import (
	"context"
	"sync"
	"time"
)

// MemoryKV is a process local key-value store. Entries are lost on restart.
type MemoryKV struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryKV creates an empty store. A zero ttl keeps entries forever.
func NewMemoryKV(ttl time.Duration) *MemoryKV {
	return &MemoryKV{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
