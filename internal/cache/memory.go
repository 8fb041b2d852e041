// Package cache - memory.go provides the default in-process store.
package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-process Store. Expired entries are dropped
// lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get returns the entry for key, or nil if absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if entry.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, nil
	}
	return entry, nil
}

// Set stores content under key with the given ttl.
func (s *MemoryStore) Set(_ context.Context, key string, content []byte, ttl time.Duration) error {
	now := time.Now()
	s.mu.Lock()
	s.entries[key] = &Entry{
		URL:       key,
		Content:   content,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Invalidate removes the entry for key.
func (s *MemoryStore) Invalidate(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
