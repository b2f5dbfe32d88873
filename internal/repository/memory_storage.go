package repository

import (
	"context"
	"sync"

	"docproc/internal/domain"
)

// MemoryStateStore keeps client flags in process memory. Flags are lost on
// restart.
type MemoryStateStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryStateStore creates an empty in-memory store
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{values: make(map[string]map[string]string)}
}

func (s *MemoryStateStore) Get(_ context.Context, clientID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[clientID][key]
	if !ok {
		return "", domain.ErrStorageKeyNotFound
	}
	return v, nil
}

func (s *MemoryStateStore) Set(_ context.Context, clientID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[clientID] == nil {
		s.values[clientID] = make(map[string]string)
	}
	s.values[clientID][key] = value
	return nil
}

func (s *MemoryStateStore) Delete(_ context.Context, clientID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values[clientID], key)
	if len(s.values[clientID]) == 0 {
		delete(s.values, clientID)
	}
	return nil
}
