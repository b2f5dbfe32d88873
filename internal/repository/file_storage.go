package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"docproc/internal/domain"
)

// FileStateStore persists client flags in a single JSON document on disk so
// they survive restarts.
type FileStateStore struct {
	path   string
	logger domain.Logger

	mu     sync.Mutex
	values map[string]map[string]string
}

// NewFileStateStore loads the store at path, creating parent directories.
// A missing file is an empty store.
func NewFileStateStore(path string, logger domain.Logger) (*FileStateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &FileStateStore{
		path:   path,
		logger: logger,
		values: make(map[string]map[string]string),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to decode state file: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]map[string]string)
	}
	return s, nil
}

func (s *FileStateStore) Get(_ context.Context, clientID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[clientID][key]
	if !ok {
		return "", domain.ErrStorageKeyNotFound
	}
	return v, nil
}

func (s *FileStateStore) Set(_ context.Context, clientID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[clientID] == nil {
		s.values[clientID] = make(map[string]string)
	}
	s.values[clientID][key] = value
	return s.flushLocked()
}

func (s *FileStateStore) Delete(_ context.Context, clientID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[clientID][key]; !ok {
		return nil
	}
	delete(s.values[clientID], key)
	if len(s.values[clientID]) == 0 {
		delete(s.values, clientID)
	}
	return s.flushLocked()
}

// flushLocked writes through a temp file and rename so readers never see a
// torn document.
func (s *FileStateStore) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".client_state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.logger.Debug("Client state flushed", "path", s.path, "clients", len(s.values))
	return nil
}
