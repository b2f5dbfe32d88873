package service

import (
	"sync"
	"time"

	"docproc/internal/domain"
)

// WorkspaceMaxIdle is how long an untouched workspace is kept.
const WorkspaceMaxIdle = 2 * time.Hour

// WorkspaceManager holds one workspace per browser client.
type WorkspaceManager struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	logger     domain.Logger
}

// NewWorkspaceManager creates an empty manager.
func NewWorkspaceManager(logger domain.Logger) *WorkspaceManager {
	return &WorkspaceManager{
		workspaces: make(map[string]*Workspace),
		logger:     logger,
	}
}

// Get returns the workspace of a client if it exists.
func (m *WorkspaceManager) Get(clientID string) (*Workspace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, ok := m.workspaces[clientID]
	return ws, ok
}

// GetOrCreate returns the workspace of a client, creating it on first use.
func (m *WorkspaceManager) GetOrCreate(clientID string) *Workspace {
	if ws, ok := m.Get(clientID); ok {
		return ws
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ws, ok := m.workspaces[clientID]; ok {
		return ws
	}
	ws := NewWorkspace(clientID, m.logger)
	m.workspaces[clientID] = ws
	m.logger.Debug("Workspace created", "client_id", clientID)
	return ws
}

// Remove drops a client's workspace. Calls still in flight finish against the
// detached workspace and are never shown.
func (m *WorkspaceManager) Remove(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workspaces[clientID]; ok {
		delete(m.workspaces, clientID)
		m.logger.Debug("Workspace removed", "client_id", clientID)
	}
}

// Count returns the number of live workspaces.
func (m *WorkspaceManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// CleanupIdle removes workspaces untouched for longer than maxIdle and
// returns how many were removed.
func (m *WorkspaceManager) CleanupIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, ws := range m.workspaces {
		if ws.LastAccessed().Before(cutoff) {
			delete(m.workspaces, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Idle workspaces removed", "count", removed, "remaining", len(m.workspaces))
	}
	return removed
}
