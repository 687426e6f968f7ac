package server

import (
	"sync"
)

// ConnectionRegistry tracks which accounts currently hold live websocket
// sessions. State is process-local and rebuilt from nothing on restart;
// multi-instance deployments would need a shared store in front of it.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	sessions map[int]map[string]struct{}
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		sessions: make(map[int]map[string]struct{}),
	}
}

// Register adds a session for the account. Idempotent.
func (r *ConnectionRegistry) Register(accountId int, sessionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[accountId] == nil {
		r.sessions[accountId] = make(map[string]struct{})
	}
	r.sessions[accountId][sessionId] = struct{}{}
}

// Unregister removes a session; the account entry is dropped when its
// last session goes. A no-op for unknown accounts or sessions.
func (r *ConnectionRegistry) Unregister(accountId int, sessionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.sessions[accountId]
	if !ok {
		return
	}

	delete(sessions, sessionId)
	if len(sessions) == 0 {
		delete(r.sessions, accountId)
	}
}

func (r *ConnectionRegistry) IsOnline(accountId int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions[accountId]) > 0
}

func (r *ConnectionRegistry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
