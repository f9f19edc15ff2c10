package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitford/stagehand/internal/action"
)

// MemoryStore is a concurrent-safe in-memory Store. Records are held in
// insertion order, so "latest" is the most recently created match.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  []*Session
	processes []*ExecutionProcess
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// CreateSession records a new session for the workspace.
func (s *MemoryStore) CreateSession(_ context.Context, workspaceID uuid.UUID, executor string) (*Session, error) {
	session := &Session{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Executor:    executor,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()
	return session, nil
}

// LatestSession returns the most recent session for the workspace, or
// (nil, nil) when none exists.
func (s *MemoryStore) LatestSession(_ context.Context, workspaceID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].WorkspaceID == workspaceID {
			return s.sessions[i], nil
		}
	}
	return nil, nil
}

// CreateExecutionProcess records a scheduled action chain.
func (s *MemoryStore) CreateExecutionProcess(_ context.Context, sessionID, workspaceID uuid.UUID, reason RunReason, act *action.ExecutorAction) (*ExecutionProcess, error) {
	process := &ExecutionProcess{
		ID:          uuid.New(),
		SessionID:   sessionID,
		WorkspaceID: workspaceID,
		RunReason:   reason,
		Action:      act,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.processes = append(s.processes, process)
	s.mu.Unlock()
	return process, nil
}

// LatestExecutionProcess returns the most recent process for the workspace
// and run reason, or (nil, nil) when none exists.
func (s *MemoryStore) LatestExecutionProcess(_ context.Context, workspaceID uuid.UUID, reason RunReason) (*ExecutionProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.processes) - 1; i >= 0; i-- {
		p := s.processes[i]
		if p.WorkspaceID == workspaceID && p.RunReason == reason {
			return p, nil
		}
	}
	return nil, nil
}
