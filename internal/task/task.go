// Package task defines the session and execution-process entities that
// anchor executor invocations to a workspace, plus the store interface
// collaborators implement to persist them.
package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitford/stagehand/internal/action"
)

// RunReason tags why an execution process was scheduled.
type RunReason string

const (
	RunReasonCodingAgent RunReason = "coding_agent"
	RunReasonSetupScript RunReason = "setup_script"
)

// Session identifies a logical conversation with an external agent tool.
// It is created lazily on the first setup or invocation for a workspace
// and never mutated afterwards. One active session per workspace is
// assumed.
type Session struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	// Executor names the profile that created the session.
	Executor  string
	CreatedAt time.Time
}

// ExecutionProcess is one scheduled run of an executor action chain within
// a session and workspace.
type ExecutionProcess struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	WorkspaceID uuid.UUID
	RunReason   RunReason
	Action      *action.ExecutorAction
	CreatedAt   time.Time
}

// Store persists sessions and execution processes. Database persistence is
// a collaborator concern; stagehand ships with an in-memory implementation.
// Latest* methods return (nil, nil) when no matching record exists.
type Store interface {
	CreateSession(ctx context.Context, workspaceID uuid.UUID, executor string) (*Session, error)
	LatestSession(ctx context.Context, workspaceID uuid.UUID) (*Session, error)
	CreateExecutionProcess(ctx context.Context, sessionID, workspaceID uuid.UUID, reason RunReason, act *action.ExecutorAction) (*ExecutionProcess, error)
	LatestExecutionProcess(ctx context.Context, workspaceID uuid.UUID, reason RunReason) (*ExecutionProcess, error)
}
