package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mwhitford/stagehand/internal/action"
	"github.com/mwhitford/stagehand/internal/config"
)

// ScheduleSetup records a setup run for the workspace: the profile's
// install script, chained ahead of the latest coding-agent action when one
// exists. The inherited chain rides along unchanged, so repeated setup
// runs are idempotent and order-preserving across retries. The session is
// created lazily on first use.
//
// The new process is recorded under the coding-agent run reason so that
// the next setup run finds it and keeps extending the same chain.
func ScheduleSetup(ctx context.Context, store Store, workspaceID uuid.UUID, profile config.Profile, logger *slog.Logger) (*ExecutionProcess, error) {
	latest, err := store.LatestExecutionProcess(ctx, workspaceID, RunReasonCodingAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to look up latest execution process: %w", err)
	}

	var prior *action.ExecutorAction
	if latest != nil {
		prior = latest.Action
	}

	setup, err := action.ComposeSetup(profile, prior)
	if err != nil {
		return nil, err
	}

	session, err := store.LatestSession(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		session, err = store.CreateSession(ctx, workspaceID, profile.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		logger.Info("created session", "session_id", session.ID, "workspace_id", workspaceID, "executor", profile.Name)
	}

	process, err := store.CreateExecutionProcess(ctx, session.ID, workspaceID, RunReasonCodingAgent, setup)
	if err != nil {
		return nil, fmt.Errorf("failed to record execution process: %w", err)
	}

	logger.Info("scheduled setup",
		"execution_process", process.ID,
		"workspace_id", workspaceID,
		"chain_length", setup.Len())

	return process, nil
}
