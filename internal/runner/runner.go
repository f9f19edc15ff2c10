// Package runner executes scheduled action chains: setup scripts first,
// then coding-agent invocations, strictly in chain order.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/google/uuid"

	"github.com/mwhitford/stagehand/internal/action"
	"github.com/mwhitford/stagehand/internal/command"
	"github.com/mwhitford/stagehand/internal/executor"
	"github.com/mwhitford/stagehand/internal/msgstore"
	"github.com/mwhitford/stagehand/internal/task"
)

// Runner executes the action chain of an execution process. It performs no
// retries itself; a failed step fails the whole process and any
// retry/backoff policy belongs to the orchestrator observing it.
type Runner struct {
	registry *executor.Registry
	stores   *msgstore.Registry
	env      command.Env
	logger   *slog.Logger
}

// New creates a runner.
func New(registry *executor.Registry, stores *msgstore.Registry, env command.Env, logger *slog.Logger) *Runner {
	return &Runner{
		registry: registry,
		stores:   stores,
		env:      env,
		logger:   logger,
	}
}

// RunProcess executes every action of the process's chain in order inside
// workdir. The process's message store collects output from each
// coding-agent step; it is marked closed when the chain ends.
func (r *Runner) RunProcess(ctx context.Context, process *task.ExecutionProcess, workdir string) error {
	primary := r.stores.GetOrCreate(process.ID)
	defer primary.Close()

	for i, act := range process.Action.Chain() {
		r.logger.Info("running action", "execution_process", process.ID, "step", i, "action", act.Describe())
		var err error
		switch act.Type {
		case action.TypeScript:
			err = r.runScript(ctx, act.Script, workdir)
		case action.TypeCodingAgent:
			// One spawn per store: a later agent step in the same chain
			// gets a store of its own.
			store := primary
			if store.Finished() {
				store = r.stores.GetOrCreate(uuid.New())
				defer store.Close()
			}
			err = r.runCodingAgent(ctx, act.CodingAgent, workdir, store)
		default:
			err = fmt.Errorf("unknown action type %q", act.Type)
		}
		if err != nil {
			return fmt.Errorf("action %d (%s): %w", i, act.Describe(), err)
		}
	}
	return nil
}

func (r *Runner) runScript(ctx context.Context, req *action.ScriptRequest, workdir string) error {
	if req.Language != action.LanguageBash {
		return fmt.Errorf("unsupported script language %q", req.Language)
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", req.Script)
	cmd.Dir = workdir
	r.env.Apply(cmd)

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.logger.Debug("script output", "context", req.Context, "output", string(out))
	}
	if err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	return nil
}

func (r *Runner) runCodingAgent(ctx context.Context, req *action.CodingAgentRequest, workdir string, store *msgstore.Store) error {
	exe, err := r.registry.Get(req.Profile)
	if err != nil {
		return err
	}
	if cli, ok := exe.(*executor.CLIExecutor); ok {
		if req.Model != "" {
			cli = cli.WithModel(req.Model)
		}
		if !req.Overrides.IsZero() {
			cli = cli.WithOverrides(req.Overrides)
		}
		exe = cli
	}

	var child *executor.SpawnedChild
	if req.FollowUp {
		child, err = exe.SpawnFollowUp(ctx, workdir, req.Prompt, req.SessionID, r.env)
	} else {
		child, err = exe.Spawn(ctx, workdir, req.Prompt, r.env)
	}
	if err != nil {
		return err
	}
	defer child.Close()

	tasks := exe.NormalizeLogs(ctx, store)

	// Forward blocks until both pipes hit EOF, which tracks process exit.
	store.Forward(child.Stdout(), child.Stderr())
	waitErr := child.Wait()
	tasks.Wait()

	if waitErr != nil {
		return fmt.Errorf("agent exited with error: %w", waitErr)
	}
	return nil
}
