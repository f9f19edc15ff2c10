package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mwhitford/stagehand/internal/action"
	"github.com/mwhitford/stagehand/internal/entrylog"
	"github.com/mwhitford/stagehand/internal/executor"
	"github.com/mwhitford/stagehand/internal/msgstore"
	"github.com/mwhitford/stagehand/internal/runner"
	"github.com/mwhitford/stagehand/internal/task"
	"github.com/mwhitford/stagehand/internal/transcript"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a new coding-agent session",
	Long: `Start a new session with the configured coding-agent CLI. The prompt
is delivered on stdin and the tool's output is streamed back as normalized
entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd, false)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Send a follow-up prompt to the most recent session",
	Long: `Resume the tool's most recent session in the same session directory
and deliver a follow-up prompt. Note: the external tool resumes its own
latest session; the --session id is recorded for diagnostics only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, resumeCmd} {
		c.Flags().StringP("profile", "p", "", "Executor profile to use (default: config default_profile)")
		c.Flags().String("prompt", "", "Prompt text to send to the agent (required)")
		c.Flags().String("model", "", "Model to request, when the profile supports it")
		c.Flags().StringP("dir", "d", "", "Task working directory (default: current directory)")
	}
	resumeCmd.Flags().String("session", "", "Session id, recorded for diagnostics")
}

func runAgent(cmd *cobra.Command, followUp bool) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadOrCreateConfig(cmd, logger)
	if err != nil {
		return err
	}

	profileName, _ := cmd.Flags().GetString("profile")
	profile, err := cfg.Profile(profileName)
	if err != nil {
		return err
	}

	prompt, _ := cmd.Flags().GetString("prompt")
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("--prompt is required")
	}
	model, _ := cmd.Flags().GetString("model")

	var sessionID string
	if followUp {
		sessionID, _ = cmd.Flags().GetString("session")
	}

	workdir, err := workdirFlag(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := executor.NewRegistry(cfg, logger)
	stores := msgstore.NewRegistry(logger)
	taskStore := task.NewMemoryStore()
	env := buildEnv(cfg)

	// One workspace per task directory for this invocation; sessions are
	// created lazily on first use.
	workspaceID := uuid.New()
	session, err := taskStore.LatestSession(ctx, workspaceID)
	if err != nil {
		return err
	}
	if session == nil {
		session, err = taskStore.CreateSession(ctx, workspaceID, profile.Name)
		if err != nil {
			return err
		}
	}

	act := action.NewCodingAgent(action.CodingAgentRequest{
		Profile:   profile.Name,
		Prompt:    prompt,
		Model:     model,
		FollowUp:  followUp,
		SessionID: sessionID,
	})
	process, err := taskStore.CreateExecutionProcess(ctx, session.ID, workspaceID, task.RunReasonCodingAgent, act)
	if err != nil {
		return err
	}

	store := stores.GetOrCreate(process.ID)

	logPath := filepath.Join(workdir, ".stagehand", "logs", process.ID.String()+".ndjson")
	elog, err := entrylog.New(logPath, logger)
	if err != nil {
		return err
	}
	defer elog.Close()

	out := cmd.OutOrStdout()
	formatter := transcript.NewFormatter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range store.EntryStream(ctx) {
			fmt.Fprintln(out, formatter.FormatEntry(entry))
			if err := elog.Write(entry); err != nil {
				logger.Warn("failed to persist entry", "index", entry.Index, "error", err)
			}
		}
	}()

	r := runner.New(registry, stores, env, logger)
	runErr := r.RunProcess(ctx, process, workdir)
	stores.Remove(process.ID)
	<-done

	if runErr != nil {
		return runErr
	}

	if id, ok := store.SessionID(); ok {
		logger.Info("session complete", "session_id", id, "log", logPath)
	}
	return nil
}
