package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mwhitford/stagehand/internal/command"
	"github.com/mwhitford/stagehand/internal/config"
)

// CLIExecutor drives one external coding-agent CLI described by a config
// profile. The tool's command-line syntax is entirely configuration; the
// executor only knows the invocation convention: initial runs get the base
// command plus fixed flags, follow-ups additionally get the resume flags,
// and user overrides are applied last.
type CLIExecutor struct {
	profile   config.Profile
	model     string
	overrides command.Overrides
	logger    *slog.Logger

	// timeGap overrides the normalization quiescence window; zero selects
	// logs.DefaultTimeGap. Set by tests.
	timeGap time.Duration
}

// NewCLIExecutor creates an executor for the profile.
func NewCLIExecutor(profile config.Profile, logger *slog.Logger) *CLIExecutor {
	return &CLIExecutor{
		profile: profile,
		logger:  logger.With("executor", profile.Name),
	}
}

// WithModel returns a copy that requests the given model when the profile
// defines a model-selection flag.
func (e *CLIExecutor) WithModel(model string) *CLIExecutor {
	next := *e
	next.model = model
	return &next
}

// WithOverrides returns a copy with user-supplied command overrides.
func (e *CLIExecutor) WithOverrides(o command.Overrides) *CLIExecutor {
	next := *e
	next.overrides = o
	return &next
}

// Name returns the profile name.
func (e *CLIExecutor) Name() string {
	return e.profile.Name
}

// SessionDirName is the fixed convention for the per-task session
// subdirectory created under the task's working directory.
func (e *CLIExecutor) SessionDirName() string {
	return fmt.Sprintf(".%s-sessions", e.profile.Name)
}

func (e *CLIExecutor) commandBuilder() command.Builder {
	builder := command.NewBuilder(e.profile.Command)
	builder = builder.ExtendParams(e.profile.BaseParams...)
	if e.model != "" && e.profile.ModelFlag != "" {
		builder = builder.ExtendParams(e.profile.ModelFlag, e.model)
	}
	return command.ApplyOverrides(builder, e.overrides)
}

// Spawn starts an initial invocation of the tool.
func (e *CLIExecutor) Spawn(ctx context.Context, workdir, prompt string, env command.Env) (*SpawnedChild, error) {
	parts := e.commandBuilder().BuildInitial()
	e.logger.Info("starting new session", "workdir", workdir, "prompt_chars", len(prompt))
	return e.spawn(ctx, workdir, prompt, parts, env)
}

// SpawnFollowUp resumes the tool's most recent session in the same session
// directory. The session id is logged for diagnostics only; which session
// the tool resumes is its own notion of "latest".
func (e *CLIExecutor) SpawnFollowUp(ctx context.Context, workdir, prompt, sessionID string, env command.Env) (*SpawnedChild, error) {
	parts := e.commandBuilder().BuildFollowUp(e.profile.ResumeParams)
	e.logger.Info("resuming session", "workdir", workdir, "session_id", sessionID, "prompt_chars", len(prompt))
	return e.spawn(ctx, workdir, prompt, parts, env)
}

func (e *CLIExecutor) spawn(ctx context.Context, workdir, prompt string, parts command.Parts, env command.Env) (*SpawnedChild, error) {
	path, args, err := parts.IntoResolved()
	if err != nil {
		return nil, err
	}

	// Each task gets its own session directory so successive or concurrent
	// sessions never cross-contaminate on-disk state. Created idempotently;
	// follow-ups reuse it.
	sessionDir := filepath.Join(workdir, e.SessionDirName())
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", sessionDir, err)
	}

	combined := e.combinePrompt(prompt)

	e.logger.Debug("resolved command", "path", path, "args", args, "session_dir", sessionDir)

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = sessionDir
	env.WithProfile(e.overrides.EnvProfile).Apply(cmd)
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	child := &SpawnedChild{cmd: cmd, stdout: stdout, stderr: stderr}

	// The full prompt goes to stdin as UTF-8, then the stream is closed so
	// the tool sees end of input and starts responding. Any failure here is
	// fatal: no partial-prompt retry is attempted.
	if err := writePrompt(stdin, combined); err != nil {
		child.Close()
		return nil, fmt.Errorf("%w: %v", ErrStdin, err)
	}

	e.logger.Info("child started", "pid", child.PID())

	return child, nil
}

func writePrompt(stdin io.WriteCloser, prompt string) error {
	if _, err := io.WriteString(stdin, prompt); err != nil {
		stdin.Close()
		return fmt.Errorf("write prompt: %w", err)
	}
	if err := stdin.Close(); err != nil {
		return fmt.Errorf("close stdin: %w", err)
	}
	return nil
}

func (e *CLIExecutor) combinePrompt(prompt string) string {
	if e.profile.AppendPrompt == "" {
		return prompt
	}
	return prompt + "\n" + e.profile.AppendPrompt
}

// Availability probes the search path for the profile's executable.
func (e *CLIExecutor) Availability() Availability {
	if _, err := exec.LookPath(e.profile.Executable()); err == nil {
		return AvailabilityFound
	}
	return AvailabilityNotFound
}

// DefaultConfigPath advertises the tool's config file under the user's
// home directory. No home directory means no default path, not an error.
func (e *CLIExecutor) DefaultConfigPath() string {
	if e.profile.ConfigDir == "" {
		return ""
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, e.profile.ConfigDir, "config.json")
}
