// Package fakeagent implements a scripted stand-in for a coding-agent CLI.
// It follows the real invocation convention: the prompt arrives on stdin,
// output streams to stdout/stderr, and a --resume flag selects the
// follow-up behaviour. Tests point a profile at the compiled binary to
// exercise the full spawn/stream/normalize pipeline deterministically.
package fakeagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Step is one scripted output emission.
type Step struct {
	// Stream selects the output channel: "stdout" (default) or "stderr".
	Stream string `yaml:"stream,omitempty"`
	// Text is written verbatim, ANSI escapes included.
	Text string `yaml:"text"`
	// DelayMs pauses before the write, to simulate a thinking tool.
	DelayMs int `yaml:"delay_ms,omitempty"`
}

// Script describes what the fake agent does for one invocation.
type Script struct {
	// EchoPrompt echoes the stdin prompt to stdout before any steps.
	EchoPrompt bool `yaml:"echo_prompt,omitempty"`
	// ExitCode is the process exit status after all steps ran.
	ExitCode int `yaml:"exit_code,omitempty"`
	// Steps replay on an initial invocation.
	Steps []Step `yaml:"steps"`
	// ResumeSteps replay instead of Steps when invoked with --resume.
	// Empty means follow-ups reuse Steps.
	ResumeSteps []Step `yaml:"resume_steps,omitempty"`
}

// Load reads a script from the provided path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script YAML: %w", err)
	}

	if len(script.Steps) == 0 && !script.EchoPrompt {
		return nil, fmt.Errorf("script has no steps and does not echo the prompt")
	}

	return &script, nil
}

// Agent replays a script once and exits.
type Agent struct {
	script *Script
	logger *slog.Logger
}

// New constructs an agent for the script.
func New(script *Script, logger *slog.Logger) (*Agent, error) {
	if script == nil {
		return nil, errors.New("script is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{script: script, logger: logger}, nil
}

// Run consumes the prompt from stdin, replays the scripted output, and
// returns the scripted exit code as an *ExitError when non-zero. resumed
// selects the resume steps.
func (a *Agent) Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, resumed bool) error {
	prompt, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read prompt: %w", err)
	}
	a.logger.Debug("prompt received", "bytes", len(prompt), "resumed", resumed)

	if a.script.EchoPrompt {
		if _, err := stdout.Write(prompt); err != nil {
			return fmt.Errorf("echo prompt: %w", err)
		}
	}

	steps := a.script.Steps
	if resumed && len(a.script.ResumeSteps) > 0 {
		steps = a.script.ResumeSteps
	}

	for i, step := range steps {
		if step.DelayMs > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(step.DelayMs) * time.Millisecond):
			}
		}

		w := stdout
		if step.Stream == "stderr" {
			w = stderr
		}
		if _, err := io.WriteString(w, step.Text); err != nil {
			return fmt.Errorf("write step %d: %w", i, err)
		}
	}

	if a.script.ExitCode != 0 {
		return &ExitError{Code: a.script.ExitCode}
	}
	return nil
}

// ExitError carries a scripted non-zero exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("scripted exit code %d", e.Code)
}
