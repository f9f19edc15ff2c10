package testharness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mwhitford/stagehand/internal/config"
	"github.com/mwhitford/stagehand/internal/entrylog"
	"github.com/mwhitford/stagehand/internal/fakeagent"
	"github.com/mwhitford/stagehand/internal/logs"
)

// Scenario defines a deterministic smoke-test flow driven by a fakeagent
// script.
type Scenario struct {
	Name   string
	Prompt string
	Script fakeagent.Script
}

var (
	// ScenarioEchoSuccess exercises the happy path: prompt in, assistant
	// output on stdout, a tool warning on stderr.
	ScenarioEchoSuccess = Scenario{
		Name:   "echo-success",
		Prompt: "add a retry to the fetcher",
		Script: fakeagent.Script{
			EchoPrompt: true,
			Steps: []fakeagent.Step{
				{Text: "\x1b[32m ... done\x1b[0m"},
				{Stream: "stderr", Text: "warning: lockfile out of date"},
			},
		},
	}
	// ScenarioAgentFailure validates that a non-zero agent exit fails the
	// run.
	ScenarioAgentFailure = Scenario{
		Name:   "agent-failure",
		Prompt: "anything",
		Script: fakeagent.Script{
			Steps:    []fakeagent.Step{{Text: "starting"}},
			ExitCode: 2,
		},
	}
)

// SmokeOptions configures RunSmoke.
type SmokeOptions struct {
	Scenario        Scenario
	StagehandBinary string
	FakeAgentBinary string
	WorkspaceDir    string
	Env             map[string]string
}

// SmokeResult captures the outcome of a smoke scenario.
type SmokeResult struct {
	Scenario   Scenario
	Workspace  string
	Stdout     string
	Stderr     string
	RunErr     error
	ConfigPath string
	LogPath    string
	Entries    []logs.NormalizedEntry
}

// RunSmoke executes one scenario: it writes a config whose single profile
// points at the fakeagent binary, invokes `stagehand run`, and loads the
// NDJSON entry log the run produced.
func RunSmoke(ctx context.Context, opts SmokeOptions) (*SmokeResult, error) {
	if opts.StagehandBinary == "" {
		return nil, fmt.Errorf("stagehand binary path is required")
	}
	if opts.FakeAgentBinary == "" {
		return nil, fmt.Errorf("fakeagent binary path is required")
	}
	if opts.Scenario.Prompt == "" {
		return nil, fmt.Errorf("scenario prompt is required")
	}

	workspace := opts.WorkspaceDir
	if workspace == "" {
		var err error
		workspace, err = os.MkdirTemp("", "stagehand-smoke-")
		if err != nil {
			return nil, fmt.Errorf("failed to create workspace: %w", err)
		}
	} else {
		if err := os.MkdirAll(workspace, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}

	scriptPath := filepath.Join(workspace, "fakeagent-script.yaml")
	scriptData, err := yaml.Marshal(opts.Scenario.Script)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenario script: %w", err)
	}
	if err := os.WriteFile(scriptPath, scriptData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write scenario script: %w", err)
	}

	cfg := &config.Config{
		Version:        "1.0",
		DefaultProfile: "fake",
		Profiles: []config.Profile{{
			Name:         "fake",
			Command:      opts.FakeAgentBinary,
			BaseParams:   []string{"--script", scriptPath, "--log-level", "error"},
			ResumeParams: []string{"--resume"},
		}},
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("smoke config invalid: %w", err)
	}

	configPath := filepath.Join(workspace, "stagehand-smoke.yaml")
	if err := cfg.SaveToFile(configPath); err != nil {
		return nil, err
	}

	stdOut := &bytes.Buffer{}
	stdErr := &bytes.Buffer{}

	cmd := exec.CommandContext(ctx, opts.StagehandBinary, "run",
		"--config", configPath,
		"--prompt", opts.Scenario.Prompt,
		"--dir", workspace,
	)
	cmd.Dir = workspace
	cmd.Stdout = stdOut
	cmd.Stderr = stdErr
	cmd.Env = mergeEnv(os.Environ(), opts.Env)

	runErr := cmd.Run()

	result := &SmokeResult{
		Scenario:   opts.Scenario,
		Workspace:  workspace,
		Stdout:     stdOut.String(),
		Stderr:     stdErr.String(),
		RunErr:     runErr,
		ConfigPath: configPath,
	}

	matches, err := filepath.Glob(filepath.Join(workspace, ".stagehand", "logs", "*.ndjson"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 1 {
		result.LogPath = matches[0]
		if entries, err := entrylog.Read(matches[0]); err == nil {
			result.Entries = entries
		}
	}

	return result, nil
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	result := append([]string{}, base...)
	for k, v := range overrides {
		result = setEnv(result, k, v)
	}
	return result
}
