package testharness

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitford/stagehand/internal/logs"
)

func buildForSmoke(t *testing.T) (string, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	root, err := DetectRepoRoot()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	stagehand, fakeagent, err := BuildBinaries(ctx, root, t.TempDir())
	require.NoError(t, err)
	return stagehand, fakeagent
}

func TestSmokeEchoSuccess(t *testing.T) {
	stagehand, agent := buildForSmoke(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := RunSmoke(ctx, SmokeOptions{
		Scenario:        ScenarioEchoSuccess,
		StagehandBinary: stagehand,
		FakeAgentBinary: agent,
		WorkspaceDir:    t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, result.RunErr, "stdout:\n%s\nstderr:\n%s", result.Stdout, result.Stderr)
	require.NotEmpty(t, result.LogPath, "run must persist an entry log")

	var assistant, system string
	for _, entry := range result.Entries {
		switch entry.Type {
		case logs.EntryTypeAssistantMessage:
			assistant += entry.Content
		case logs.EntryTypeSystemMessage:
			system += entry.Content
		}
	}

	assert.Contains(t, assistant, "add a retry to the fetcher")
	assert.Contains(t, assistant, "done")
	assert.NotContains(t, assistant, "\x1b[", "ANSI escapes must be stripped")
	assert.Contains(t, system, "lockfile out of date")
}

func TestSmokeAgentFailure(t *testing.T) {
	stagehand, agent := buildForSmoke(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := RunSmoke(ctx, SmokeOptions{
		Scenario:        ScenarioAgentFailure,
		StagehandBinary: stagehand,
		FakeAgentBinary: agent,
		WorkspaceDir:    t.TempDir(),
	})
	require.NoError(t, err)
	assert.Error(t, result.RunErr, "a non-zero agent exit must fail the run")
	assert.True(t, strings.Contains(result.Stderr, "exit") || result.Stderr != "", "stderr carries the failure")
}
