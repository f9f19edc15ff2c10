package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitford/stagehand/internal/action"
	"github.com/mwhitford/stagehand/internal/command"
	"github.com/mwhitford/stagehand/internal/config"
	"github.com/mwhitford/stagehand/internal/executor"
	"github.com/mwhitford/stagehand/internal/logs"
	"github.com/mwhitford/stagehand/internal/msgstore"
	"github.com/mwhitford/stagehand/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRunner wires a runner around a single "cat" profile, which echoes
// its prompt and exits.
func newTestRunner(t *testing.T) (*Runner, *msgstore.Registry) {
	t.Helper()
	cfg := &config.Config{
		Version:  "1.0",
		Profiles: []config.Profile{{Name: "cat", Command: "cat"}},
	}
	require.NoError(t, cfg.Validate())

	stores := msgstore.NewRegistry(testLogger())
	registry := executor.NewRegistry(cfg, testLogger())
	return New(registry, stores, command.NewEnv(), testLogger()), stores
}

func newProcess(act *action.ExecutorAction) *task.ExecutionProcess {
	return &task.ExecutionProcess{
		ID:          uuid.New(),
		SessionID:   uuid.New(),
		WorkspaceID: uuid.New(),
		RunReason:   task.RunReasonCodingAgent,
		Action:      act,
	}
}

func assistantContent(entries []logs.NormalizedEntry) string {
	for _, e := range entries {
		if e.Type == logs.EntryTypeAssistantMessage {
			return e.Content
		}
	}
	return ""
}

func TestRunProcessScriptThenAgent(t *testing.T) {
	r, stores := newTestRunner(t)
	workdir := t.TempDir()

	agent := action.NewCodingAgent(action.CodingAgentRequest{Profile: "cat", Prompt: "implement the widget"})
	chain := action.Append(
		action.NewScript(action.ScriptRequest{Script: "touch setup-ran", Language: action.LanguageBash, Context: action.ContextSetup}),
		agent,
	)
	process := newProcess(chain)

	require.NoError(t, r.RunProcess(context.Background(), process, workdir))

	_, err := os.Stat(filepath.Join(workdir, "setup-ran"))
	assert.NoError(t, err, "setup script must run in the working directory")

	store := stores.GetOrCreate(process.ID)
	assert.Equal(t, "implement the widget", assistantContent(store.Entries()))
	_, hasSession := store.SessionID()
	assert.True(t, hasSession)
}

func TestRunProcessScriptFailureStopsChain(t *testing.T) {
	r, _ := newTestRunner(t)
	workdir := t.TempDir()

	chain := action.Append(
		action.NewScript(action.ScriptRequest{Script: "exit 3", Language: action.LanguageBash, Context: action.ContextToolInstall}),
		action.NewCodingAgent(action.CodingAgentRequest{Profile: "cat", Prompt: "never reached"}),
	)
	process := newProcess(chain)

	err := r.RunProcess(context.Background(), process, workdir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script failed")

	// The agent step after the failing script must not have run.
	_, statErr := os.Stat(filepath.Join(workdir, ".cat-sessions"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunProcessUnknownProfile(t *testing.T) {
	r, _ := newTestRunner(t)

	process := newProcess(action.NewCodingAgent(action.CodingAgentRequest{Profile: "ghost", Prompt: "hi"}))
	err := r.RunProcess(context.Background(), process, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

// A second agent step in the same chain must not reuse the finished store
// of the first; the primary store keeps only the first step's output.
func TestRunProcessSecondAgentStepGetsFreshStore(t *testing.T) {
	r, stores := newTestRunner(t)
	workdir := t.TempDir()

	second := action.NewCodingAgent(action.CodingAgentRequest{Profile: "cat", Prompt: "second step"})
	chain := action.Append(
		action.NewCodingAgent(action.CodingAgentRequest{Profile: "cat", Prompt: "first step"}),
		second,
	)
	process := newProcess(chain)

	require.NoError(t, r.RunProcess(context.Background(), process, workdir))

	store := stores.GetOrCreate(process.ID)
	assert.Equal(t, "first step", assistantContent(store.Entries()))
}

func TestRunProcessUnsupportedScriptLanguage(t *testing.T) {
	r, _ := newTestRunner(t)

	process := newProcess(action.NewScript(action.ScriptRequest{Script: "print('hi')", Language: "python", Context: action.ContextSetup}))
	err := r.RunProcess(context.Background(), process, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported script language")
}
