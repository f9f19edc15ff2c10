package action

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitford/stagehand/internal/config"
)

func scriptAction(name string) *ExecutorAction {
	return NewScript(ScriptRequest{Script: name, Language: LanguageBash, Context: ContextSetup})
}

func TestAppendPutsHeadFirst(t *testing.T) {
	old := scriptAction("old")
	fresh := scriptAction("new")

	chain := Append(fresh, old)
	steps := chain.Chain()
	require.Len(t, steps, 2)
	assert.Equal(t, "new", steps[0].Script.Script)
	assert.Equal(t, "old", steps[1].Script.Script)
}

func TestAppendDoesNotMutateArguments(t *testing.T) {
	old := scriptAction("old")
	fresh := scriptAction("new")

	Append(fresh, old)

	assert.Nil(t, fresh.Next, "head must not be mutated")
	assert.Nil(t, old.Next, "tail must not be mutated")
}

func TestAppendToExistingChain(t *testing.T) {
	tail := scriptAction("c")
	mid := Append(scriptAction("b"), tail)
	chain := Append(scriptAction("a"), mid)

	var order []string
	for _, step := range chain.Chain() {
		order = append(order, step.Script.Script)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Same(t, tail, chain.Terminal())
}

func testProfile() config.Profile {
	return config.Profile{
		Name:    "kiro",
		Command: "kiro-cli chat",
		Install: "curl -fsSL https://example.test/install | bash",
	}
}

func TestComposeSetupStandalone(t *testing.T) {
	act, err := ComposeSetup(testProfile(), nil)
	require.NoError(t, err)

	assert.Equal(t, TypeScript, act.Type)
	assert.Equal(t, ContextToolInstall, act.Script.Context)
	assert.Equal(t, 1, act.Len())
	assert.True(t, strings.Contains(act.Script.Script, "command -v kiro-cli"),
		"install script must check for an existing installation")
}

// Re-running setup chains a new install action ahead of the prior chain;
// the very first standalone action stays terminal and intermediate actions
// keep their order.
func TestComposeSetupTwicePreservesHistory(t *testing.T) {
	profile := testProfile()

	first, err := ComposeSetup(profile, nil)
	require.NoError(t, err)

	second, err := ComposeSetup(profile, first)
	require.NoError(t, err)
	require.Equal(t, 2, second.Len())
	assert.Same(t, first, second.Terminal())

	third, err := ComposeSetup(profile, second)
	require.NoError(t, err)
	require.Equal(t, 3, third.Len())
	assert.Same(t, first, third.Terminal())

	// Prior chains are never mutated by later composition.
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 2, second.Len())
}

func TestCodingAgentDescribe(t *testing.T) {
	act := NewCodingAgent(CodingAgentRequest{Profile: "kiro", Prompt: "fix the flaky test in pkg/store"})
	assert.Contains(t, act.Describe(), "kiro")
}
