package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvWithProfileMerges(t *testing.T) {
	env := NewEnv()
	env.Vars["COMMON"] = "yes"
	env.Profiles["ci"] = map[string]string{"CI": "1", "COMMON": "overridden"}

	merged := env.WithProfile("ci")
	assert.Equal(t, "1", merged.Vars["CI"])
	assert.Equal(t, "overridden", merged.Vars["COMMON"])

	// The source environment is untouched.
	assert.Equal(t, "yes", env.Vars["COMMON"])
	assert.NotContains(t, env.Vars, "CI")
}

func TestEnvWithUnknownProfileIsNoOp(t *testing.T) {
	env := NewEnv()
	env.Vars["A"] = "1"

	merged := env.WithProfile("nope")
	assert.Equal(t, env.Vars, merged.Vars)
}

func TestEnvironIncludesExplicitVars(t *testing.T) {
	env := NewEnv()
	env.Vars["STAGEHAND_TEST_MARKER"] = "42"

	assert.Contains(t, env.Environ(), "STAGEHAND_TEST_MARKER=42")
}
