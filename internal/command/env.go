package command

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// Env is the execution environment applied to a child process before
// spawn: the parent's environment merged with explicit variables, plus a
// set of named profiles that overrides can select from.
type Env struct {
	Vars     map[string]string
	Profiles map[string]map[string]string
}

// NewEnv creates an environment with no extra variables.
func NewEnv() Env {
	return Env{Vars: map[string]string{}, Profiles: map[string]map[string]string{}}
}

// WithProfile returns a copy of the environment with the named profile's
// variables merged in. An unknown or empty profile name is a no-op; the
// overrides decide whether a profile applies, not the environment.
func (e Env) WithProfile(name string) Env {
	merged := e.clone()
	if name == "" {
		return merged
	}
	profile, ok := e.Profiles[name]
	if !ok {
		return merged
	}
	for k, v := range profile {
		merged.Vars[k] = v
	}
	return merged
}

// Environ renders the merged environment: the parent process environment
// first, then the explicit variables in sorted order so later entries win.
func (e Env) Environ() []string {
	env := os.Environ()
	keys := make([]string, 0, len(e.Vars))
	for k := range e.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, e.Vars[k]))
	}
	return env
}

// Apply sets the merged environment on the command.
func (e Env) Apply(cmd *exec.Cmd) {
	cmd.Env = e.Environ()
}

func (e Env) clone() Env {
	out := Env{
		Vars:     make(map[string]string, len(e.Vars)),
		Profiles: e.Profiles,
	}
	for k, v := range e.Vars {
		out.Vars[k] = v
	}
	return out
}
