//go:build unix

package action

import (
	"fmt"

	"github.com/mwhitford/stagehand/internal/config"
)

// installScript renders the idempotent install script for a profile: the
// tool installs only when its executable is absent, so re-running setup
// has no side effects beyond the first successful run.
func installScript(profile config.Profile) string {
	exe := profile.Executable()
	install := profile.Install
	if install == "" {
		install = fmt.Sprintf("echo %q; exit 1", "no install command configured for "+profile.Name)
	}
	return fmt.Sprintf(`#!/bin/bash
set -e
echo "Installing %[1]s..."
if ! command -v %[1]s &> /dev/null; then
    %[2]s
    echo "%[1]s installed successfully"
else
    echo "%[1]s already installed"
fi
`, exe, install)
}

// setupAction builds the standalone install-script action for a profile.
func setupAction(profile config.Profile) (*ExecutorAction, error) {
	return NewScript(ScriptRequest{
		Script:   installScript(profile),
		Language: LanguageBash,
		Context:  ContextToolInstall,
	}), nil
}
