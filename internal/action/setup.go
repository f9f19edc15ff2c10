package action

import (
	"github.com/mwhitford/stagehand/internal/config"
)

// ComposeSetup builds the setup action for a workspace. With no prior
// action the install script stands alone; otherwise the install script is
// chained ahead of the prior action unchanged, so re-running setup never
// discards or reorders previously scheduled work. The new action always
// executes first, the inherited chain after.
func ComposeSetup(profile config.Profile, latestPrior *ExecutorAction) (*ExecutorAction, error) {
	setup, err := setupAction(profile)
	if err != nil {
		return nil, err
	}
	if latestPrior == nil {
		return setup, nil
	}
	return Append(setup, latestPrior), nil
}
