//go:build !unix

package action

import (
	"github.com/mwhitford/stagehand/internal/config"
)

// Setup composition relies on a bash install script; on platforms without
// that mechanism it must fail explicitly rather than produce a no-op.
func setupAction(config.Profile) (*ExecutorAction, error) {
	return nil, ErrUnsupportedPlatform
}
