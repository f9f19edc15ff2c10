// Package executor spawns, resumes, and supervises external coding-agent
// CLIs as managed subprocesses and wires their output through the log
// normalization pipeline.
package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/mwhitford/stagehand/internal/command"
	"github.com/mwhitford/stagehand/internal/msgstore"
)

var (
	// ErrSpawn indicates OS-level process creation failed.
	ErrSpawn = errors.New("spawn failed")
	// ErrStdin indicates the prompt could not be delivered to the child.
	ErrStdin = errors.New("stdin delivery failed")
)

// Availability is the result of probing for an executor's CLI.
type Availability string

const (
	AvailabilityFound    Availability = "installation_found"
	AvailabilityNotFound Availability = "not_found"
)

// Executor is a pluggable adapter that knows how to invoke one external
// coding-agent tool as a subprocess. Implementations are selected by
// profile name at configuration time.
type Executor interface {
	// Name returns the profile name this executor was built from.
	Name() string

	// Spawn starts an initial invocation in workdir's session directory,
	// delivers the prompt on stdin, and returns the running child.
	Spawn(ctx context.Context, workdir, prompt string, env command.Env) (*SpawnedChild, error)

	// SpawnFollowUp resumes the tool's most recent session. The session id
	// is diagnostic only: the tool picks its own notion of "latest".
	SpawnFollowUp(ctx context.Context, workdir, prompt, sessionID string, env command.Env) (*SpawnedChild, error)

	// NormalizeLogs starts the per-channel normalization tasks for the
	// store and returns a handle to join them.
	NormalizeLogs(ctx context.Context, store *msgstore.Store) *Tasks

	// Availability reports whether the tool's executable is discoverable
	// on the current search path. It never fails.
	Availability() Availability

	// DefaultConfigPath advertises the tool's default configuration file
	// under the user's home directory, or "" when no home is known.
	DefaultConfigPath() string
}

// Tasks joins the background normalization goroutines so their completion
// is observable by the owning component.
type Tasks struct {
	wg sync.WaitGroup
}

// Wait blocks until all tracked tasks have finished.
func (t *Tasks) Wait() {
	t.wg.Wait()
}
