package executor

import (
	"io"
	"os/exec"
	"sync"
)

// SpawnedChild wraps a running subprocess and its standard streams. The
// spawner owns it until the streams are handed to the message store. The
// child's whole process group is killed when the owning context is
// cancelled or Close is called before completion, so no orphans survive a
// dropped handle.
type SpawnedChild struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	waitOnce sync.Once
	waitErr  error
}

// Stdout returns the child's standard output stream.
func (c *SpawnedChild) Stdout() io.Reader {
	return c.stdout
}

// Stderr returns the child's standard error stream.
func (c *SpawnedChild) Stderr() io.Reader {
	return c.stderr
}

// PID returns the child's process id, or 0 before start.
func (c *SpawnedChild) PID() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Wait blocks until the subprocess exits and returns its result. Safe to
// call more than once.
func (c *SpawnedChild) Wait() error {
	c.waitOnce.Do(func() {
		c.waitErr = c.cmd.Wait()
	})
	return c.waitErr
}

// Close terminates the subprocess group if it is still running and reaps
// it. Releasing a child without waiting for completion must not leave the
// process behind.
func (c *SpawnedChild) Close() error {
	if c.cmd.Process != nil && c.cmd.ProcessState == nil {
		if err := killProcessGroup(c.cmd); err != nil {
			return err
		}
	}
	c.Wait()
	return nil
}
