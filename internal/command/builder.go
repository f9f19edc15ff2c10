// Package command assembles and resolves the command lines used to invoke
// external coding-agent CLIs.
package command

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrEmptyCommand indicates a builder with no executable to resolve.
	ErrEmptyCommand = errors.New("empty command")
	// ErrCommandNotFound indicates the executable is not on the search path.
	ErrCommandNotFound = errors.New("command not found")
)

// Builder assembles an executable invocation from a base command and an
// ordered parameter list. The base may carry leading arguments of its own
// (e.g. "kiro-cli chat"); parameters are appended after it in the order
// they were added, without deduplication.
//
// Builder values are immutable: every method returns a derived copy, so a
// builder can be shared and specialized without aliasing surprises.
type Builder struct {
	base   string
	params []string
}

// NewBuilder creates a builder for the given base command.
func NewBuilder(base string, params ...string) Builder {
	return Builder{base: base, params: cloneParams(params)}
}

// ExtendParams returns a copy of the builder with the flags appended.
func (b Builder) ExtendParams(params ...string) Builder {
	next := Builder{base: b.base, params: cloneParams(b.params)}
	next.params = append(next.params, params...)
	return next
}

// WithBase returns a copy of the builder with the base command replaced.
func (b Builder) WithBase(base string) Builder {
	return Builder{base: base, params: cloneParams(b.params)}
}

// BuildInitial yields the command parts for a first invocation.
func (b Builder) BuildInitial() Parts {
	return Parts{base: b.base, args: cloneParams(b.params)}
}

// BuildFollowUp yields the command parts for a continuation invocation:
// the base command, every base parameter, then the extra flags (typically
// a resume flag) appended last.
func (b Builder) BuildFollowUp(extra []string) Parts {
	args := cloneParams(b.params)
	args = append(args, extra...)
	return Parts{base: b.base, args: args}
}

// Parts is an assembled but unresolved command line.
type Parts struct {
	base string
	args []string
}

// String renders the command line for diagnostics.
func (p Parts) String() string {
	if len(p.args) == 0 {
		return p.base
	}
	return p.base + " " + strings.Join(p.args, " ")
}

// IntoResolved locates the executable on the search path and returns its
// path together with the full argument list. Resolution failure is a
// reportable error, never a panic.
func (p Parts) IntoResolved() (string, []string, error) {
	fields := strings.Fields(p.base)
	if len(fields) == 0 {
		return "", nil, ErrEmptyCommand
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q", ErrCommandNotFound, fields[0])
	}

	args := cloneParams(fields[1:])
	args = append(args, p.args...)
	return path, args, nil
}

func cloneParams(params []string) []string {
	if len(params) == 0 {
		return nil
	}
	out := make([]string, len(params))
	copy(out, params)
	return out
}
