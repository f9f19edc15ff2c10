// Package action models the chained execution steps scheduled for a
// workspace: setup scripts and coding-agent invocations.
package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mwhitford/stagehand/internal/command"
)

// ErrUnsupportedPlatform indicates that setup composition depends on a
// platform-specific mechanism that is unavailable here.
var ErrUnsupportedPlatform = errors.New("setup is not supported on this platform")

// Type discriminates the executor action variants.
type Type string

const (
	TypeScript      Type = "script"
	TypeCodingAgent Type = "coding_agent"
)

// Language identifies the interpreter for a script request.
type Language string

const (
	LanguageBash Language = "bash"
)

// ScriptContext records why a script runs.
type ScriptContext string

const (
	ContextToolInstall ScriptContext = "tool_install"
	ContextSetup       ScriptContext = "setup"
)

// ScriptRequest carries a script to execute in the task workspace.
type ScriptRequest struct {
	Script   string        `json:"script"`
	Language Language      `json:"language"`
	Context  ScriptContext `json:"context"`
}

// CodingAgentRequest carries one coding-agent invocation.
type CodingAgentRequest struct {
	// Profile names the executor profile to invoke.
	Profile string `json:"profile"`
	Prompt  string `json:"prompt"`
	Model   string `json:"model,omitempty"`
	// FollowUp resumes the tool's session instead of starting fresh.
	FollowUp  bool              `json:"follow_up,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Overrides command.Overrides `json:"overrides,omitempty"`
}

// ExecutorAction is one step in a strictly sequential chain. Exactly one
// payload field matches Type; Next, when set, executes after this step.
// Actions are immutable once created: composition copies, never mutates.
type ExecutorAction struct {
	Type        Type                `json:"type"`
	Script      *ScriptRequest      `json:"script,omitempty"`
	CodingAgent *CodingAgentRequest `json:"coding_agent,omitempty"`
	Next        *ExecutorAction     `json:"next,omitempty"`
}

// NewScript creates a standalone script action.
func NewScript(req ScriptRequest) *ExecutorAction {
	return &ExecutorAction{Type: TypeScript, Script: &req}
}

// NewCodingAgent creates a standalone coding-agent action.
func NewCodingAgent(req CodingAgentRequest) *ExecutorAction {
	return &ExecutorAction{Type: TypeCodingAgent, CodingAgent: &req}
}

// Append returns a new chain in which head executes first and then
// continues into tail. Neither argument is mutated, so previously recorded
// chains keep their meaning when reused as the tail of a new one.
func Append(head, tail *ExecutorAction) *ExecutorAction {
	if head == nil {
		return tail
	}
	next := *head
	if next.Next != nil {
		next.Next = Append(next.Next, tail)
	} else {
		next.Next = tail
	}
	return &next
}

// Chain returns the actions of the chain in execution order.
func (a *ExecutorAction) Chain() []*ExecutorAction {
	var out []*ExecutorAction
	for cur := a; cur != nil; cur = cur.Next {
		out = append(out, cur)
	}
	return out
}

// Terminal returns the last action of the chain.
func (a *ExecutorAction) Terminal() *ExecutorAction {
	cur := a
	for cur.Next != nil {
		cur = cur.Next
	}
	return cur
}

// Len returns the number of actions in the chain.
func (a *ExecutorAction) Len() int {
	n := 0
	for cur := a; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// Describe renders a short human-readable summary of one action.
func (a *ExecutorAction) Describe() string {
	switch a.Type {
	case TypeScript:
		return fmt.Sprintf("script (%s)", a.Script.Context)
	case TypeCodingAgent:
		prompt := a.CodingAgent.Prompt
		if len(prompt) > 40 {
			prompt = prompt[:40] + "..."
		}
		return fmt.Sprintf("coding agent %s: %s", a.CodingAgent.Profile, strings.TrimSpace(prompt))
	default:
		return string(a.Type)
	}
}
