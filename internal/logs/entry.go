// Package logs normalizes raw subprocess output into ordered, typed entries.
package logs

import (
	"time"
)

// EntryType classifies a normalized entry by the role of its source channel
type EntryType string

const (
	EntryTypeAssistantMessage EntryType = "assistant_message"
	EntryTypeSystemMessage    EntryType = "system_message"
	EntryTypeErrorMessage     EntryType = "error_message"
)

// NormalizedEntry is a structured log record derived from raw subprocess
// output. Entries are ordered by Index, which is assigned externally by an
// EntryIndexProvider, not by arrival time.
type NormalizedEntry struct {
	Index     int            `json:"index"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Type      EntryType      `json:"type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EntryProducer maps coalesced plain-text content to a normalized entry.
// The producer decides the entry type for its channel (e.g. stdout becomes
// an assistant message, stderr a system message).
type EntryProducer func(content string) NormalizedEntry
