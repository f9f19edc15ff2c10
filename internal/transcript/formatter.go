// Package transcript renders normalized log entries for console output.
package transcript

import (
	"fmt"
	"strings"

	"github.com/mwhitford/stagehand/internal/logs"
)

// Formatter formats normalized entries for console display.
type Formatter struct{}

// NewFormatter creates a new transcript formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatEntry formats one entry as an aligned single-prefix line. Multi-line
// content is indented under the prefix so channel boundaries stay readable.
func (f *Formatter) FormatEntry(entry logs.NormalizedEntry) string {
	prefix := fmt.Sprintf("[%4d] %-18s ", entry.Index, f.tag(entry.Type))

	content := strings.TrimRight(entry.Content, "\n")
	lines := strings.Split(content, "\n")
	if len(lines) == 1 {
		return prefix + lines[0]
	}

	indent := strings.Repeat(" ", len(prefix))
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(lines[0])
	for _, line := range lines[1:] {
		b.WriteByte('\n')
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

// Summary formats a one-line count of entries by type.
func (f *Formatter) Summary(entries []logs.NormalizedEntry) string {
	counts := make(map[logs.EntryType]int)
	for _, entry := range entries {
		counts[entry.Type]++
	}

	parts := make([]string, 0, 3)
	for _, t := range []logs.EntryType{logs.EntryTypeAssistantMessage, logs.EntryTypeSystemMessage, logs.EntryTypeErrorMessage} {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, f.tag(t)))
		}
	}
	if len(parts) == 0 {
		return "no entries"
	}
	return fmt.Sprintf("%d entries (%s)", len(entries), strings.Join(parts, ", "))
}

func (f *Formatter) tag(t logs.EntryType) string {
	switch t {
	case logs.EntryTypeAssistantMessage:
		return "assistant"
	case logs.EntryTypeSystemMessage:
		return "system"
	case logs.EntryTypeErrorMessage:
		return "error"
	default:
		return string(t)
	}
}
