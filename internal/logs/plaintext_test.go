package logs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the processor's quiescence decisions deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestProcessor(t *testing.T, gap time.Duration) (*PlainTextProcessor, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	proc := NewPlainTextProcessor(func(content string) NormalizedEntry {
		return NormalizedEntry{Type: EntryTypeAssistantMessage, Content: content}
	}, NewEntryIndexProvider(), gap)
	proc.now = func() time.Time { return clock.now }
	return proc, clock
}

func TestProcessorCoalescesWithinWindow(t *testing.T) {
	proc, clock := newTestProcessor(t, 2*time.Second)

	require.Empty(t, proc.Process("Analyzing code"))
	clock.advance(100 * time.Millisecond)
	require.Empty(t, proc.Process("..."))

	entries := proc.Flush()
	require.Len(t, entries, 1)
	assert.Equal(t, "Analyzing code...", entries[0].Content)
	assert.Equal(t, EntryTypeAssistantMessage, entries[0].Type)
}

func TestProcessorSplitsOnQuiescenceGap(t *testing.T) {
	proc, clock := newTestProcessor(t, 2*time.Second)

	require.Empty(t, proc.Process("Analyzing code"))
	clock.advance(100 * time.Millisecond)
	require.Empty(t, proc.Process("..."))
	clock.advance(3 * time.Second)

	entries := proc.Process(" done")
	require.Len(t, entries, 1)
	assert.Equal(t, "Analyzing code...", entries[0].Content)

	final := proc.Flush()
	require.Len(t, final, 1)
	assert.Equal(t, " done", final[0].Content)
	assert.Greater(t, final[0].Index, entries[0].Index)
}

func TestProcessorExactlyTwoEntriesAcrossGap(t *testing.T) {
	proc, clock := newTestProcessor(t, 2*time.Second)

	var entries []NormalizedEntry
	entries = append(entries, proc.Process("first")...)
	clock.advance(2*time.Second + time.Millisecond)
	entries = append(entries, proc.Process("second")...)
	entries = append(entries, proc.Flush()...)

	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Content)
	assert.Equal(t, "second", entries[1].Content)
}

// No data loss, no duplication: the concatenation of emitted content
// equals the concatenation of the input chunks.
func TestProcessorPreservesAllContent(t *testing.T) {
	proc, clock := newTestProcessor(t, 2*time.Second)

	chunks := []string{"a", "bc", "def", "\n", "ghi j", "k"}
	var emitted []NormalizedEntry
	for _, chunk := range chunks {
		emitted = append(emitted, proc.Process(chunk)...)
		clock.advance(500 * time.Millisecond)
	}
	emitted = append(emitted, proc.Flush()...)

	var got strings.Builder
	for _, entry := range emitted {
		got.WriteString(entry.Content)
	}
	assert.Equal(t, strings.Join(chunks, ""), got.String())
}

func TestProcessorIgnoresEmptyFragments(t *testing.T) {
	proc, _ := newTestProcessor(t, 2*time.Second)

	require.Empty(t, proc.Process(""))
	require.Empty(t, proc.Flush())
}

func TestProcessorStripsANSIEscapes(t *testing.T) {
	proc, _ := newTestProcessor(t, 2*time.Second)

	proc.Process("\x1b[31mBuilding\x1b[0m done")
	entries := proc.Flush()
	require.Len(t, entries, 1)
	assert.Equal(t, "Building done", entries[0].Content)
}

func TestProcessorDropsEntriesThatAreOnlyEscapes(t *testing.T) {
	proc, _ := newTestProcessor(t, 2*time.Second)

	proc.Process("\x1b[2J\x1b[H")
	assert.Empty(t, proc.Flush())
}

func TestProcessorDefaultsTimeGap(t *testing.T) {
	proc := NewPlainTextProcessor(func(content string) NormalizedEntry {
		return NormalizedEntry{Content: content}
	}, NewEntryIndexProvider(), 0)
	assert.Equal(t, DefaultTimeGap, proc.TimeGap())
}
