package logs

import (
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// DefaultTimeGap is the quiescence window: a burst of output fragments is
// considered one logical message until the channel stays idle this long.
const DefaultTimeGap = 2 * time.Second

// PlainTextProcessor coalesces raw text fragments from one channel into
// normalized entries using a time-gap heuristic. It holds state across
// calls for the lifetime of that channel and is not safe for concurrent
// use; each channel gets its own processor.
//
// A pending fragment is flushed when the next fragment arrives after more
// than the configured gap, or when Flush is called at end of stream. Two
// fragments arriving within the gap are concatenated in arrival order.
// There is no semantic parsing: a continuously chattering stream may not
// flush until the channel closes.
type PlainTextProcessor struct {
	produce EntryProducer
	index   *EntryIndexProvider
	timeGap time.Duration

	buf    strings.Builder
	lastAt time.Time

	// now is swapped out by tests for deterministic gap control.
	now func() time.Time
}

// NewPlainTextProcessor creates a processor for one channel. A timeGap of
// zero or less selects DefaultTimeGap.
func NewPlainTextProcessor(produce EntryProducer, index *EntryIndexProvider, timeGap time.Duration) *PlainTextProcessor {
	if timeGap <= 0 {
		timeGap = DefaultTimeGap
	}
	return &PlainTextProcessor{
		produce: produce,
		index:   index,
		timeGap: timeGap,
		now:     time.Now,
	}
}

// TimeGap returns the configured quiescence window.
func (p *PlainTextProcessor) TimeGap() time.Duration {
	return p.timeGap
}

// Process feeds one raw fragment to the processor and returns any entries
// completed by its arrival. An empty fragment produces nothing and does not
// reset the quiescence timer.
func (p *PlainTextProcessor) Process(chunk string) []NormalizedEntry {
	if chunk == "" {
		return nil
	}

	var out []NormalizedEntry
	arrived := p.now()
	if p.buf.Len() > 0 && arrived.Sub(p.lastAt) > p.timeGap {
		if entry, ok := p.emit(); ok {
			out = append(out, entry)
		}
	}

	p.lastAt = arrived
	p.buf.WriteString(chunk)
	return out
}

// Flush emits any buffered content as a final entry. Called when the
// channel closes or when the quiescence window elapses with no new data.
func (p *PlainTextProcessor) Flush() []NormalizedEntry {
	if p.buf.Len() == 0 {
		return nil
	}
	entry, ok := p.emit()
	if !ok {
		return nil
	}
	return []NormalizedEntry{entry}
}

func (p *PlainTextProcessor) emit() (NormalizedEntry, bool) {
	content := ansi.Strip(p.buf.String())
	p.buf.Reset()
	if content == "" {
		return NormalizedEntry{}, false
	}
	entry := p.produce(content)
	entry.Index = p.index.Next()
	return entry, true
}
