package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitford/stagehand/internal/logs"
	"github.com/mwhitford/stagehand/internal/msgstore"
)

// NormalizeLogs starts one normalization task per raw channel. The two
// tasks share the entry index provider, so entries interleave by index
// allocation order; each channel's own entries stay in flush order. Tasks
// end when their source stream closes; the returned handle joins them.
func (e *CLIExecutor) NormalizeLogs(ctx context.Context, store *msgstore.Store) *Tasks {
	index := logs.StartFrom(store)

	// Announce a session id for follow-up tracking if none is known yet.
	if _, ok := store.SessionID(); !ok {
		store.PushSessionID(uuid.New().String())
	}

	stdoutProc := logs.NewPlainTextProcessor(func(content string) logs.NormalizedEntry {
		return logs.NormalizedEntry{Type: logs.EntryTypeAssistantMessage, Content: content}
	}, index, e.timeGap)

	stderrProc := logs.NewPlainTextProcessor(func(content string) logs.NormalizedEntry {
		return logs.NormalizedEntry{Type: logs.EntryTypeSystemMessage, Content: content}
	}, index, e.timeGap)

	tasks := &Tasks{}
	tasks.wg.Add(2)
	go func() {
		defer tasks.wg.Done()
		normalizeChannel(ctx, store, store.StdoutChunks(ctx), stdoutProc)
	}()
	go func() {
		defer tasks.wg.Done()
		normalizeChannel(ctx, store, store.StderrChunks(ctx), stderrProc)
	}()
	return tasks
}

// normalizeChannel pumps one channel's chunks through its processor. The
// idle timer flushes pending content once the quiescence window elapses
// with no new data, so a quiet channel does not sit on a buffered entry
// until the next chunk or stream end.
func normalizeChannel(ctx context.Context, store *msgstore.Store, chunks <-chan string, proc *logs.PlainTextProcessor) {
	idle := time.NewTimer(proc.TimeGap())
	defer idle.Stop()

	push := func(entries []logs.NormalizedEntry) {
		for _, entry := range entries {
			store.PushPatch(entry)
		}
	}

	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				push(proc.Flush())
				return
			}
			push(proc.Process(chunk))
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(proc.TimeGap())
		case <-idle.C:
			push(proc.Flush())
			idle.Reset(proc.TimeGap())
		case <-ctx.Done():
			return
		}
	}
}
