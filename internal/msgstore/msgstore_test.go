package msgstore

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitford/stagehand/internal/logs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func collect[T any](ch <-chan T) []T {
	var out []T
	for v := range ch {
		out = append(out, v)
	}
	return out
}

func TestLateSubscriberReplaysFullHistory(t *testing.T) {
	store := NewStore(testLogger())

	store.PushStdout("hello ")
	store.PushStdout("world")
	store.PushStderr("warning")
	store.MarkFinished()

	ctx := context.Background()
	stdout := collect(store.StdoutChunks(ctx))
	stderr := collect(store.StderrChunks(ctx))

	assert.Equal(t, []string{"hello ", "world"}, stdout)
	assert.Equal(t, []string{"warning"}, stderr)
}

func TestSubscriberReceivesLiveChunks(t *testing.T) {
	store := NewStore(testLogger())
	ctx := context.Background()

	chunks := store.StdoutChunks(ctx)

	go func() {
		store.PushStdout("a")
		store.PushStdout("b")
		store.MarkFinished()
	}()

	assert.Equal(t, []string{"a", "b"}, collect(chunks))
}

func TestConcurrentWriters(t *testing.T) {
	store := NewStore(testLogger())

	const perWriter = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < perWriter; i++ {
			store.PushStdout("out")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perWriter; i++ {
			store.PushStderr("err")
		}
	}()
	wg.Wait()
	store.MarkFinished()

	ctx := context.Background()
	assert.Len(t, collect(store.StdoutChunks(ctx)), perWriter)
	assert.Len(t, collect(store.StderrChunks(ctx)), perWriter)
}

func TestPatchesAcceptedAfterStreamsFinish(t *testing.T) {
	store := NewStore(testLogger())

	store.PushStdout("raw")
	store.MarkFinished()

	// The pipeline flushes its final entries after the raw streams end.
	store.PushPatch(logs.NormalizedEntry{Index: 0, Type: logs.EntryTypeAssistantMessage, Content: "raw"})
	store.Close()

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "raw", entries[0].Content)
}

func TestRawChunksDroppedAfterFinish(t *testing.T) {
	store := NewStore(testLogger())

	store.MarkFinished()
	store.PushStdout("too late")

	store.Close()
	assert.Empty(t, collect(store.StdoutChunks(context.Background())))
}

func TestEntryStreamEndsOnClose(t *testing.T) {
	store := NewStore(testLogger())
	ctx := context.Background()

	entryCh := store.EntryStream(ctx)

	store.PushPatch(logs.NormalizedEntry{Index: 0, Content: "one"})
	store.PushPatch(logs.NormalizedEntry{Index: 1, Content: "two"})
	store.Close()

	entries := collect(entryCh)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Content)
	assert.Equal(t, "two", entries[1].Content)
}

func TestStreamHonorsContextCancellation(t *testing.T) {
	store := NewStore(testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	chunks := store.StdoutChunks(ctx)
	cancel()

	select {
	case _, ok := <-chunks:
		assert.False(t, ok, "stream should close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after context cancellation")
	}
}

func TestLastEntryIndex(t *testing.T) {
	store := NewStore(testLogger())
	assert.Equal(t, -1, store.LastEntryIndex())

	store.PushPatch(logs.NormalizedEntry{Index: 3})
	store.PushPatch(logs.NormalizedEntry{Index: 7})
	store.PushPatch(logs.NormalizedEntry{Index: 5})
	assert.Equal(t, 7, store.LastEntryIndex())

	// Seeding an index provider from the store continues past the highest
	// recorded index, so a resumed log never reuses one.
	provider := logs.StartFrom(store)
	assert.Equal(t, 8, provider.Next())
}

func TestSessionID(t *testing.T) {
	store := NewStore(testLogger())

	_, ok := store.SessionID()
	assert.False(t, ok)

	store.PushSessionID("first")
	store.PushSessionID("second")

	id, ok := store.SessionID()
	require.True(t, ok)
	assert.Equal(t, "second", id)
}

func TestForwardCopiesStreamsAndFinishes(t *testing.T) {
	store := NewStore(testLogger())

	store.Forward(strings.NewReader("stdout text"), strings.NewReader("stderr text"))

	assert.True(t, store.Finished())
	assert.Equal(t, "stdout text", strings.Join(collect(store.StdoutChunks(context.Background())), ""))
	assert.Equal(t, "stderr text", strings.Join(collect(store.StderrChunks(context.Background())), ""))
}
