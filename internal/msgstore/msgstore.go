// Package msgstore provides an append-only, multi-subscriber buffer for a
// subprocess's output. Raw stdout/stderr chunks are copied in as they
// arrive, normalized entries are pushed back by the log pipeline, and any
// number of readers can join at any time and replay the full history.
package msgstore

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/mwhitford/stagehand/internal/logs"
)

// MessageKind discriminates the history records held by a Store.
type MessageKind string

const (
	KindStdout    MessageKind = "stdout"
	KindStderr    MessageKind = "stderr"
	KindPatch     MessageKind = "patch"
	KindSessionID MessageKind = "session_id"
	KindFinished  MessageKind = "finished"
)

// Message is one record in a Store's history. Chunk carries raw text for
// stdout/stderr records and the session id for session_id records; Entry is
// set only for patch records.
type Message struct {
	Kind  MessageKind
	Chunk string
	Entry *logs.NormalizedEntry
}

// Store is the append-only buffer for one task's subprocess output. It is
// safe for concurrent use: the two stream-forwarding goroutines append raw
// chunks while the two normalization goroutines append patches, and readers
// may subscribe at any point and still see the full history.
//
// The store has a two-phase shutdown. MarkFinished records end of the raw
// streams (the subprocess exited); chunk subscribers drain and stop, but
// patches are still accepted so the pipeline can flush its final entries.
// Close ends the remaining subscriptions.
type Store struct {
	logger *slog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	history  []Message
	finished bool
	closed   bool
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	s := &Store{logger: logger}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// PushStdout appends a raw stdout chunk. Ignored after MarkFinished.
func (s *Store) PushStdout(chunk string) {
	s.pushRaw(Message{Kind: KindStdout, Chunk: chunk})
}

// PushStderr appends a raw stderr chunk. Ignored after MarkFinished.
func (s *Store) PushStderr(chunk string) {
	s.pushRaw(Message{Kind: KindStderr, Chunk: chunk})
}

func (s *Store) pushRaw(msg Message) {
	if msg.Chunk == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.closed {
		s.logger.Warn("dropping raw chunk pushed after stream end", "kind", msg.Kind, "bytes", len(msg.Chunk))
		return
	}
	s.history = append(s.history, msg)
	s.cond.Broadcast()
}

// PushPatch appends a normalized entry. Accepted until Close so the
// pipeline can flush buffered content after the streams have finished.
func (s *Store) PushPatch(entry logs.NormalizedEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("dropping patch pushed after close", "index", entry.Index)
		return
	}
	s.history = append(s.history, Message{Kind: KindPatch, Entry: &entry})
	s.cond.Broadcast()
}

// PushSessionID records the session identifier announced for this task.
func (s *Store) PushSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.history = append(s.history, Message{Kind: KindSessionID, Chunk: id})
	s.cond.Broadcast()
}

// SessionID returns the most recently announced session id, if any.
func (s *Store) SessionID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Kind == KindSessionID {
			return s.history[i].Chunk, true
		}
	}
	return "", false
}

// MarkFinished records that both raw streams have ended. Idempotent.
func (s *Store) MarkFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.closed {
		return
	}
	s.finished = true
	s.history = append(s.history, Message{Kind: KindFinished})
	s.cond.Broadcast()
}

// Finished reports whether the raw streams have ended.
func (s *Store) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Close tears the store down. Remaining subscribers drain the history and
// stop; subsequent pushes are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.finished = true
	s.closed = true
	s.cond.Broadcast()
}

// History returns a copy of all recorded messages.
func (s *Store) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Entries returns a copy of all normalized entries recorded so far.
func (s *Store) Entries() []logs.NormalizedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []logs.NormalizedEntry
	for _, msg := range s.history {
		if msg.Kind == KindPatch {
			out = append(out, *msg.Entry)
		}
	}
	return out
}

// LastEntryIndex reports the highest normalized entry index recorded, or -1
// when no entries exist. Satisfies logs.IndexSeeder.
func (s *Store) LastEntryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := -1
	for _, msg := range s.history {
		if msg.Kind == KindPatch && msg.Entry.Index > last {
			last = msg.Entry.Index
		}
	}
	return last
}

// StdoutChunks returns a stream of raw stdout chunks: full history first,
// then live chunks until the streams finish or ctx is cancelled.
func (s *Store) StdoutChunks(ctx context.Context) <-chan string {
	return s.chunkStream(ctx, KindStdout)
}

// StderrChunks is the stderr counterpart of StdoutChunks.
func (s *Store) StderrChunks(ctx context.Context) <-chan string {
	return s.chunkStream(ctx, KindStderr)
}

func (s *Store) chunkStream(ctx context.Context, kind MessageKind) <-chan string {
	out := make(chan string)
	msgs := s.stream(ctx, func(m Message) bool { return m.Kind == kind }, func() bool { return s.finished })
	go func() {
		defer close(out)
		for msg := range msgs {
			select {
			case out <- msg.Chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// EntryStream returns a stream of normalized entries: full history first,
// then live entries until the store closes or ctx is cancelled.
func (s *Store) EntryStream(ctx context.Context) <-chan logs.NormalizedEntry {
	out := make(chan logs.NormalizedEntry)
	msgs := s.stream(ctx, func(m Message) bool { return m.Kind == KindPatch }, func() bool { return s.closed })
	go func() {
		defer close(out)
		for msg := range msgs {
			select {
			case out <- *msg.Entry:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Watch returns every message in history order, live until Close.
func (s *Store) Watch(ctx context.Context) <-chan Message {
	return s.stream(ctx, func(Message) bool { return true }, func() bool { return s.closed })
}

// stream replays matching history then follows live appends. done is
// evaluated under the store lock and marks the end of this subscription
// once the cursor has caught up.
func (s *Store) stream(ctx context.Context, accept func(Message) bool, done func() bool) <-chan Message {
	out := make(chan Message)
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})

	go func() {
		defer close(out)
		defer stop()

		cursor := 0
		for {
			s.mu.Lock()
			for cursor >= len(s.history) && !done() && ctx.Err() == nil {
				s.cond.Wait()
			}
			batch := s.history[cursor:]
			cursor = len(s.history)
			ended := done()
			s.mu.Unlock()

			for _, msg := range batch {
				if !accept(msg) {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
			if ended || ctx.Err() != nil {
				return
			}
		}
	}()
	return out
}

// Forward copies the child's raw streams into the store, blocking until
// both are exhausted, then marks the streams finished. A read error on one
// stream is logged and ends that stream only; the other keeps draining.
func (s *Store) Forward(stdout, stderr io.Reader) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.copyStream(stdout, s.PushStdout, "stdout")
	}()
	go func() {
		defer wg.Done()
		s.copyStream(stderr, s.PushStderr, "stderr")
	}()
	wg.Wait()
	s.MarkFinished()
}

func (s *Store) copyStream(r io.Reader, push func(string), name string) {
	if r == nil {
		return
	}
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			push(string(buf[:n]))
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			s.logger.Warn("error reading subprocess stream", "stream", name, "error", err)
			return
		}
	}
}
