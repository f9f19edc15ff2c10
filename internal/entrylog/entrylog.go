// Package entrylog persists normalized entries as an append-only NDJSON
// file, one entry per line, so a task's structured log survives the
// process that produced it.
package entrylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mwhitford/stagehand/internal/logs"
)

// EntryLog writes normalized entries to an NDJSON file.
type EntryLog struct {
	file   *os.File
	writer *bufio.Writer
	logger *slog.Logger
	mu     sync.Mutex
}

// New opens (creating if needed) the entry log at logPath for appending.
func New(logPath string, logger *slog.Logger) (*EntryLog, error) {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &EntryLog{
		file:   file,
		writer: bufio.NewWriter(file),
		logger: logger,
	}, nil
}

// Write appends one entry as a single JSON line and flushes so followers
// see it immediately.
func (l *EntryLog) Write(entry logs.NormalizedEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying file.
func (l *EntryLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writer.Flush(); err != nil {
		l.logger.Warn("failed to flush entry log on close", "error", err)
	}
	return l.file.Close()
}

// Read loads every entry recorded in the log file, in file order. A log
// that does not exist yet yields no entries.
func Read(logPath string) ([]logs.NormalizedEntry, error) {
	file, err := os.Open(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var entries []logs.NormalizedEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry logs.NormalizedEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse log line: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return entries, nil
}
