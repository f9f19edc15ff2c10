package logs

import (
	"sync/atomic"
)

// IndexSeeder reports the highest entry index already recorded for a log,
// or -1 when no entries exist. The message store implements this so index
// continuity survives process restarts.
type IndexSeeder interface {
	LastEntryIndex() int
}

// EntryIndexProvider hands out strictly increasing entry indices. It is
// shared between the stdout and stderr normalization tasks, so allocation
// must be safe for concurrent use. Gaps are acceptable; duplicates are not.
type EntryIndexProvider struct {
	next atomic.Int64
}

// NewEntryIndexProvider returns a provider starting at index zero.
func NewEntryIndexProvider() *EntryIndexProvider {
	return &EntryIndexProvider{}
}

// StartFrom returns a provider seeded past the highest index the seeder has
// already recorded, so a resumed log never reuses an index.
func StartFrom(seed IndexSeeder) *EntryIndexProvider {
	p := &EntryIndexProvider{}
	p.next.Store(int64(seed.LastEntryIndex()) + 1)
	return p
}

// Next allocates the next index.
func (p *EntryIndexProvider) Next() int {
	return int(p.next.Add(1) - 1)
}

// Current returns the index the next call to Next will allocate.
func (p *EntryIndexProvider) Current() int {
	return int(p.next.Load())
}
