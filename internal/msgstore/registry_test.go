package msgstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegistryGetOrCreateReturnsSameStore(t *testing.T) {
	registry := NewRegistry(testLogger())
	id := uuid.New()

	first := registry.GetOrCreate(id)
	second := registry.GetOrCreate(id)
	assert.Same(t, first, second)

	got, ok := registry.Get(id)
	assert.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryRemoveClosesStore(t *testing.T) {
	registry := NewRegistry(testLogger())
	id := uuid.New()

	store := registry.GetOrCreate(id)
	registry.Remove(id)

	_, ok := registry.Get(id)
	assert.False(t, ok)

	// A closed store ends subscriptions immediately.
	assert.Empty(t, collect(store.Watch(context.Background())))
}
