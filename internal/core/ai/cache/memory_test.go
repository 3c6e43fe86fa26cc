package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rcip-agent/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxSize int, ttl time.Duration) *memoryStore {
	t.Helper()
	m := newMemoryStore(&config.CacheConfig{
		Enabled:         true,
		Backend:         "memory",
		MaxSize:         maxSize,
		TTL:             ttl,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMemoryStoreGetSet(t *testing.T) {
	m := newTestStore(t, 10, time.Minute)
	ctx := context.Background()

	_, ok := m.Get(ctx, "prompt")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "prompt", "response"))
	value, ok := m.Get(ctx, "prompt")
	assert.True(t, ok)
	assert.Equal(t, "response", value)

	// Different prompts do not collide.
	_, ok = m.Get(ctx, "other prompt")
	assert.False(t, ok)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	m := newTestStore(t, 10, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "prompt", "response"))
	_, ok := m.Get(ctx, "prompt")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)

	_, ok = m.Get(ctx, "prompt")
	assert.False(t, ok)
}

func TestMemoryStoreLRUEviction(t *testing.T) {
	m := newTestStore(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("prompt-%d", i), "v"))
	}

	// Touch all but prompt-1 so it has the lowest access count.
	_, ok := m.Get(ctx, "prompt-0")
	require.True(t, ok)
	_, ok = m.Get(ctx, "prompt-2")
	require.True(t, ok)

	require.NoError(t, m.Set(ctx, "prompt-3", "v"))

	_, ok = m.Get(ctx, "prompt-1")
	assert.False(t, ok, "least used entry should be evicted")
	for _, p := range []string{"prompt-0", "prompt-2", "prompt-3"} {
		_, ok := m.Get(ctx, p)
		assert.True(t, ok, "%s should survive eviction", p)
	}
}

func TestPromptKeyIsStable(t *testing.T) {
	assert.Equal(t, promptKey("same"), promptKey("same"))
	assert.NotEqual(t, promptKey("one"), promptKey("two"))
}
