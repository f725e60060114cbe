package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLimiter_PerClientBuckets(t *testing.T) {
	l := newIPLimiter(1, 1)

	first := l.get("192.0.2.1:1234")
	require.True(t, first.Allow())
	assert.False(t, first.Allow(), "burst of one is spent")

	// A different client gets its own bucket.
	assert.True(t, l.get("192.0.2.2:1234").Allow())
	// Same host, different port shares the bucket.
	assert.False(t, l.get("192.0.2.1:9999").Allow())
}

func TestIPLimiter_SweepsIdleEntries(t *testing.T) {
	l := newIPLimiter(1, 1)
	l.get("192.0.2.1:1234")
	require.Len(t, l.limiters, 1)

	stale := time.Now().Add(-2 * limiterIdleTTL)
	l.mu.Lock()
	l.limiters["192.0.2.1"].lastSeen = stale
	l.lastSweep = stale
	l.mu.Unlock()

	l.get("192.0.2.2:1234")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.limiters, "192.0.2.1", "idle entry is evicted")
	assert.Contains(t, l.limiters, "192.0.2.2")
}
