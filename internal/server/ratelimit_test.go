package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterEvictsIdleClients(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(1, 1)
	l.now = func() time.Time { return now }

	for _, host := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		require.True(t, l.Allow(host))
	}
	assert.Equal(t, 3, l.Len())

	now = now.Add(idleTTL / 2)
	require.True(t, l.Allow("10.0.0.3"))

	now = now.Add(idleTTL/2 + time.Second)
	require.True(t, l.Allow("10.0.0.4"))
	// Only the bucket touched within idleTTL and the new one survive.
	assert.Equal(t, 2, l.Len())
}

func TestLimiterThrottlesPerClient(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(1, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.Equal(t, 0, l.Len())
}
