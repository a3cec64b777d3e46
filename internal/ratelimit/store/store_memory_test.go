package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewInMemoryStore()
	s.now = func() time.Time { return now }

	for i := range 3 {
		res, err := s.Allow(ctx, "upload:203.0.113.9", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	t.Run("rejects over the limit", func(t *testing.T) {
		res, err := s.Allow(ctx, "upload:203.0.113.9", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, time.Minute, res.RetryAfter)
	})

	t.Run("keys are independent", func(t *testing.T) {
		res, err := s.Allow(ctx, "upload:198.51.100.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		now = now.Add(time.Minute + time.Second)
		res, err := s.Allow(ctx, "upload:203.0.113.9", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2, res.Remaining)
	})
}

func TestInMemoryStoreForgetsIdleClients(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewInMemoryStore()
	s.now = func() time.Time { return now }

	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		_, err := s.Allow(ctx, "upload:"+ip, 5, time.Minute)
		require.NoError(t, err)
	}
	assert.Len(t, s.windows, 3)

	now = now.Add(2 * time.Minute)
	_, err := s.Allow(ctx, "upload:198.51.100.7", 5, time.Minute)
	require.NoError(t, err)

	assert.Len(t, s.windows, 1, "expired windows are removed")
	assert.Contains(t, s.windows, "upload:198.51.100.7")
}
