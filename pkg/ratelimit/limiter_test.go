package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestTokenBucketBurst(t *testing.T) {
	tb := NewTokenBucket(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "token %d should be available", i+1)
	}
	assert.False(t, tb.Allow(), "bucket should be empty")
	assert.Equal(t, 3, tb.Burst())
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(10, time.Second)
	for tb.Allow() {
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, tb.Wait(ctx))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestTokenBucketWaitHonoursContext(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, tb.Wait(ctx))
}

func TestPerMinute(t *testing.T) {
	assert.Nil(t, PerMinute(0, 5), "zero rate disables pacing")
	assert.Nil(t, PerMinute(-1, 5))

	l := PerMinute(120, 0)
	require.NotNil(t, l)

	tb, ok := l.(*TokenBucket)
	require.True(t, ok)
	assert.Equal(t, rate.Limit(2), tb.Limit())
	assert.Equal(t, 1, tb.Burst())
}

func TestNewTokenBucketClampsInput(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	assert.Equal(t, 1, tb.Burst())
	assert.True(t, tb.Allow())
}
