package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/atelier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWindowCountsAndResets(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWindow()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := m.Hit(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := m.Hit(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Minute, res.RetryAfter)

	other, err := m.Hit(ctx, "other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	now = now.Add(time.Minute)
	res, err = m.Hit(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}

func TestMemoryWindowRejectsBadArgs(t *testing.T) {
	m := NewMemoryWindow()
	_, err := m.Hit(context.Background(), "", 1, time.Second)
	assert.Error(t, err)
	_, err = m.Hit(context.Background(), "k", 0, time.Second)
	assert.Error(t, err)
	_, err = m.Hit(context.Background(), "k", 1, 0)
	assert.Error(t, err)
}

type brokenBackend struct{ calls int }

func (b *brokenBackend) Hit(context.Context, string, int, time.Duration) (Result, error) {
	b.calls++
	return Result{}, errors.New("connection refused")
}

func TestRegistrationLimiterFallsBackToMemory(t *testing.T) {
	cfg := config.DefaultProvisioningConfig()
	cfg.RateLimit = config.RateLimitConfig{Window: time.Minute, Max: 2}
	broken := &brokenBackend{}
	l := NewRegistrationLimiter(broken, config.NewStaticProvisioningConfig(cfg), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 3, broken.calls)

	res, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRegistrationLimiterDefaultsToMemory(t *testing.T) {
	l := NewRegistrationLimiter(nil, nil, nil)
	res, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 100, res.Limit)
	assert.Equal(t, 99, res.Remaining)
}

func TestNewRedisWindowNilClient(t *testing.T) {
	assert.Nil(t, NewRedisWindow(nil))
	var w *RedisWindow
	_, err := w.Hit(context.Background(), "k", 1, time.Second)
	assert.Error(t, err)
}
