package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udhago/udhago-backend/pkg/config"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:       true,
		WindowSeconds: 60,
		DefaultLimit:  120,
		DefaultBurst:  20,
		RedisPrefix:   "ratelimit",
	}
}

func TestAllowDisabled(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	cfg := testConfig()
	cfg.Enabled = false

	limiter := NewLimiter(client, cfg)

	result, err := limiter.Allow(context.Background(), "GET:/rides", "203.0.113.7")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAllowGranted(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	cfg := testConfig()
	limiter := NewLimiter(client, cfg)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	refillRate := float64(cfg.DefaultLimit) / float64(cfg.Window().Milliseconds())
	capacity := float64(cfg.DefaultLimit + cfg.DefaultBurst)

	redisMock.ExpectEvalSha(
		limiter.script.Hash(),
		[]string{"ratelimit:GET:/rides:203.0.113.7"},
		now.UnixMilli(), formatFloat(refillRate), formatFloat(capacity), cfg.Window().Milliseconds()*2,
	).SetVal([]interface{}{int64(1), int64(139), int64(0)})

	result, err := limiter.Allow(context.Background(), "GET:/rides", "203.0.113.7")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 139, result.Remaining)
	assert.Equal(t, cfg.DefaultLimit, result.Limit)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAllowDenied(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	cfg := testConfig()
	limiter := NewLimiter(client, cfg)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	refillRate := float64(cfg.DefaultLimit) / float64(cfg.Window().Milliseconds())
	capacity := float64(cfg.DefaultLimit + cfg.DefaultBurst)

	redisMock.ExpectEvalSha(
		limiter.script.Hash(),
		[]string{"ratelimit:POST:/bookings:user-42"},
		now.UnixMilli(), formatFloat(refillRate), formatFloat(capacity), cfg.Window().Milliseconds()*2,
	).SetVal([]interface{}{int64(0), int64(0), int64(500)})

	result, err := limiter.Allow(context.Background(), "POST:/bookings", "user-42")

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 500*time.Millisecond, result.RetryAfter)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAllowRedisError(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	cfg := testConfig()
	limiter := NewLimiter(client, cfg)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	refillRate := float64(cfg.DefaultLimit) / float64(cfg.Window().Milliseconds())
	capacity := float64(cfg.DefaultLimit + cfg.DefaultBurst)

	redisMock.ExpectEvalSha(
		limiter.script.Hash(),
		[]string{"ratelimit:GET:/rides:203.0.113.7"},
		now.UnixMilli(), formatFloat(refillRate), formatFloat(capacity), cfg.Window().Milliseconds()*2,
	).SetErr(context.DeadlineExceeded)

	_, err := limiter.Allow(context.Background(), "GET:/rides", "203.0.113.7")

	assert.Error(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
