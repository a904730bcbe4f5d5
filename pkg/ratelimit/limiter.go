package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/udhago/udhago-backend/pkg/config"
)

// Result captures the outcome of a rate limiting decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	Limit      int
	Window     time.Duration
}

// Limiter implements a Redis-backed token bucket rate limiter.
type Limiter struct {
	client redis.Cmdable
	cfg    config.RateLimitConfig
	script *redis.Script
	now    func() time.Time
}

const tokenBucketScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local refillRate = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call("HMGET", key, "tokens", "timestamp")
local tokens = tonumber(data[1])
local timestamp = tonumber(data[2])

if tokens == nil then
    tokens = capacity
    timestamp = now
else
    if timestamp == nil then
        timestamp = now
    end
    local delta = now - timestamp
    if delta > 0 then
        tokens = math.min(capacity, tokens + (delta * refillRate))
        timestamp = now
    end
end

local allowed = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
end

redis.call("HMSET", key, "tokens", tokens, "timestamp", now)
redis.call("PEXPIRE", key, ttl)

local retryAfter = 0
if allowed == 0 then
    retryAfter = math.ceil((1 - tokens) / refillRate)
end

return {allowed, tokens, retryAfter}
`

// NewLimiter creates a new Limiter instance.
func NewLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		script: redis.NewScript(tokenBucketScript),
		now:    time.Now,
	}
}

// Allow determines whether the request identified by endpointKey+identityKey
// should be allowed under the configured default limit.
func (l *Limiter) Allow(ctx context.Context, endpointKey, identityKey string) (Result, error) {
	limit := l.cfg.DefaultLimit
	window := l.cfg.Window()

	if !l.cfg.Enabled || limit <= 0 {
		return Result{Allowed: true, Remaining: limit, Limit: limit, Window: window}, nil
	}

	key := fmt.Sprintf("%s:%s:%s", l.cfg.RedisPrefix, endpointKey, identityKey)

	now := l.now().UnixMilli()
	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = int64(time.Minute / time.Millisecond)
	}

	refillRate := float64(limit) / float64(windowMillis)
	capacity := float64(limit + l.cfg.DefaultBurst)
	if capacity < 1 {
		capacity = 1
	}
	ttl := windowMillis * 2

	cmd := l.script.Run(ctx, l.client, []string{key}, now, formatFloat(refillRate), formatFloat(capacity), ttl)
	raw, err := cmd.Result()
	if err != nil {
		return Result{}, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Result{}, errors.New("unexpected script response")
	}

	allowed := toInt(values[0])
	remainingTokens := toFloat(values[1])
	retryAfterMillis := toInt(values[2])

	return Result{
		Allowed:    allowed == 1,
		Remaining:  int(math.Max(0, math.Floor(remainingTokens))),
		RetryAfter: time.Duration(retryAfterMillis) * time.Millisecond,
		Limit:      limit,
		Window:     window,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toInt(value interface{}) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case string:
		parsed, _ := strconv.ParseInt(v, 10, 64)
		return parsed
	default:
		return 0
	}
}

func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case int64:
		return float64(v)
	case string:
		parsed, _ := strconv.ParseFloat(v, 64)
		return parsed
	default:
		return 0
	}
}
