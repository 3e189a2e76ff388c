package ratelimit

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// The first hit of a window sets its expiry; later hits only count.
const fixedWindowScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Backend counts hits per key within fixed windows.
type Backend interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

type RedisWindow struct {
	client *redis.Client
	script *redis.Script
	now    func() time.Time
}

func NewRedisWindow(client *redis.Client) *RedisWindow {
	if client == nil {
		return nil
	}
	return &RedisWindow{
		client: client,
		script: redis.NewScript(fixedWindowScript),
		now:    time.Now,
	}
}

func (w *RedisWindow) Hit(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if w == nil || w.client == nil {
		return Result{}, errors.New("rate limiter not configured")
	}
	if err := checkArgs(key, limit, window); err != nil {
		return Result{}, err
	}

	res, err := w.script.Run(ctx, w.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, err
	}
	if len(res) < 2 {
		return Result{}, errors.New("invalid rate limit script response")
	}

	return buildResult(int(res[0]), limit, time.Duration(res[1])*time.Millisecond, w.now()), nil
}

func buildResult(count, limit int, ttl time.Duration, now time.Time) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	result := Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(ttl),
	}
	if !result.Allowed {
		result.RetryAfter = ttl
	}
	return result
}

func checkArgs(key string, limit int, window time.Duration) error {
	switch {
	case key == "":
		return errors.New("rate limiter key is empty")
	case limit <= 0:
		return errors.New("rate limiter limit must be positive")
	case window <= 0:
		return errors.New("rate limiter window must be positive")
	}
	return nil
}
