package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// bucket describes one token bucket stored under key.
type bucket struct {
	key   string
	rate  float64 // tokens per second
	burst int
	ttl   time.Duration
}

// userBucket limits an authenticated user across every API route.
func userBucket(userID string, ratePerMinute, burst int) bucket {
	return bucket{
		key:   "ratelimit:user:" + userID,
		rate:  float64(ratePerMinute) / 60,
		burst: burst,
		ttl:   2 * time.Minute,
	}
}

// ipBucket limits a client address on signup and login. The address is
// hashed so raw IPs never reach Redis.
func ipBucket(ip string, ratePerSecond, burst int) bucket {
	return bucket{
		key:   "ratelimit:ip:" + hashIP(ip),
		rate:  float64(ratePerSecond),
		burst: burst,
		ttl:   10 * time.Second,
	}
}

// refillInterval is how long the bucket takes to regain one token.
func (b bucket) refillInterval() time.Duration {
	if b.rate <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second) / b.rate)
}

func (b bucket) unlimited(now time.Time) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(b.burst),
		ResetAt:   now.Add(time.Minute),
	}
}

// takeTokenScript refills the bucket for the elapsed time and then tries to
// take one token. Returns {allowed, retry_after_seconds, tokens_left}.
var takeTokenScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

local allowed, wait = 0, 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[4]))
return {allowed, wait, math.floor(tokens)}
`)

// CheckUserRateLimit takes one token from the user's bucket.
// A non-positive rate disables the limit.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	b := userBucket(userID, ratePerMinute, burst)
	if ratePerMinute <= 0 {
		return b.unlimited(time.Now()), nil
	}
	return c.take(ctx, b)
}

// CheckIPRateLimit takes one token from the address's bucket.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	b := ipBucket(ip, ratePerSecond, burst)
	if ratePerSecond <= 0 {
		return b.unlimited(time.Now()), nil
	}
	return c.take(ctx, b)
}

func (c *Cache) take(ctx context.Context, b bucket) (*RateLimitResult, error) {
	now := time.Now()
	ttl := int64(math.Ceil(b.ttl.Seconds()))

	res, err := takeTokenScript.Run(ctx, c.client, []string{b.key},
		b.rate, b.burst, now.Unix(), ttl,
	).Int64Slice()
	if err != nil || len(res) != 3 {
		// Redis trouble must not take the API down: allow.
		return b.unlimited(now), nil
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Remaining:  res[2],
		ResetAt:    now.Add(b.refillInterval()),
		RetryAfter: time.Duration(res[1]) * time.Second,
	}, nil
}

// hashIP returns the first 8 bytes of the address's SHA-256 as hex.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
