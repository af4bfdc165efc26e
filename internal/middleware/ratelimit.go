package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/dinner-reservation/internal/config"
)

// bucketScript refills and drains one caller's token bucket atomically.
// Returns {allowed, tokens left, wait ms until the request would fit}.
var bucketScript = redis.NewScript(`
local bucket = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_s = tonumber(ARGV[5])
local cost = tonumber(ARGV[6])

local state = redis.call('HMGET', bucket, 'tokens', 'refilled_ms')
local tokens = tonumber(state[1])
local refilled = tonumber(state[2])
if tokens == nil or refilled == nil then
  tokens = capacity
  refilled = now_ms
end

local steps = math.floor(math.max(0, now_ms - refilled) / interval_ms)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * refill)
  refilled = refilled + steps * interval_ms
end

local allowed = 0
local wait_ms = 0
if tokens >= cost then
  allowed = 1
  tokens = tokens - cost
else
  local deficit = cost - tokens
  wait_ms = math.ceil(deficit / refill) * interval_ms - (now_ms - refilled)
  if wait_ms < 0 then wait_ms = 0 end
end

redis.call('HMSET', bucket, 'tokens', tokens, 'refilled_ms', refilled)
redis.call('EXPIRE', bucket, ttl_s)
return {allowed, tokens, wait_ms}
`)

// NewTokenBucket rate-limits by caller. Authenticated requests share one
// bucket per user id, anonymous ones share a bucket per client IP.
// Mutating requests cost cfg.WriteCost tokens against the same bucket so
// a scripted booking burst drains it faster than browsing would. Redis
// errors fail open: the catalogue stays reachable without the limiter.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled || rdb == nil {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cfg.Prefix + ":" + callerKey(c)
			cost := requestCost(cfg, c.Request().Method)

			res, err := bucketScript.Run(ctx, rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int(cfg.TTL.Seconds()),
				cost,
			).Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: bucket script failed: %v", err)
				}
				return next(c)
			}

			allowed := asInt64(res[0]) == 1
			remaining := asInt64(res[1])
			waitMs := asInt64(res[2])

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Capacity))
			h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			if !allowed {
				retryAfter := (waitMs + 999) / 1000
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too many requests",
					"retry_after": retryAfter,
				})
			}
			return next(c)
		}
	}
}

// requestCost prices a request in tokens. Reads are cheap; everything
// that can change state pays the configured write cost.
func requestCost(cfg config.RateLimitConfig, method string) int {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return 1
	default:
		return cfg.WriteCost
	}
}

// callerKey identifies the bucket owner: the authenticated user when the
// JWT middleware ran first, otherwise the client IP.
func callerKey(c echo.Context) string {
	if uid, ok := c.Get("user_id").(string); ok && uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		var out int64
		fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}
