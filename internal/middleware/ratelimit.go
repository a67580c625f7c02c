package middleware

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// otpWindowScript counts a hit and arms the window TTL in a single round
// trip, so a key can never be left counting without an expiry. The PTTL
// check re-arms keys that somehow lost theirs instead of 429-ing forever.
// Returns {count, remaining window in ms}.
var otpWindowScript = redis.NewScript(`
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
`)

// OtpRateLimit caps how often OTP endpoints may be hit per (store, client)
// pair, using a fixed window counter in redis. This is the anti-enumeration
// backstop for code sending and verification. When redis is unavailable the
// limiter degrades open rather than blocking legitimate customers.
func OtpRateLimit(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	if rdb == nil || limit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return otpRateLimitWith(rdb, limit, window)
}

func otpRateLimitWith(rdb redis.Scripter, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("otp_rl:%s:%s:%s", c.Params("slug"), c.IP(), c.Path())

		res, err := otpWindowScript.Run(c.Context(), rdb, []string{key}, window.Milliseconds()).Slice()
		if err != nil || len(res) != 2 {
			log.Printf("[RATELIMIT] redis error for %s: %v", key, err)
			return c.Next()
		}
		count, _ := res[0].(int64)
		ttlMs, _ := res[1].(int64)

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			if ttlMs <= 0 {
				ttlMs = window.Milliseconds()
			}
			c.Set("Retry-After", strconv.FormatInt(ttlMs/1000, 10))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"code":    "too_many_requests",
				"message": "عدد المحاولات تجاوز الحد المسموح، يرجى المحاولة لاحقًا",
			})
		}

		return c.Next()
	}
}
