package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// fakeRedisError implements redis.Error so Script.Run's NOSCRIPT fallback
// recognizes it (HasErrorPrefix requires the redis.Error interface).
type fakeRedisError string

func (e fakeRedisError) Error() string { return string(e) }
func (fakeRedisError) RedisError()     {}

// fakeWindowRedis mimics the counting script: every Eval is one atomic
// increment that also arms the window TTL on first use.
type fakeWindowRedis struct {
	counts map[string]int64
	ttlMs  map[string]int64
	calls  int
	fail   bool
}

func newFakeWindowRedis() *fakeWindowRedis {
	return &fakeWindowRedis{counts: map[string]int64{}, ttlMs: map[string]int64{}}
}

func (f *fakeWindowRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.calls++
	if f.fail {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	key := keys[0]
	f.counts[key]++
	if _, armed := f.ttlMs[key]; !armed {
		window, _ := args[0].(int64)
		f.ttlMs[key] = window
	}
	return redis.NewCmdResult([]interface{}{f.counts[key], f.ttlMs[key]}, nil)
}

func (f *fakeWindowRedis) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	cmd.SetErr(fakeRedisError("NOSCRIPT not cached"))
	return cmd
}

func (f *fakeWindowRedis) EvalRO(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return f.Eval(ctx, script, keys, args...)
}

func (f *fakeWindowRedis) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return f.EvalSha(ctx, sha1, keys, args...)
}

func (f *fakeWindowRedis) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (f *fakeWindowRedis) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func newLimiterApp(rdb redis.Scripter, limit int) *fiber.App {
	app := fiber.New()
	app.Post("/api/storefront/:slug/otp/send",
		otpRateLimitWith(rdb, limit, 10*time.Minute),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestOtpRateLimitBlocksAfterLimit(t *testing.T) {
	fake := newFakeWindowRedis()
	app := newLimiterApp(fake, 3)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/storefront/demo/otp/send", nil))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/api/storefront/demo/otp/send", nil))
	if err != nil {
		t.Fatalf("request over limit failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("429 response is missing Retry-After")
	}
}

func TestOtpRateLimitCountsAndExpiresAtomically(t *testing.T) {
	fake := newFakeWindowRedis()
	app := newLimiterApp(fake, 5)

	for i := 0; i < 4; i++ {
		if _, err := app.Test(httptest.NewRequest("POST", "/api/storefront/demo/otp/send", nil)); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}

	// One redis round trip per request, never a separate expire call that
	// could be lost and leave the counter immortal.
	if fake.calls != 4 {
		t.Fatalf("redis calls = %d, want 4", fake.calls)
	}
	if len(fake.ttlMs) != 1 {
		t.Fatalf("expected exactly one keyed window, got %d", len(fake.ttlMs))
	}
	for key, ttl := range fake.ttlMs {
		if ttl != (10 * time.Minute).Milliseconds() {
			t.Fatalf("window for %s armed with %dms, want %dms", key, ttl, (10 * time.Minute).Milliseconds())
		}
	}
}

func TestOtpRateLimitDegradesOpenOnRedisErrors(t *testing.T) {
	fake := newFakeWindowRedis()
	fake.fail = true
	app := newLimiterApp(fake, 1)

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/storefront/demo/otp/send", nil))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 when redis is down", i, resp.StatusCode)
		}
	}
}

func TestOtpRateLimitSeparatesStores(t *testing.T) {
	fake := newFakeWindowRedis()
	app := newLimiterApp(fake, 1)

	if _, err := app.Test(httptest.NewRequest("POST", "/api/storefront/alpha/otp/send", nil)); err != nil {
		t.Fatalf("alpha request failed: %v", err)
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/api/storefront/beta/otp/send", nil))
	if err != nil {
		t.Fatalf("beta request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("beta first request hit alpha's window: status %d", resp.StatusCode)
	}
}
