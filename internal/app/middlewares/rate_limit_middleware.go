package middlewares

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/pkg"
)

// Rate defines how many requests a single client may make per window.
type Rate struct {
	Requests int
	Window   time.Duration
}

var (
	// PublicAPILimit covers unauthenticated traffic.
	PublicAPILimit = Rate{Requests: 60, Window: time.Minute}
	// RedemptionLimit is tighter: redemption is a point-of-sale action,
	// not something a device should hammer.
	RedemptionLimit = Rate{Requests: 30, Window: time.Minute}
)

// RateLimitMiddleware limits per-client request rates with a redis
// fixed-window counter (INCR + EXPIRE). Redis being down fails open.
type RateLimitMiddleware struct {
	redis *redis.Client
}

func NewRateLimitMiddleware(redisClient *redis.Client) *RateLimitMiddleware {
	return &RateLimitMiddleware{redis: redisClient}
}

func (m *RateLimitMiddleware) LimitByIP(limit Rate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("promo:ratelimit:ip:%s:%s", c.IP(), c.Route().Path)
		return m.allow(c, key, limit)
	}
}

func (m *RateLimitMiddleware) LimitByMerchant(limit Rate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		merchantID := c.Locals(LocalMerchantID)
		if merchantID == nil {
			return m.allow(c, fmt.Sprintf("promo:ratelimit:ip:%s:%s", c.IP(), c.Route().Path), limit)
		}
		key := fmt.Sprintf("promo:ratelimit:merchant:%v", merchantID)
		return m.allow(c, key, limit)
	}
}

func (m *RateLimitMiddleware) allow(c *fiber.Ctx, key string, limit Rate) error {
	ctx := c.Context()

	count, err := m.redis.Incr(ctx, key).Result()
	if err != nil {
		return c.Next()
	}
	if count == 1 {
		m.redis.Expire(ctx, key, limit.Window)
	}

	remaining := int64(limit.Requests) - count
	if remaining < 0 {
		remaining = 0
	}
	c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit.Requests))
	c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

	if count > int64(limit.Requests) {
		return pkg.ErrorResponse(c, appErrors.NewTooManyRequestsError("Rate limit exceeded"))
	}
	return c.Next()
}
