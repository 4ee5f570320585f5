package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/seu-repo/dining-concierge/pkg/config"
)

const userIDHeader = "X-User-ID"

// RateLimit caps requests per caller over a sliding window. Callers are keyed
// by X-User-ID when the chat client sends one, otherwise by IP.
func RateLimit(cfg config.RateLimitingConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:        cfg.MaxRequests,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := c.Get(userIDHeader); id != "" {
				return "user:" + id
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
