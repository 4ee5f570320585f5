package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/dining-concierge/pkg/config"
)

// Browsers calling the chat relay send X-User-ID
var (
	defaultCORSMethods = []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}
	defaultCORSHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", userIDHeader}
)

const defaultCORSMaxAge = 86400

// NewCORS answers cross-origin requests for the web chat client. When
// cors.enabled is false no CORS headers are sent at all.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCORSMaxAge
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:     joinOr(cfg.AllowedOrigins, []string{"*"}),
		AllowMethods:     joinOr(cfg.AllowedMethods, defaultCORSMethods),
		AllowHeaders:     joinOr(cfg.AllowedHeaders, defaultCORSHeaders),
		ExposeHeaders:    joinOr(cfg.ExposeHeaders, []string{"Content-Length"}),
		AllowCredentials: cfg.Credentials,
		MaxAge:           maxAge,
	})
}

func joinOr(values, fallback []string) string {
	if len(values) == 0 {
		values = fallback
	}
	return strings.Join(values, ",")
}
