package middlewares

import (
	"strconv"
	"strings"
	"time"

	"noteshare/cmd/server/handlers/httperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// BuildRateLimiter allows max requests per client IP in each expiration window.
// Every route behind the same limiter shares one budget. max <= 0 disables it.
// Paths starting with any of skipPrefixes are never counted.
func BuildRateLimiter(max int, expiration time.Duration, skipPrefixes ...string) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	retryAfter := strconv.Itoa(int(expiration.Seconds()))

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			path := c.Path()
			for _, p := range skipPrefixes {
				if strings.HasPrefix(path, p) {
					return true
				}
			}
			return false
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return httperr.Fail(httperr.ErrTooManyRequests)
		},
	})
}
