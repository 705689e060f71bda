package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig bundles a request ceiling with its time window.
type RateLimitConfig struct {
	Max        int
	Expiration time.Duration
	Message    string
}

var DefaultRateLimit = RateLimitConfig{
	Max:        100,
	Expiration: 15 * time.Minute,
	Message:    "too many requests, try again later",
}

var AuthRateLimit = RateLimitConfig{
	Max:        20,
	Expiration: 30 * time.Minute,
	Message:    "too many login attempts, try again later",
}

// NewRateLimiter builds a per-IP limiter from the given config.
func NewRateLimiter(config RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.Max,
		Expiration: config.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       config.Message,
				"retry_after": int(config.Expiration.Seconds()),
			})
		},
	})
}

// DefaultRateLimiter covers the general API surface.
func DefaultRateLimiter() fiber.Handler {
	return NewRateLimiter(DefaultRateLimit)
}

// AuthRateLimiter covers login and registration.
func AuthRateLimiter() fiber.Handler {
	return NewRateLimiter(AuthRateLimit)
}

// BodySizeLimit rejects request bodies above maxSize bytes.
func BodySizeLimit(maxSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) > maxSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error":    "request body exceeds the allowed size",
				"max_size": maxSize,
			})
		}
		return c.Next()
	}
}

// SecurityHeaders sets the standard hardening headers on every response.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		return c.Next()
	}
}
