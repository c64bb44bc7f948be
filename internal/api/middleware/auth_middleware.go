package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const ScheduleSecretHeader = "x-schedule-secret"

type SecretMiddleware struct {
	secret string
}

func NewSecretMiddleware(secret string) *SecretMiddleware {
	return &SecretMiddleware{secret: secret}
}

// RequireScheduleSecret rejects requests whose x-schedule-secret header does
// not match the configured secret. With no secret configured every request
// passes.
func (m *SecretMiddleware) RequireScheduleSecret() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.secret == "" {
			return c.Next()
		}

		incoming := c.Get(ScheduleSecretHeader)
		if subtle.ConstantTimeCompare([]byte(incoming), []byte(m.secret)) != 1 {
			slog.Info("rejected schedule request with invalid secret", "ip", c.IP())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden - invalid secret",
			})
		}
		return c.Next()
	}
}
