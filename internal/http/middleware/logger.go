package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"outlinehub/internal/logger"
)

// Logger is a middleware that emits one structured log record per request.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency_ms
func Logger(log *logger.Logger) fiber.Handler {
	log = log.WithComponent("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Collect fields after handler executed to capture final status
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		log.Info("request",
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
		)

		return err
	}
}
