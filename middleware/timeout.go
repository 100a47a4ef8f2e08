// middleware/timeout.go
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestTimeout puts a deadline on the request context. Services derive
// their store handles from c.UserContext(), so one deadline here bounds the
// whole fan-out of a request — auth validation, counts, joins, inserts.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
