// middleware/auth.go
package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"skill-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

// SessionAuth resolves the request's principal exactly once and stores it in
// c.Locals("user_id") — empty string means anonymous. Handlers must never
// re-derive identity themselves.
//
// The token comes from the session_token cookie, with Authorization: Bearer
// as a fallback for non-browser clients.
func SessionAuth(auth *services.AuthClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("session_token")
		if token == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		userID := ""
		if token != "" {
			ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
			principal, err := auth.ValidateSession(ctx, token)
			cancel()
			if err != nil {
				// Fail closed to anonymous: reads degrade to empty payloads,
				// writes get rejected by RequireUser below.
				log.Printf("⚠️ [AUTH] session validation error: %v | Path: %s", err, c.Path())
			} else if principal != nil {
				userID = principal.UserID
			}
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// RequireUser guards write routes: anonymous callers get the documented
// 401 body instead of an empty-result degrade.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
