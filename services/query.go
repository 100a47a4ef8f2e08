package services

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CurrentUserID reads the principal resolved by the session middleware.
// Empty string means anonymous.
func CurrentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// store scopes a query handle to the request context, so every store call a
// handler fans out inherits the per-request deadline set by
// middleware.RequestTimeout.
func store(c *fiber.Ctx, db *gorm.DB) *gorm.DB {
	return db.WithContext(c.UserContext())
}

// Pagination params are clamped, never rejected: a malformed or negative
// page/limit still produces a valid window.

// ClampPage parses a page query value; anything below 1 or unparseable is 1.
func ClampPage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ClampLimit parses a limit query value into [1, max], defaulting to def.
func ClampLimit(raw string, def, max int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}

// EscapeLike neutralizes LIKE wildcards in user input so "%"/"_" match
// literally. Backslash is Postgres's default LIKE escape character.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// likePattern builds the case-insensitive contains pattern for a user query.
func likePattern(q string) string {
	return "%" + EscapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
}

// PageSlice cuts the window for an already-ranked in-memory list. Pages past
// the end return the empty slice, never an error.
func PageSlice[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
