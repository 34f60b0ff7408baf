package middleware

// identity.go defines helper functions shared across middleware files.
// userID produces the rate-limit/cache identity of the request: the
// authenticated user's ID when JWTAuth ran earlier in the chain, or
// "guest" on public routes.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID extracts the authenticated user's identifier from the context.
// It returns "guest" when no user is authenticated.
func userID(c echo.Context) string {
	if id, ok := c.Get("user_id").(uint64); ok && id > 0 {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
