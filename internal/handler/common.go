package handler

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated user's ID stored by the JWT
// middleware, or 0 when the request is unauthenticated.
func currentUserID(c echo.Context) uint64 {
	if id, ok := c.Get("user_id").(uint64); ok {
		return id
	}
	return 0
}
