package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/handler"
	"github.com/iliyamo/railway-reservation/internal/middleware"
)

// RegisterCustomer registers the authenticated passenger-facing
// endpoints under /v1: schedule search, booking creation and booking
// retrieval, plus the top-routes analytics view.  The optional cache
// middleware wraps only the search route; booking routes are never
// cached.
func RegisterCustomer(e *echo.Echo, t *handler.TrainHandler, b *handler.BookingHandler, an *handler.AnalyticsHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	if cache != nil {
		g.GET("/trains/search", t.Search, cache)
	} else {
		g.GET("/trains/search", t.Search)
	}

	g.POST("/bookings", b.Create)
	g.GET("/bookings/my", b.My)
	g.GET("/bookings/:pnr", b.ByPNR)

	g.GET("/analytics/top-routes", an.TopRoutes)
}
