package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/handler"
	"github.com/iliyamo/railway-reservation/internal/middleware"
)

// RegisterAdmin registers admin-scoped endpoints under /v1.  All routes
// require a valid JWT carrying the admin claim.
func RegisterAdmin(e *echo.Echo, t *handler.TrainHandler, an *handler.AnalyticsHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireAdmin(),
	)

	// ---- Trains and schedules ----
	g.POST("/trains", t.Create)
	g.GET("/trains", t.List)

	// ---- Traffic analytics ----
	g.GET("/analytics/logs", an.Logs)
	g.GET("/analytics/stats", an.Stats)
}
