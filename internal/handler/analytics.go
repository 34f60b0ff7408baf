package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/eventlog"
	"github.com/iliyamo/railway-reservation/internal/middleware"
)

// AnalyticsHandler exposes the MongoDB-backed traffic analytics.  The
// analytics store is best effort end to end: when it is not configured
// or unreachable these endpoints answer with empty results instead of
// an error.
type AnalyticsHandler struct {
	Rec *eventlog.Recorder
}

func NewAnalyticsHandler(rec *eventlog.Recorder) *AnalyticsHandler {
	return &AnalyticsHandler{Rec: rec}
}

// TopRoutes returns the most searched routes.
func (h *AnalyticsHandler) TopRoutes(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	routes := h.Rec.TopRoutes(ctx, limit)
	c.Set(middleware.ResultsCountKey, len(routes))
	return c.JSON(http.StatusOK, echo.Map{"routes": routes})
}

// Logs returns filtered API request logs for admins.
func (h *AnalyticsHandler) Logs(c echo.Context) error {
	var f eventlog.LogFilter
	f.Endpoint = strings.TrimSpace(c.QueryParam("endpoint"))
	f.Method = strings.ToUpper(strings.TrimSpace(c.QueryParam("method")))
	f.Status, _ = strconv.Atoi(c.QueryParam("status"))
	f.MinLatencyMS, _ = strconv.ParseInt(c.QueryParam("min_latency_ms"), 10, 64)
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
		}
		f.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC3339"})
		}
		f.To = t
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	entries, total := h.Rec.Logs(ctx, f)
	c.Set(middleware.ResultsCountKey, len(entries))
	return c.JSON(http.StatusOK, echo.Map{
		"total": total,
		"logs":  entries,
	})
}

// Stats returns the traffic report for a trailing window (default 24h).
func (h *AnalyticsHandler) Stats(c echo.Context) error {
	hours, _ := strconv.Atoi(c.QueryParam("window_hours"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	return c.JSON(http.StatusOK, h.Rec.Stats(ctx, hours))
}
