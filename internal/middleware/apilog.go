package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/eventlog"
)

// ResultsCountKey is the context key handlers use to report how many
// items a listing endpoint returned, so the analytics log can carry it.
const ResultsCountKey = "results_count"

// APILog returns a middleware that records every request to the
// analytics store.  Recording happens in a goroutine after the response
// is written; a slow or down store never delays a request.  With a
// disabled recorder the middleware is a pass-through.
func APILog(rec *eventlog.Recorder) echo.MiddlewareFunc {
	if !rec.Enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			ev := eventlog.Event{
				Endpoint:  c.Path(),
				Method:    c.Request().Method,
				Status:    loggedStatus(c, err),
				LatencyMS: latency.Milliseconds(),
				Timestamp: start.UTC(),
			}
			if id, ok := c.Get("user_id").(uint64); ok {
				ev.UserID = id
			}
			if n, ok := c.Get(ResultsCountKey).(int); ok {
				ev.ResultsCount = n
			}
			if qp := c.QueryParams(); len(qp) > 0 {
				params := make(map[string]string, len(qp))
				for k := range qp {
					params[k] = qp.Get(k)
				}
				ev.Params = params
			}

			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				rec.Record(ctx, ev)
			}()
			return err
		}
	}
}

// loggedStatus resolves the status the client will see.  An error
// returned up the chain has not been through echo's error handler yet,
// so the response object still holds the pre-error status.
func loggedStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
