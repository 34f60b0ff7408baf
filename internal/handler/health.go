package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes.  It deliberately touches no backing
// store: a degraded MySQL or Redis must not take the process out of the
// load balancer rotation.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
