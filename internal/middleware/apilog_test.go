package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/trains/search", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestLoggedStatus(t *testing.T) {
	t.Run("written response", func(t *testing.T) {
		c := newTestContext(t)
		if err := c.String(http.StatusCreated, "done"); err != nil {
			t.Fatalf("write response: %v", err)
		}
		if got := loggedStatus(c, nil); got != http.StatusCreated {
			t.Fatalf("loggedStatus = %d, want %d", got, http.StatusCreated)
		}
	})

	t.Run("uncommitted http error", func(t *testing.T) {
		// The JWT middleware path: the handler chain returns an
		// *echo.HTTPError before anything is written.
		c := newTestContext(t)
		err := echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		if got := loggedStatus(c, err); got != http.StatusUnauthorized {
			t.Fatalf("loggedStatus = %d, want %d", got, http.StatusUnauthorized)
		}
	})

	t.Run("uncommitted plain error", func(t *testing.T) {
		c := newTestContext(t)
		if got := loggedStatus(c, errors.New("boom")); got != http.StatusInternalServerError {
			t.Fatalf("loggedStatus = %d, want %d", got, http.StatusInternalServerError)
		}
	})

	t.Run("committed response wins over error", func(t *testing.T) {
		c := newTestContext(t)
		if err := c.String(http.StatusBadRequest, "rejected"); err != nil {
			t.Fatalf("write response: %v", err)
		}
		if got := loggedStatus(c, errors.New("late failure")); got != http.StatusBadRequest {
			t.Fatalf("loggedStatus = %d, want %d", got, http.StatusBadRequest)
		}
	})
}
