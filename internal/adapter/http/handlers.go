package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check is one dependency checked by /health.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct{ checks []Check }

func NewHandler(checks ...Check) *Handler { return &Handler{checks: checks} }

// Health answers 200 when every check passes and 503 otherwise.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, ch := range h.checks {
		if err := ch.Ping(ctx); err != nil {
			deps[ch.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[ch.Name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
		"deps":   deps,
	})
}
