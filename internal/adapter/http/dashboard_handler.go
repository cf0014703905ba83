package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"insurance-portal/internal/usecase/dashboard"
)

type DashboardHandler struct{ reg *dashboard.Registry }

func NewDashboardHandler(reg *dashboard.Registry) *DashboardHandler {
	return &DashboardHandler{reg: reg}
}

// View returns the latest snapshot. The first call of a session waits for one load;
// later calls answer from memory while the schedule keeps it current.
func (h *DashboardHandler) View(c echo.Context) error {
	p, err := h.reg.Ensure(sess(c))
	if err != nil {
		return handled(c, err)
	}
	if p.Fresh() {
		return c.JSON(http.StatusOK, p.View())
	}
	return h.refresh(c, p)
}

// Refresh reloads every source now.
func (h *DashboardHandler) Refresh(c echo.Context) error {
	p, err := h.reg.Ensure(sess(c))
	if err != nil {
		return handled(c, err)
	}
	return h.refresh(c, p)
}

func (h *DashboardHandler) refresh(c echo.Context, p dashboard.Runner) error {
	snap, err := p.RefreshView(c.Request().Context())
	if errors.Is(err, dashboard.ErrStopped) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "dashboard closed"})
	}
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}
