package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"insurance-portal/internal/adapter/middleware"
	"insurance-portal/internal/domain/session"
)

// ---- helpers ----

var errReplied = errors.New("response already written")

// bind decodes and validates the body, writing the 400/422 response itself.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		return errReplied
	}
	if err := c.Validate(req); err != nil {
		_ = c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
		return errReplied
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " path param"})
		return 0, errReplied
	}
	return id, nil
}

// handled turns the sentinel back into a nil handler result.
func handled(c echo.Context, err error) error {
	if errors.Is(err, errReplied) {
		return nil
	}
	return fail(c, err)
}

func sess(c echo.Context) *session.Session { return middleware.CurrentSession(c) }

func wantsReload(c echo.Context) bool {
	v, _ := strconv.ParseBool(c.QueryParam("reload"))
	return v
}
