package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"insurance-portal/internal/adapter/gateway"
	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/usecase/form"
)

// statusFor maps usecase and gateway errors to HTTP codes.
func statusFor(err error) int {
	var ae *gateway.APIError
	switch {
	case form.Problems(err) != nil:
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrRoleMismatch):
		return http.StatusForbidden
	case errors.Is(err, enrollment.ErrDecided),
		errors.Is(err, ticket.ErrResolved),
		errors.Is(err, claim.ErrFinal):
		return http.StatusConflict
	case errors.Is(err, claim.ErrInvalidTransition),
		errors.Is(err, claim.ErrNotApprovedEnrollment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &ae):
		if ae.Transport() {
			return http.StatusBadGateway
		}
		return ae.Status
	}
	return http.StatusInternalServerError
}

// fail writes err as an ErrorResponse.
func fail(c echo.Context, err error) error {
	code := statusFor(err)
	body := ErrorResponse{Error: err.Error()}
	if p := form.Problems(err); p != nil {
		body = ErrorResponse{Error: "validation failed", Problems: p}
	}
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "status", code, "err", err)
		if code == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	return c.JSON(code, body)
}
