package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"insurance-portal/internal/domain/session"
)

const (
	HeaderSessionKey = "X-Session-Key"
	CookieSession    = "portal_session"

	sessionCtxKey = "portal.session"
)

// SessionResolver looks a session up by its key.
type SessionResolver interface {
	CurrentSession(ctx context.Context, key string) (*session.Session, error)
}

// SessionKey reads the key from the header, then the cookie.
func SessionKey(c echo.Context) string {
	if k := strings.TrimSpace(c.Request().Header.Get(HeaderSessionKey)); k != "" {
		return k
	}
	if ck, err := c.Cookie(CookieSession); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

// LoadSession attaches the session, if any, without requiring one.
func LoadSession(r SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key := SessionKey(c); key != "" {
				if s, err := r.CurrentSession(c.Request().Context(), key); err == nil {
					c.Set(sessionCtxKey, s)
				}
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests without a live session with 401.
func RequireSession(r SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := SessionKey(c)
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			}
			s, err := r.CurrentSession(c.Request().Context(), key)
			if errors.Is(err, session.ErrNoSession) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "session expired or unknown"})
			}
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			c.Set(sessionCtxKey, s)
			return next(c)
		}
	}
}

// RequireRole answers 403 with the caller's own dashboard route when the role differs.
func RequireRole(role session.Role, routeFor func(*session.Session) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := CurrentSession(c)
			if s == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			}
			if s.Role != role {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "this area is for " + string(role) + " accounts",
					"route": routeFor(s),
				})
			}
			return next(c)
		}
	}
}

// CurrentSession returns the session attached by LoadSession or RequireSession.
func CurrentSession(c echo.Context) *session.Session {
	s, _ := c.Get(sessionCtxKey).(*session.Session)
	return s
}
