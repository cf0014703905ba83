package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"insurance-portal/internal/adapter/gateway"
	"insurance-portal/internal/adapter/middleware"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/user"
	"insurance-portal/internal/usecase/auth"
)

// ViewForgetter drops every cached view owned by a session.
type ViewForgetter interface {
	Forget(ctx context.Context, owner string) (int, error)
}

// DashboardStopper stops the dashboard provider of a session.
type DashboardStopper interface {
	Stop(key string)
}

type AuthHandler struct {
	uc         *auth.Usecase
	views      ViewForgetter
	dashboards DashboardStopper
}

func NewAuthHandler(uc *auth.Usecase, views ViewForgetter, dashboards DashboardStopper) *AuthHandler {
	return &AuthHandler{uc: uc, views: views, dashboards: dashboards}
}

type loginResp struct {
	SessionKey string    `json:"sessionKey"`
	Role       string    `json:"role"`
	Username   string    `json:"username"`
	Email      string    `json:"email,omitempty"`
	UserID     string    `json:"userId"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Route      string    `json:"route"`
}

func sessionResp(s *session.Session) loginResp {
	return loginResp{
		SessionKey: s.Key,
		Role:       string(s.Role),
		Username:   s.Username,
		Email:      s.Email,
		UserID:     s.UserID,
		ExpiresAt:  s.ExpiresAt,
		Route:      auth.DashboardRouteFor(s),
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req auth.LoginInput
	if err := bind(c, &req); err != nil {
		return handled(c, err)
	}
	s, err := h.uc.Login(c.Request().Context(), req.UsernameOrEmail, req.Password, session.ParseRole(req.Role))
	if err != nil {
		return handled(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieSession,
		Value:    s.Key,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, sessionResp(s))
}

// Logout forgets the session, its cached views and its dashboard refresh.
func (h *AuthHandler) Logout(c echo.Context) error {
	key := middleware.SessionKey(c)
	ctx := c.Request().Context()
	if err := h.uc.Logout(ctx, key); err != nil {
		return handled(c, err)
	}
	if h.dashboards != nil {
		h.dashboards.Stop(key)
	}
	if h.views != nil && key != "" {
		if n, err := h.views.Forget(ctx, key); err != nil {
			slog.Warn("logout: views not cleared", "err", err)
		} else {
			slog.Debug("logout: views cleared", "count", n)
		}
	}
	c.SetCookie(&http.Cookie{Name: middleware.CookieSession, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Register accepts the multipart form (with an optional idProof file) or a JSON body.
func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		var in user.RegisterInput
		if err := bind(c, &in); err != nil {
			return handled(c, err)
		}
		msg, err := h.uc.RegisterJSON(ctx, in)
		if err != nil {
			return handled(c, err)
		}
		return c.JSON(http.StatusCreated, map[string]string{"message": msg})
	}

	in := user.RegisterInput{
		FirstName: c.FormValue("firstName"),
		LastName:  c.FormValue("lastName"),
		Username:  c.FormValue("username"),
		Password:  c.FormValue("password"),
		Email:     c.FormValue("email"),
		Role:      user.Role(strings.ToUpper(c.FormValue("role"))),
	}
	if v := strings.TrimSpace(c.FormValue("incomePerAnnum")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid incomePerAnnum"})
		}
		in.IncomePerAnnum = &f
	}

	var proof *gateway.IDProof
	if fh, err := c.FormFile("idProof"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable idProof"})
		}
		defer f.Close()
		proof = &gateway.IDProof{Filename: fh.Filename, Content: f}
	}

	msg, err := h.uc.Register(ctx, in, proof)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": msg})
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionResp(sess(c)))
}

// Route answers with the landing page of the caller, "/" when signed out.
func (h *AuthHandler) Route(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"route": auth.DashboardRouteFor(sess(c))})
}
