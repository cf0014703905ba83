package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"insurance-portal/internal/adapter/middleware"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/usecase/auth"
)

// Router mounts every portal route on an echo instance.
type Router struct {
	Health    *Handler
	Auth      *AuthHandler
	Public    *PublicHandler
	Dashboard *DashboardHandler
	Customer  *CustomerHandler
	Admin     *AdminHandler

	Sessions middleware.SessionResolver
	// Redis enables idempotent mutations; nil leaves them unguarded.
	Redis    *redis.Client
	IdempTTL time.Duration
}

func (r Router) Mount(e *echo.Echo) {
	e.GET("/health", r.Health.Health)

	// public
	e.POST("/auth/login", r.Auth.Login)
	e.POST("/auth/register", r.Auth.Register)
	e.GET("/route", r.Auth.Route, middleware.LoadSession(r.Sessions))
	e.GET("/policies/public", r.Public.Templates)
	e.GET("/policies/public/:id", r.Public.Template)
	e.GET("/policies/public/number/:number", r.Public.TemplateByNumber)

	signed := e.Group("", middleware.RequireSession(r.Sessions))
	idem := r.idempotent()
	signed.POST("/auth/logout", r.Auth.Logout)
	signed.GET("/me", r.Auth.Me)

	cu := signed.Group("/dashboard/customer", middleware.RequireRole(session.RoleCustomer, auth.DashboardRouteFor))
	cu.GET("", r.Dashboard.View)
	cu.POST("/refresh", r.Dashboard.Refresh)
	cu.GET("/templates", r.Customer.Templates)
	cu.GET("/templates/:id/eligibility", r.Customer.Eligibility)
	cu.POST("/enrollments", r.Customer.Enroll, idem...)
	cu.GET("/enrollments", r.Customer.Enrollments)
	cu.GET("/enrollments/approved", r.Customer.ApprovedEnrollments)
	cu.POST("/claims", r.Customer.SubmitClaim, idem...)
	cu.GET("/claims", r.Customer.Claims)
	cu.GET("/claims/:id", r.Customer.Claim)
	cu.POST("/tickets", r.Customer.CreateTicket, idem...)
	cu.GET("/tickets", r.Customer.Tickets)
	cu.GET("/tickets/:id", r.Customer.Ticket)
	cu.GET("/profile", r.Customer.Profile)

	ad := signed.Group("/dashboard/admin", middleware.RequireRole(session.RoleAdmin, auth.DashboardRouteFor))
	ad.GET("", r.Dashboard.View)
	ad.POST("/refresh", r.Dashboard.Refresh)
	ad.GET("/policies", r.Admin.Policies)
	ad.POST("/policies", r.Admin.CreatePolicy, idem...)
	ad.GET("/policies/:id", r.Admin.Policy)
	ad.GET("/policies/number/:number", r.Admin.PolicyByNumber)
	ad.PUT("/policies/:id", r.Admin.UpdatePolicy, idem...)
	ad.DELETE("/policies/:id", r.Admin.DeletePolicy, idem...)
	ad.GET("/enrollments", r.Admin.Enrollments)
	ad.POST("/enrollments/:id/approve", r.Admin.ApproveEnrollment, idem...)
	ad.POST("/enrollments/:id/decline", r.Admin.DeclineEnrollment, idem...)
	ad.GET("/claims", r.Admin.Claims)
	ad.GET("/claims/:id", r.Admin.Claim)
	ad.PUT("/claims/:id/status", r.Admin.UpdateClaimStatus, idem...)
	ad.GET("/tickets", r.Admin.Tickets)
	ad.GET("/tickets/:id", r.Admin.Ticket)
	ad.POST("/tickets/:id/resolve", r.Admin.ResolveTicket, idem...)
	ad.GET("/users", r.Admin.Users)
	ad.GET("/users/:id", r.Admin.User)
}

// idempotent guards the routes that create or change remote records.
func (r Router) idempotent() []echo.MiddlewareFunc {
	if r.Redis == nil {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.Idempotency(r.Redis, r.IdempTTL)}
}
