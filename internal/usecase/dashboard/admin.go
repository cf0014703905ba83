package dashboard

import (
	"context"
	"strings"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/domain/user"
	"insurance-portal/internal/usecase/format"
)

type AdminAPI interface {
	ListPolicies(ctx context.Context, sess *session.Session) ([]policy.Template, error)
	ListClaims(ctx context.Context, sess *session.Session) ([]claim.Record, error)
	ListEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error)
	ListTickets(ctx context.Context, sess *session.Session) ([]ticket.Record, error)
	ListUsersDetailed(ctx context.Context, sess *session.Session) ([]user.Account, error)
}

type AdminSummary struct {
	TotalPolicies    int `json:"totalPolicies"`
	ActivePolicies   int `json:"activePolicies"`
	InactivePolicies int `json:"inactivePolicies"`

	TotalClaims    int `json:"totalClaims"`
	OpenClaims     int `json:"openClaims"`
	ApprovedClaims int `json:"approvedClaims"`
	RejectedClaims int `json:"rejectedClaims"`

	TotalEnrollments    int `json:"totalEnrollments"`
	PendingEnrollments  int `json:"pendingEnrollments"`
	ApprovedEnrollments int `json:"approvedEnrollments"`
	DeclinedEnrollments int `json:"declinedEnrollments"`

	TotalTickets    int `json:"totalTickets"`
	OpenTickets     int `json:"openTickets"`
	ResolvedTickets int `json:"resolvedTickets"`

	TotalUsers     int `json:"totalUsers"`
	TotalCustomers int `json:"totalCustomers"`
	TotalAdmins    int `json:"totalAdmins"`

	// there is no payments API; always zero
	TotalPayments int `json:"totalPayments"`
}

type AdminSnapshot struct {
	Summary     AdminSummary            `json:"summary"`
	Policies    []format.PolicyView     `json:"policies"`
	Claims      []format.ClaimView      `json:"claims"`
	Enrollments []format.EnrollmentView `json:"enrollments"`
	Tickets     []format.TicketView     `json:"tickets"`
	Users       []format.UserView       `json:"users"`
	Sources     map[string]SourceStatus `json:"sources"`
	Meta
}

// LoadAdmin fetches the five admin sources concurrently and builds a snapshot.
func LoadAdmin(ctx context.Context, api AdminAPI, sess *session.Session) AdminSnapshot {
	var (
		policies    Source[[]policy.Template]
		claims      Source[[]claim.Record]
		enrollments Source[[]enrollment.Record]
		tickets     Source[[]ticket.Record]
		users       Source[[]user.Account]
	)
	f := newFanout()
	settle(f, ctx, "policies", &policies, func(ctx context.Context) ([]policy.Template, error) { return api.ListPolicies(ctx, sess) })
	settle(f, ctx, "claims", &claims, func(ctx context.Context) ([]claim.Record, error) { return api.ListClaims(ctx, sess) })
	settle(f, ctx, "enrollments", &enrollments, func(ctx context.Context) ([]enrollment.Record, error) { return api.ListEnrollments(ctx, sess) })
	settle(f, ctx, "tickets", &tickets, func(ctx context.Context) ([]ticket.Record, error) { return api.ListTickets(ctx, sess) })
	settle(f, ctx, "users", &users, func(ctx context.Context) ([]user.Account, error) { return api.ListUsersDetailed(ctx, sess) })
	sources, allFailed := f.wait()

	snap := AdminSnapshot{
		Policies:    mapAll(policies.Or(nil), format.Policy),
		Claims:      mapAll(claims.Or(nil), format.Claim),
		Enrollments: mapAll(enrollments.Or(nil), format.Enrollment),
		Tickets:     mapAll(tickets.Or(nil), format.Ticket),
		Users:       mapAll(users.Or(nil), format.User),
		Sources:     sources,
	}
	snap.Summary = summarizeAdmin(snap)
	if allFailed {
		snap.Error = ErrLoadFailed
	}
	return snap
}

func summarizeAdmin(s AdminSnapshot) AdminSummary {
	out := AdminSummary{TotalPolicies: len(s.Policies)}
	for _, p := range s.Policies {
		switch policy.ParseStatus(p.PolicyStatus) {
		case policy.StatusActive:
			out.ActivePolicies++
		case policy.StatusInactive:
			out.InactivePolicies++
		}
	}
	c := countClaims(s.Claims)
	out.TotalClaims, out.OpenClaims, out.ApprovedClaims, out.RejectedClaims = c.total, c.open, c.approved, c.rejected
	e := countEnrollments(s.Enrollments)
	out.TotalEnrollments, out.PendingEnrollments, out.ApprovedEnrollments, out.DeclinedEnrollments = e.total, e.pending, e.approved, e.declined
	t := countTickets(s.Tickets)
	out.TotalTickets, out.OpenTickets, out.ResolvedTickets = t.total, t.open, t.resolved

	out.TotalUsers = len(s.Users)
	for _, u := range s.Users {
		switch strings.ToUpper(u.Role) {
		case string(user.RoleCustomer):
			out.TotalCustomers++
		case string(user.RoleAdmin):
			out.TotalAdmins++
		}
	}
	return out
}
