package dashboard

import (
	"context"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/domain/user"
	"insurance-portal/internal/usecase/format"
)

type CustomerAPI interface {
	ListPublicTemplates(ctx context.Context) ([]policy.Template, error)
	ListClaims(ctx context.Context, sess *session.Session) ([]claim.Record, error)
	ListMyEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error)
	ListTickets(ctx context.Context, sess *session.Session) ([]ticket.Record, error)
	GetProfile(ctx context.Context, sess *session.Session) (*user.Account, error)
}

type CustomerSummary struct {
	TotalPolicyTemplates int `json:"totalPolicyTemplates"`

	TotalClaims    int `json:"totalClaims"`
	OpenClaims     int `json:"openClaims"`
	ApprovedClaims int `json:"approvedClaims"`
	RejectedClaims int `json:"rejectedClaims"`

	TotalEnrollments    int `json:"totalEnrollments"`
	PendingEnrollments  int `json:"pendingEnrollments"`
	ApprovedEnrollments int `json:"approvedEnrollments"`
	DeclinedEnrollments int `json:"declinedEnrollments"`
	ActivePolicies      int `json:"activePolicies"`

	TotalTickets    int `json:"totalTickets"`
	OpenTickets     int `json:"openTickets"`
	ResolvedTickets int `json:"resolvedTickets"`
}

type CustomerSnapshot struct {
	Summary     CustomerSummary         `json:"summary"`
	Templates   []format.TemplateCard   `json:"availablePolicies"`
	Claims      []format.ClaimView      `json:"claims"`
	Enrollments []format.EnrollmentView `json:"enrollments"`
	Tickets     []format.TicketView     `json:"tickets"`
	Profile     *format.UserView        `json:"profile"`
	Sources     map[string]SourceStatus `json:"sources"`
	Meta
}

// LoadCustomer fetches the five customer sources concurrently and builds a snapshot.
func LoadCustomer(ctx context.Context, api CustomerAPI, sess *session.Session) CustomerSnapshot {
	var (
		templates   Source[[]policy.Template]
		claims      Source[[]claim.Record]
		enrollments Source[[]enrollment.Record]
		tickets     Source[[]ticket.Record]
		profile     Source[*user.Account]
	)
	f := newFanout()
	settle(f, ctx, "policyTemplates", &templates, api.ListPublicTemplates)
	settle(f, ctx, "claims", &claims, func(ctx context.Context) ([]claim.Record, error) { return api.ListClaims(ctx, sess) })
	settle(f, ctx, "enrollments", &enrollments, func(ctx context.Context) ([]enrollment.Record, error) { return api.ListMyEnrollments(ctx, sess) })
	settle(f, ctx, "tickets", &tickets, func(ctx context.Context) ([]ticket.Record, error) { return api.ListTickets(ctx, sess) })
	settle(f, ctx, "profile", &profile, func(ctx context.Context) (*user.Account, error) { return api.GetProfile(ctx, sess) })
	sources, allFailed := f.wait()

	snap := CustomerSnapshot{
		Templates:   mapAll(listed(templates.Or(nil)), format.Template),
		Claims:      mapAll(claims.Or(nil), format.Claim),
		Enrollments: mapAll(enrollments.Or(nil), format.Enrollment),
		Tickets:     mapAll(tickets.Or(nil), format.Ticket),
		Sources:     sources,
	}
	if p := profile.Or(nil); p != nil {
		v := format.User(*p)
		snap.Profile = &v
	}
	snap.Summary = summarizeCustomer(snap)
	if allFailed {
		snap.Error = ErrLoadFailed
	}
	return snap
}

func summarizeCustomer(s CustomerSnapshot) CustomerSummary {
	out := CustomerSummary{TotalPolicyTemplates: len(s.Templates)}
	c := countClaims(s.Claims)
	out.TotalClaims, out.OpenClaims, out.ApprovedClaims, out.RejectedClaims = c.total, c.open, c.approved, c.rejected
	e := countEnrollments(s.Enrollments)
	out.TotalEnrollments, out.PendingEnrollments, out.ApprovedEnrollments, out.DeclinedEnrollments = e.total, e.pending, e.approved, e.declined
	out.ActivePolicies = e.approved
	t := countTickets(s.Tickets)
	out.TotalTickets, out.OpenTickets, out.ResolvedTickets = t.total, t.open, t.resolved
	return out
}

// listed keeps the templates the policy browser shows, so both count the same.
func listed(list []policy.Template) []policy.Template {
	out := make([]policy.Template, 0, len(list))
	for _, t := range list {
		if policy.Listed(t) {
			out = append(out, t)
		}
	}
	return out
}
