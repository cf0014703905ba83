package dashboard

import (
	"time"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/usecase/format"
)

// ErrLoadFailed is the snapshot error when every source failed.
const ErrLoadFailed = "Failed to load dashboard data"

// Meta is the refresh bookkeeping shared by both snapshots.
type Meta struct {
	Loading     bool      `json:"loading"`
	Error       string    `json:"error"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func mapAll[In, Out any](in []In, fn func(In) Out) []Out {
	out := make([]Out, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

type claimCounts struct{ total, open, approved, rejected int }

func countClaims(cs []format.ClaimView) claimCounts {
	out := claimCounts{total: len(cs)}
	for _, c := range cs {
		switch {
		case claim.IsOpen(c.Status):
			out.open++
		case c.Status == string(claim.StatusApproved):
			out.approved++
		case c.Status == string(claim.StatusRejected):
			out.rejected++
		}
	}
	return out
}

type enrollmentCounts struct{ total, pending, approved, declined int }

func countEnrollments(es []format.EnrollmentView) enrollmentCounts {
	out := enrollmentCounts{total: len(es)}
	for _, e := range es {
		switch enrollment.Status(e.Status) {
		case enrollment.StatusPending:
			out.pending++
		case enrollment.StatusApproved:
			out.approved++
		case enrollment.StatusDeclined:
			out.declined++
		}
	}
	return out
}

type ticketCounts struct{ total, open, resolved int }

func countTickets(ts []format.TicketView) ticketCounts {
	out := ticketCounts{total: len(ts)}
	for _, t := range ts {
		switch ticket.Status(t.Status) {
		case ticket.StatusOpen, ticket.StatusInProgress:
			out.open++
		case ticket.StatusResolved:
			out.resolved++
		}
	}
	return out
}

func (m *Meta) meta() *Meta { return m }
