package ticket

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"insurance-portal/internal/adapter/gateway"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/testutil/stubapi"
	"insurance-portal/internal/testutil/viewsmock"
	"insurance-portal/internal/usecase/form"
	"insurance-portal/internal/usecase/format"
)

func newUsecase(t *testing.T) (*Usecase, *stubapi.Server) {
	t.Helper()
	api := stubapi.New(t)
	return NewUsecase(gateway.New(gateway.Config{BaseURL: api.URL}), viewsmock.NewMemory()), api
}

func i64(v int64) *int64 { return &v }

func TestValidateTicket(t *testing.T) {
	cases := []struct {
		name  string
		issue string
		want  string
	}{
		{"ok", "my claim is stuck", ""},
		{"blank", "  \n ", "Issue description is required"},
		{"too long", strings.Repeat("x", 2001), "Issue description cannot exceed 2000 characters"},
		{"at limit", strings.Repeat("x", 2000), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := strings.Join(form.Problems(ValidateTicket(ticket.CreateInput{IssueDescription: tc.issue})), "|")
			if got != tc.want {
				t.Fatalf("problems = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	uc, api := newUsecase(t)
	sess := api.Session("customer")
	ctx := context.Background()

	if _, err := uc.List(ctx, sess, false); err != nil {
		t.Fatalf("List: %v", err)
	}
	it, err := uc.Create(ctx, sess, ticket.CreateInput{IssueDescription: " help ", ClaimID: i64(0), PolicyEnrollmentID: i64(12)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.Status != "OPEN" || it.IssueDescription != "help" || it.CustomerName != "Cara Stone (customer)" {
		t.Fatalf("item = %+v", it)
	}
	if it.ClaimID != nil || it.PolicyEnrollmentID == nil || *it.PolicyEnrollmentID != 12 {
		t.Fatalf("links = claim %v enrollment %v", it.ClaimID, it.PolicyEnrollmentID)
	}
	if !strings.HasPrefix(it.TicketNumber, "TKT-") || it.Priority != format.PriorityNormal {
		t.Fatalf("item = %+v", it)
	}

	list, _ := uc.List(ctx, sess, false)
	if len(list) != 1 || api.Calls(http.MethodGet, "/api/support/tickets") != 1 {
		t.Fatalf("board not patched from cache: %d items", len(list))
	}
}

func TestCreate_InvalidSkipsNetwork(t *testing.T) {
	uc, api := newUsecase(t)
	if _, err := uc.Create(context.Background(), api.Session("customer"), ticket.CreateInput{}); form.Problems(err) == nil {
		t.Fatalf("expected form error, got %v", err)
	}
	if api.TotalCalls() != 0 {
		t.Fatalf("invalid form reached the API")
	}
}

func TestResolve(t *testing.T) {
	uc, api := newUsecase(t)
	open := api.AddTicket(ticket.Record{CustomerUsername: "customer", TicketStatus: "IN_PROGRESS"})
	api.AddTicket(ticket.Record{CustomerUsername: "customer", TicketStatus: "OPEN"})
	sess := api.Session("admin")
	ctx := context.Background()

	if _, err := uc.List(ctx, sess, false); err != nil {
		t.Fatalf("List: %v", err)
	}
	openList, err := uc.Open(ctx, sess, false)
	if err != nil || len(openList) != 2 {
		t.Fatalf("Open: %d %v", len(openList), err)
	}

	if _, err := uc.Resolve(ctx, sess, open.Identifier(), "  "); form.Problems(err) == nil {
		t.Fatalf("blank notes should be a form error")
	}

	it, err := uc.Resolve(ctx, sess, open.Identifier(), "reset the password")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if it.Status != "RESOLVED" || !it.Resolved || it.ResolutionNotes != "reset the password" || it.ResolvedByAdminName != "admin" {
		t.Fatalf("item = %+v", it)
	}

	openList, _ = uc.Open(ctx, sess, false)
	if len(openList) != 1 {
		t.Fatalf("resolved ticket still in open board: %+v", openList)
	}

	calls := api.TotalCalls()
	if _, err := uc.Resolve(ctx, sess, open.Identifier(), "again"); !errors.Is(err, ticket.ErrResolved) {
		t.Fatalf("err = %v, want ErrResolved", err)
	}
	if api.TotalCalls() != calls {
		t.Fatalf("resolved ticket reached the API")
	}
}

func TestResolve_ServerConflict(t *testing.T) {
	api := stubapi.New(t)
	uc := NewUsecase(gateway.New(gateway.Config{BaseURL: api.URL}), nil)
	done := api.AddTicket(ticket.Record{TicketStatus: "RESOLVED"})

	_, err := uc.Resolve(context.Background(), api.Session("admin"), done.Identifier(), "notes")
	var ae *gateway.APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusConflict || ae.Message != "Ticket already resolved" {
		t.Fatalf("err = %v", err)
	}
}

func TestPriorityByAge(t *testing.T) {
	uc, api := newUsecase(t)
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }
	api.AddTicket(ticket.Record{CustomerUsername: "customer", CreatedDate: "2025-03-10T09:00:00"})
	api.AddTicket(ticket.Record{CustomerUsername: "customer", CreatedDate: "2025-03-15T09:00:00"})
	api.AddTicket(ticket.Record{CustomerUsername: "customer", CreatedDate: "2025-03-19T09:00:00"})
	api.AddTicket(ticket.Record{CustomerUsername: "customer", CreatedDate: "2025-01-01T09:00:00", TicketStatus: "CLOSED"})

	list, err := uc.List(context.Background(), api.Session("customer"), true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []format.Priority{format.PriorityHigh, format.PriorityMedium, format.PriorityNormal, format.PriorityNormal}
	for i, it := range list {
		if it.Priority != want[i] {
			t.Fatalf("ticket %d priority = %s, want %s", i, it.Priority, want[i])
		}
	}
	if list[0].PriorityColor != "#dc3545" {
		t.Fatalf("color = %s", list[0].PriorityColor)
	}
}
