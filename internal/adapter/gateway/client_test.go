package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/domain/user"
	"insurance-portal/internal/testutil/stubapi"
)

// -------- helpers --------

func newClient(t *testing.T) (*Client, *stubapi.Server) {
	t.Helper()
	api := stubapi.New(t)
	return New(Config{BaseURL: api.URL + "/"}), api
}

func sessionFor(t *testing.T, c *Client, username, password string) *session.Session {
	t.Helper()
	res, err := c.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return &session.Session{Token: res.Token, Role: session.ParseRole(res.Role), Username: res.Username, UserID: string(res.ID)}
}

// -------- tests --------

func TestLogin_Success(t *testing.T) {
	c, _ := newClient(t)
	res, err := c.Login(context.Background(), "c@x.com", "1234")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Token == "" || res.Role != "CUSTOMER" || res.Username != "customer" || res.ID != "2" {
		t.Fatalf("unexpected login response: %+v", res)
	}
}

func TestLogin_BadCredentialsUsesServerMessage(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.Login(context.Background(), "customer", "nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "Invalid username or password" {
		t.Fatalf("message = %q", err.Error())
	}
	if StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", StatusOf(err))
	}
}

func TestAuthorizedCall_SendsBearerAndRequestID(t *testing.T) {
	c, api := newClient(t)
	sess := sessionFor(t, c, "customer", "1234")

	if _, err := c.ListClaims(context.Background(), sess); err != nil {
		t.Fatalf("ListClaims: %v", err)
	}
	h := api.LastHeader(http.MethodGet, "/api/claims")
	if h.Get("Authorization") != "Bearer "+sess.Token {
		t.Fatalf("authorization = %q", h.Get("Authorization"))
	}
	if h.Get(HeaderRequestID) == "" {
		t.Fatalf("missing %s", HeaderRequestID)
	}
}

func TestPublicTemplates_NoAuthorization(t *testing.T) {
	c, api := newClient(t)
	api.AddPolicy(policy.Template{PolicyNumber: "TPL-1", CoverageType: "Comprehensive", CoverageAmount: 500000, PremiumAmount: 12000})
	api.AddPolicy(policy.Template{PolicyNumber: "TPL-2", PolicyStatus: "INACTIVE"})

	got, err := c.ListPublicTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListPublicTemplates: %v", err)
	}
	if len(got) != 1 || got[0].PolicyNumber != "TPL-1" {
		t.Fatalf("templates = %+v", got)
	}
	if h := api.LastHeader(http.MethodGet, "/api/policies/public"); h.Get("Authorization") != "" {
		t.Fatalf("public call carried authorization")
	}
}

func TestErrorBodies(t *testing.T) {
	c, api := newClient(t)
	sess := sessionFor(t, c, "admin", "admin")

	cases := []struct {
		name string
		body string
		want string
	}{
		{"json message", `{"message":"Backend says no"}`, "Backend says no"},
		{"json error", `{"error":"Bad Gateway"}`, "Bad Gateway"},
		{"plain text", "Ticket service down\n", "Ticket service down"},
		{"html page", "<html><body>502</body></html>", "Failed to fetch tickets"},
		{"empty", "", "Failed to fetch tickets"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api.Fail(http.MethodGet, "/api/support/tickets", http.StatusBadGateway, tc.body)
			_, err := c.ListTickets(context.Background(), sess)
			if err == nil {
				t.Fatalf("expected error")
			}
			if err.Error() != tc.want {
				t.Fatalf("message = %q, want %q", err.Error(), tc.want)
			}
		})
	}
}

func TestRegister_MultipartWithProof(t *testing.T) {
	c, api := newClient(t)
	income := 600000.0
	in := user.RegisterInput{FirstName: "Ravi", LastName: "Kumar", Username: "ravi", Password: "Secret@123", Email: "ravi@gmail.com", IncomePerAnnum: &income}

	msg, err := c.Register(context.Background(), in, &IDProof{Filename: "license.pdf", Content: strings.NewReader("%PDF-1.4")})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if msg != "User registered successfully!" {
		t.Fatalf("msg = %q", msg)
	}
	if api.LastUpload != "license.pdf" {
		t.Fatalf("upload = %q", api.LastUpload)
	}
	ct := api.LastHeader(http.MethodPost, "/api/auth/register").Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		t.Fatalf("content-type = %q", ct)
	}

	// new account can log in as a customer
	res, err := c.Login(context.Background(), "ravi", "Secret@123")
	if err != nil || res.Role != "CUSTOMER" {
		t.Fatalf("login after register: %+v, %v", res, err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.RegisterJSON(context.Background(), user.RegisterInput{Username: "customer", Password: "x"})
	if err == nil || err.Error() != "Error: Username is already taken!" {
		t.Fatalf("err = %v", err)
	}
}

func TestRegister_ShowsResponseTextVerbatim(t *testing.T) {
	c, api := newClient(t)
	body := `{"message":"Email is already in use!","field":"email"}`
	api.Fail(http.MethodPost, "/api/auth/register-json", http.StatusConflict, body)

	_, err := c.RegisterJSON(context.Background(), user.RegisterInput{Username: "ravi", Password: "x"})
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusConflict || ae.Message != body {
		t.Fatalf("err = %#v", err)
	}
}

func TestApproveEnrollment_SendsNotes(t *testing.T) {
	c, api := newClient(t)
	admin := sessionFor(t, c, "admin", "admin")
	e := api.AddEnrollment(enrollment.Record{PolicyTemplateID: 1, CoverageType: "Third Party"})

	got, err := c.ApproveEnrollment(context.Background(), admin, e.EnrollmentID, "docs verified")
	if err != nil {
		t.Fatalf("ApproveEnrollment: %v", err)
	}
	if got.Status() != enrollment.StatusApproved || got.AdminNotes != "docs verified" {
		t.Fatalf("record = %+v", got)
	}
	if got.GeneratedPolicyNumber == nil || *got.GeneratedPolicyNumber == "" {
		t.Fatalf("expected generated policy number")
	}

	// second decision is refused by the backend
	_, err = c.DeclineEnrollment(context.Background(), admin, e.EnrollmentID, "")
	if StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", StatusOf(err))
	}
}

func TestClaimLifecycle(t *testing.T) {
	c, api := newClient(t)
	cust := sessionFor(t, c, "customer", "1234")
	admin := sessionFor(t, c, "admin", "admin")
	custID := int64(2)
	gen := "POL-X-1"
	e := api.AddEnrollment(enrollment.Record{CustomerID: &custID, EnrollmentStatus: "APPROVED", GeneratedPolicyNumber: &gen})

	cl, err := c.SubmitClaim(context.Background(), cust, claim.SubmitInput{PolicyEnrollmentID: e.EnrollmentID, ClaimAmount: 2500, ClaimDescription: "rear bumper"})
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	if cl.CurrentStatus() != "OPEN" || cl.GeneratedPolicyNumber != gen {
		t.Fatalf("claim = %+v", cl)
	}

	upd, err := c.UpdateClaimStatus(context.Background(), admin, cl.Identifier(), claim.StatusUpdate{ClaimStatus: claim.StatusApproved, AdminNotes: "ok"})
	if err != nil {
		t.Fatalf("UpdateClaimStatus: %v", err)
	}
	if upd.CurrentStatus() != "APPROVED" {
		t.Fatalf("status = %s", upd.CurrentStatus())
	}

	byStatus, err := c.ListClaimsByStatus(context.Background(), admin, claim.StatusApproved)
	if err != nil || len(byStatus) != 1 {
		t.Fatalf("ListClaimsByStatus = %+v, %v", byStatus, err)
	}
}

func TestResolveTicket(t *testing.T) {
	c, _ := newClient(t)
	cust := sessionFor(t, c, "customer", "1234")
	admin := sessionFor(t, c, "admin", "admin")

	tk, err := c.CreateTicket(context.Background(), cust, ticket.CreateInput{IssueDescription: "cannot download policy"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	open, err := c.ListOpenTickets(context.Background(), admin)
	if err != nil || len(open) != 1 {
		t.Fatalf("ListOpenTickets = %+v, %v", open, err)
	}
	res, err := c.ResolveTicket(context.Background(), admin, tk.Identifier(), "sent by email")
	if err != nil {
		t.Fatalf("ResolveTicket: %v", err)
	}
	if res.CurrentStatus() != "RESOLVED" || res.ResolutionNotes != "sent by email" {
		t.Fatalf("ticket = %+v", res)
	}
}

func TestDeletePolicy_ReturnsText(t *testing.T) {
	c, api := newClient(t)
	admin := sessionFor(t, c, "admin", "admin")
	p := api.AddPolicy(policy.Template{PolicyNumber: "TPL-9"})

	msg, err := c.DeletePolicy(context.Background(), admin, p.PolicyID)
	if err != nil {
		t.Fatalf("DeletePolicy: %v", err)
	}
	if msg != "Policy deleted successfully" {
		t.Fatalf("msg = %q", msg)
	}
	if _, err := c.GetPolicy(context.Background(), admin, p.PolicyID); !IsNotFound(err) {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url})
	_, err := c.ListPublicTemplates(context.Background())
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if !ae.Transport() || ae.Message != "Failed to fetch policy templates" {
		t.Fatalf("apiError = %+v", ae)
	}
}

func TestCancelledContext(t *testing.T) {
	c, api := newClient(t)
	api.Delay(http.MethodGet, "/api/policies/public", 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ListPublicTemplates(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestCanEnroll_FalseOnError(t *testing.T) {
	c, api := newClient(t)
	cust := sessionFor(t, c, "customer", "1234")
	p := api.AddPolicy(policy.Template{PolicyNumber: "TPL-3"})

	if !c.CanEnroll(context.Background(), cust, p.PolicyID) {
		t.Fatalf("expected can-enroll true")
	}
	api.Fail(http.MethodGet, "/api/enrollments/"+itoa(p.PolicyID)+"/can-enroll", http.StatusInternalServerError, "boom")
	if c.CanEnroll(context.Background(), cust, p.PolicyID) {
		t.Fatalf("expected false on error")
	}
}

func TestFlexID(t *testing.T) {
	var v struct {
		A FlexID `json:"a"`
		B FlexID `json:"b"`
		C FlexID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":42,"b":"u-7","c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "42" || v.B != "u-7" || v.C != "" {
		t.Fatalf("got %+v", v)
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
