package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"insurance-portal/internal/adapter/gateway"
	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/testutil/stubapi"
	"insurance-portal/pkg/id"
)

// -------- helpers --------

func i64(v int64) *int64 { return &v }

func setup(t *testing.T) (*gateway.Client, *stubapi.Server) {
	t.Helper()
	api := stubapi.New(t)
	return gateway.New(gateway.Config{BaseURL: api.URL}), api
}

func login(t *testing.T, c *gateway.Client, username, password string) *session.Session {
	t.Helper()
	res, err := c.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return &session.Session{Key: id.NewID32(), Token: res.Token, Role: session.ParseRole(res.Role), Username: res.Username, UserID: string(res.ID)}
}

func seed(api *stubapi.Server) {
	api.AddPolicy(policy.Template{PolicyNumber: "TPL-1", CoverageType: "Comprehensive", PremiumAmount: 9000})
	api.AddPolicy(policy.Template{PolicyNumber: "TPL-2", CoverageType: "Third Party", PolicyStatus: "INACTIVE"})

	cust := int64(2)
	api.AddEnrollment(enrollment.Record{CustomerID: &cust, EnrollmentStatus: "APPROVED"})
	api.AddEnrollment(enrollment.Record{CustomerID: &cust, EnrollmentStatus: "PENDING"})
	api.AddEnrollment(enrollment.Record{CustomerID: i64(77), EnrollmentStatus: "DECLINED"})

	api.AddClaim(claim.Record{CustomerUsername: "customer", ClaimStatus: "OPEN"})
	api.AddClaim(claim.Record{CustomerUsername: "customer", Status: "SUBMITTED"})
	api.AddClaim(claim.Record{CustomerUsername: "customer", ClaimStatus: "APPROVED"})
	api.AddClaim(claim.Record{CustomerUsername: "other", ClaimStatus: "REJECTED"})

	api.AddTicket(ticket.Record{CustomerUsername: "customer", TicketStatus: "IN_PROGRESS"})
	api.AddTicket(ticket.Record{CustomerUsername: "customer", TicketStatus: "RESOLVED"})
	api.AddTicket(ticket.Record{CustomerUsername: "other", TicketStatus: "CLOSED"})
}

type memStore struct {
	mu   sync.Mutex
	puts map[string]int
}

func (m *memStore) Put(_ context.Context, key string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.puts == nil {
		m.puts = map[string]int{}
	}
	m.puts[key]++
	return nil
}

func (m *memStore) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts[key]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

// -------- tests --------

func TestLoadCustomer_AllSources(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "customer", "1234")

	snap := LoadCustomer(context.Background(), c, sess)
	if snap.Error != "" {
		t.Fatalf("unexpected error: %s", snap.Error)
	}
	want := CustomerSummary{
		TotalPolicyTemplates: 1,
		TotalClaims:          3, OpenClaims: 2, ApprovedClaims: 1,
		TotalEnrollments: 2, PendingEnrollments: 1, ApprovedEnrollments: 1, ActivePolicies: 1,
		TotalTickets: 2, OpenTickets: 1, ResolvedTickets: 1,
	}
	if snap.Summary != want {
		t.Fatalf("summary = %+v\nwant      %+v", snap.Summary, want)
	}
	if snap.Profile == nil || snap.Profile.Username != "customer" {
		t.Fatalf("profile = %+v", snap.Profile)
	}
	if len(snap.Templates) != 1 || snap.Templates[0].Name != "Comprehensive Template" {
		t.Fatalf("templates = %+v", snap.Templates)
	}
	for name, st := range snap.Sources {
		if !st.OK {
			t.Fatalf("source %s failed: %s", name, st.Error)
		}
	}
	if len(snap.Sources) != 5 {
		t.Fatalf("sources = %d, want 5", len(snap.Sources))
	}
}

// withInactiveTemplate is a backend whose public listing also returns retired templates.
type withInactiveTemplate struct{ *gateway.Client }

func (w withInactiveTemplate) ListPublicTemplates(ctx context.Context) ([]policy.Template, error) {
	list, err := w.Client.ListPublicTemplates(ctx)
	return append(list, policy.Template{PolicyID: 99, PolicyNumber: "OLD", PolicyStatus: "inactive"}), err
}

func TestLoadCustomer_CountsOnlyListedTemplates(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "customer", "1234")

	snap := LoadCustomer(context.Background(), withInactiveTemplate{c}, sess)
	if snap.Summary.TotalPolicyTemplates != 1 || len(snap.Templates) != 1 {
		t.Fatalf("templates = %d, summary = %d", len(snap.Templates), snap.Summary.TotalPolicyTemplates)
	}
}

func TestLoadCustomer_PartialFailure(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "customer", "1234")
	api.Fail(http.MethodGet, "/api/claims", http.StatusInternalServerError, `{"message":"claims down"}`)

	snap := LoadCustomer(context.Background(), c, sess)
	if snap.Error != "" {
		t.Fatalf("partial failure must not set error, got %q", snap.Error)
	}
	if snap.Claims == nil || len(snap.Claims) != 0 || snap.Summary.TotalClaims != 0 {
		t.Fatalf("claims should be empty, got %+v", snap.Claims)
	}
	if st := snap.Sources["claims"]; st.OK || st.Error != "claims down" {
		t.Fatalf("claims status = %+v", st)
	}
	if snap.Summary.TotalEnrollments != 2 || snap.Summary.TotalTickets != 2 {
		t.Fatalf("other sources affected: %+v", snap.Summary)
	}
}

func TestLoadCustomer_TotalFailure(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "customer", "1234")
	for _, p := range []string{"/api/policies/public", "/api/claims", "/api/enrollments/my-enrollments", "/api/support/tickets", "/api/users/profile"} {
		api.Fail(http.MethodGet, p, http.StatusServiceUnavailable, "")
	}

	snap := LoadCustomer(context.Background(), c, sess)
	if snap.Error != ErrLoadFailed {
		t.Fatalf("error = %q", snap.Error)
	}
	if snap.Summary != (CustomerSummary{}) || snap.Profile != nil {
		t.Fatalf("summary should be zero: %+v", snap.Summary)
	}
}

func TestLoadAdmin(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "admin", "admin")

	snap := LoadAdmin(context.Background(), c, sess)
	want := AdminSummary{
		TotalPolicies: 2, ActivePolicies: 1, InactivePolicies: 1,
		TotalClaims: 4, OpenClaims: 2, ApprovedClaims: 1, RejectedClaims: 1,
		TotalEnrollments: 3, PendingEnrollments: 1, ApprovedEnrollments: 1, DeclinedEnrollments: 1,
		TotalTickets: 3, OpenTickets: 1, ResolvedTickets: 1,
		TotalUsers: 2, TotalCustomers: 1, TotalAdmins: 1,
	}
	if snap.Summary != want {
		t.Fatalf("summary = %+v\nwant      %+v", snap.Summary, want)
	}
}

func TestProvider_RefreshPublishes(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "admin", "admin")
	store := &memStore{}

	p := NewAdmin(c, sess, store, "")
	defer p.Stop()
	before := time.Now()
	snap, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap.LastUpdated.Before(before.UTC().Add(-time.Second)) || snap.Loading {
		t.Fatalf("meta = %+v", snap.Meta)
	}
	if store.count(StoreKey(sess.Key)) != 1 {
		t.Fatalf("snapshot not published")
	}
	if !p.Fresh() || p.Snapshot().Summary.TotalPolicies != 2 {
		t.Fatalf("snapshot not retained")
	}
}

func TestProvider_StopDiscardsLateResult(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "customer", "1234")
	api.Delay(http.MethodGet, "/api/claims", 500*time.Millisecond)
	store := &memStore{}

	p := NewCustomer(c, sess, store, "")
	done := make(chan error, 1)
	go func() {
		_, err := p.Refresh(context.Background())
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrStopped) {
			t.Fatalf("err = %v, want ErrStopped", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("refresh did not return after Stop")
	}
	if p.Fresh() || !p.Snapshot().LastUpdated.IsZero() {
		t.Fatalf("late result was stored")
	}
	if store.count(StoreKey(sess.Key)) != 0 {
		t.Fatalf("late result was published")
	}
	if _, err := p.Refresh(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("refresh after stop: %v", err)
	}
}

func TestProvider_StartRefreshesImmediately(t *testing.T) {
	c, api := setup(t)
	seed(api)
	sess := login(t, c, "customer", "1234")

	p := NewCustomer(c, sess, nil, "@every 1h")
	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, p.Fresh)

	// cancelling the parent stops the provider
	cancel()
	waitFor(t, func() bool {
		_, err := p.Refresh(context.Background())
		return errors.Is(err, ErrStopped)
	})
}

func TestProvider_BadSchedule(t *testing.T) {
	c, _ := setup(t)
	p := NewCustomer(c, &session.Session{Key: "k", Role: session.RoleCustomer}, nil, "every now and then")
	defer p.Stop()
	if err := p.Start(context.Background()); err == nil {
		t.Fatalf("expected schedule parse error")
	}
}

func TestRegistry(t *testing.T) {
	c, api := setup(t)
	seed(api)
	cust := login(t, c, "customer", "1234")
	admin := login(t, c, "admin", "admin")

	reg := NewRegistry(context.Background(), Factory(c, nil, "@every 1h"))
	defer reg.StopAll()

	p1, err := reg.Ensure(cust)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	p2, _ := reg.Ensure(cust)
	if p1 != p2 {
		t.Fatalf("Ensure should reuse the provider")
	}
	if _, ok := p1.View().(CustomerSnapshot); !ok {
		t.Fatalf("customer session got %T", p1.View())
	}
	pa, err := reg.Ensure(admin)
	if err != nil {
		t.Fatalf("Ensure admin: %v", err)
	}
	if _, ok := pa.View().(AdminSnapshot); !ok {
		t.Fatalf("admin session got %T", pa.View())
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d", reg.Len())
	}

	reg.Stop(cust.Key)
	if _, ok := reg.Get(cust.Key); ok {
		t.Fatalf("provider still registered after Stop")
	}
	if _, err := p1.RefreshView(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("stopped provider refreshed: %v", err)
	}

	if _, err := reg.Ensure(&session.Session{Key: "x", Role: "auditor"}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

type idleRunner struct {
	mu      sync.Mutex
	stopped bool
}

func (r *idleRunner) Start(context.Context) error { return nil }
func (r *idleRunner) View() any                   { return nil }
func (r *idleRunner) Fresh() bool                 { return false }
func (r *idleRunner) RefreshView(context.Context) (any, error) {
	return nil, nil
}

func (r *idleRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}

func (r *idleRunner) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func idleFactory(runners map[string]*idleRunner) func(*session.Session) (Runner, error) {
	var mu sync.Mutex
	return func(sess *session.Session) (Runner, error) {
		mu.Lock()
		defer mu.Unlock()
		r := &idleRunner{}
		runners[sess.Key] = r
		return r, nil
	}
}

func TestRegistry_StopsProviderAtSessionExpiry(t *testing.T) {
	runners := map[string]*idleRunner{}
	reg := NewRegistry(context.Background(), idleFactory(runners))
	defer reg.StopAll()

	short := &session.Session{Key: "short", Role: session.RoleCustomer, ExpiresAt: time.Now().Add(50 * time.Millisecond)}
	long := &session.Session{Key: "long", Role: session.RoleCustomer, ExpiresAt: time.Now().Add(time.Hour)}
	for _, s := range []*session.Session{short, long} {
		if _, err := reg.Ensure(s); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
	}

	waitFor(t, func() bool { return reg.Len() == 1 })
	if _, ok := reg.Get("long"); !ok {
		t.Fatalf("live session lost its provider")
	}
	if !runners["short"].isStopped() || runners["long"].isStopped() {
		t.Fatalf("wrong provider stopped")
	}
}

func TestRegistry_PruneAfterSweep(t *testing.T) {
	runners := map[string]*idleRunner{}
	reg := NewRegistry(context.Background(), idleFactory(runners))
	defer reg.StopAll()
	for _, k := range []string{"swept", "alive", "flaky"} {
		_, _ = reg.Ensure(&session.Session{Key: k, Role: session.RoleAdmin})
	}

	n := reg.Prune(context.Background(), func(_ context.Context, key string) (*session.Session, error) {
		switch key {
		case "swept":
			return nil, session.ErrNoSession
		case "flaky":
			return nil, errors.New("database is locked")
		}
		return &session.Session{Key: key}, nil
	})
	if n != 1 || reg.Len() != 2 {
		t.Fatalf("pruned %d, left %d", n, reg.Len())
	}
	if !runners["swept"].isStopped() || runners["alive"].isStopped() || runners["flaky"].isStopped() {
		t.Fatalf("wrong providers stopped")
	}
}

func TestSourceStatus(t *testing.T) {
	ok := Source[int]{Data: 1, OK: true}
	bad := Source[int]{Err: errors.New("nope")}
	if ok.Or(9) != 1 || bad.Or(9) != 9 {
		t.Fatalf("Or mismatch")
	}
	if !ok.Status().OK || bad.Status().Error != "nope" {
		t.Fatalf("status mismatch")
	}
}
