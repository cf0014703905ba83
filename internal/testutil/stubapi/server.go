// Package stubapi is an in-memory stand-in for the remote insurance backend. It speaks
// the same routes and payload shapes, issues real HS256 tokens and lets tests force
// any endpoint to fail.
package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/domain/user"
)

var secret = []byte("stub-secret")

type Account struct {
	ID        int64
	Username  string
	Password  string
	Email     string
	Role      user.Role
	FirstName string
	LastName  string
	Income    float64
	IDProof   string
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	nextID      int64
	accounts    []*Account
	policies    []policy.Template
	enrollments []enrollment.Record
	claims      []claim.Record
	tickets     []ticket.Record
	failures    map[string]failure
	delays      map[string]time.Duration
	calls       map[string]int
	headers     map[string]http.Header

	// LastUpload is the filename of the most recent id-proof upload.
	LastUpload string
}

// New starts a stub with one admin (admin/admin) and one customer (customer/1234).
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		nextID:   100,
		failures: map[string]failure{},
		delays:   map[string]time.Duration{},
		calls:    map[string]int{},
		headers:  map[string]http.Header{},
	}
	s.accounts = []*Account{
		{ID: 1, Username: "admin", Password: "admin", Email: "a@x.com", Role: user.RoleAdmin, FirstName: "Ada", LastName: "Min"},
		{ID: 2, Username: "customer", Password: "1234", Email: "c@x.com", Role: user.RoleCustomer, FirstName: "Cara", LastName: "Stone", Income: 540000},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Fail makes method+path answer with status and body until cleared.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Delay holds method+path for d before answering.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[method+" "+path] = d
}

func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// TotalCalls counts every request that reached the stub.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// LastHeader returns the headers of the latest call to method+path.
func (s *Server) LastHeader(method, path string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[method+" "+path]
}

// Token issues a bearer token for username, valid for ttl.
func (s *Server) Token(username string, ttl time.Duration) string {
	s.mu.Lock()
	acc := s.account(username)
	s.mu.Unlock()
	claims := jwt.MapClaims{"sub": username, "iat": time.Now().Unix(), "exp": time.Now().Add(ttl).Unix()}
	if acc != nil {
		claims["role"] = string(acc.Role)
		claims["userId"] = acc.ID
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return tok
}

// Session is what a successful login as username would leave in the session store.
func (s *Server) Session(username string) *session.Session {
	s.mu.Lock()
	acc := s.account(username)
	s.mu.Unlock()
	if acc == nil {
		return nil
	}
	now := time.Now().UTC()
	return &session.Session{
		Key:       fmt.Sprintf("%032x", acc.ID),
		Token:     s.Token(username, time.Hour),
		Role:      session.ParseRole(string(acc.Role)),
		UserID:    strconv.FormatInt(acc.ID, 10),
		Username:  acc.Username,
		Email:     acc.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func (s *Server) AddPolicy(p policy.Template) policy.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.PolicyID == 0 {
		p.PolicyID = s.id()
	}
	if p.PolicyStatus == "" {
		p.PolicyStatus = string(policy.StatusActive)
	}
	s.policies = append(s.policies, p)
	return p
}

func (s *Server) AddEnrollment(e enrollment.Record) enrollment.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.EnrollmentID == 0 {
		e.EnrollmentID = s.id()
	}
	if e.EnrollmentStatus == "" {
		e.EnrollmentStatus = string(enrollment.StatusPending)
	}
	s.enrollments = append(s.enrollments, e)
	return e
}

func (s *Server) AddClaim(c claim.Record) claim.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Identifier() == 0 {
		id := s.id()
		c.ClaimID = &id
	}
	s.claims = append(s.claims, c)
	return c
}

func (s *Server) AddTicket(t ticket.Record) ticket.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Identifier() == 0 {
		id := s.id()
		t.TicketID = &id
	}
	s.tickets = append(s.tickets, t)
	return t
}

func (s *Server) AddAccount(a Account) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.id()
	}
	acc := a
	s.accounts = append(s.accounts, &acc)
	return &acc
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) account(username string) *Account {
	for _, a := range s.accounts {
		if a.Username == username || a.Email == username {
			return a
		}
	}
	return nil
}

func (s *Server) accountByID(id int64) *Account {
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record, s.inject)

	e.POST("/api/auth/login", s.login)
	e.POST("/api/auth/register", s.register)
	e.POST("/api/auth/register-json", s.registerJSON)

	e.GET("/api/policies/public", s.listPublic)
	e.GET("/api/policies/public/:id", s.getPublic)
	e.GET("/api/policies/public/number/:number", s.getPublicByNumber)

	a := e.Group("/api", s.authenticate)
	a.GET("/policies", s.listPolicies)
	a.POST("/policies", s.createPolicy, adminOnly)
	a.GET("/policies/:id", s.getPolicy)
	a.PUT("/policies/:id", s.updatePolicy, adminOnly)
	a.DELETE("/policies/:id", s.deletePolicy, adminOnly)
	a.GET("/policies/number/:number", s.getPolicyByNumber)

	a.POST("/enrollments/:id/enroll", s.enroll)
	a.GET("/enrollments/:id/eligibility", s.eligibility)
	a.GET("/enrollments/:id/can-enroll", s.canEnroll)
	a.GET("/enrollments/my-enrollments", s.myEnrollments)
	a.GET("/enrollments", s.allEnrollments, adminOnly)
	a.GET("/enrollments/pending", s.pendingEnrollments, adminOnly)
	a.PUT("/enrollments/:id/approve", s.decide(enrollment.StatusApproved), adminOnly)
	a.PUT("/enrollments/:id/decline", s.decide(enrollment.StatusDeclined), adminOnly)

	a.POST("/claims", s.submitClaim)
	a.GET("/claims", s.listClaims)
	a.GET("/claims/:id", s.getClaim)
	a.PUT("/claims/:id/status", s.updateClaim, adminOnly)
	a.GET("/claims/status/:status", s.claimsByStatus, adminOnly)

	a.POST("/support/tickets", s.createTicket)
	a.GET("/support/tickets", s.listTickets)
	a.GET("/support/tickets/open", s.openTickets)
	a.GET("/support/tickets/:id", s.getTicket)
	a.PUT("/support/tickets/:id/resolve", s.resolveTicket, adminOnly)

	a.GET("/users/profile", s.profile)
	a.GET("/users/detailed", s.usersDetailed, adminOnly)
	a.GET("/users/customers/detailed", s.customersDetailed, adminOnly)
	a.GET("/users/detailed/:id", s.userDetail, adminOnly)
	return e
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Request().URL.Path
		s.mu.Lock()
		s.calls[key]++
		s.headers[key] = c.Request().Header.Clone()
		d := s.delays[key]
		s.mu.Unlock()
		if d > 0 {
			select {
			case <-time.After(d):
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}
		return next(c)
	}
}

func (s *Server) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		f, ok := s.failures[c.Request().Method+" "+c.Request().URL.Path]
		s.mu.Unlock()
		if !ok {
			return next(c)
		}
		if strings.HasPrefix(strings.TrimSpace(f.body), "{") {
			return c.Blob(f.status, echo.MIMEApplicationJSON, []byte(f.body))
		}
		return c.String(f.status, f.body)
	}
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Full authentication is required"})
		}
		tok, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
		}
		sub, _ := tok.Claims.(jwt.MapClaims)["sub"].(string)
		s.mu.Lock()
		acc := s.account(sub)
		s.mu.Unlock()
		if acc == nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unknown user"})
		}
		c.Set("account", acc)
		return next(c)
	}
}

func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if current(c).Role != user.RoleAdmin {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Access Denied"})
		}
		return next(c)
	}
}

func current(c echo.Context) *Account { return c.Get("account").(*Account) }

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"message": what + " not found"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"message": msg})
}

func ptr[T any](v T) *T { return &v }

// ---- auth ----

func (s *Server) login(c echo.Context) error {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	s.mu.Lock()
	acc := s.account(req.UsernameOrEmail)
	s.mu.Unlock()
	if acc == nil || acc.Password != req.Password {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token":    s.Token(acc.Username, time.Hour),
		"role":     string(acc.Role),
		"id":       acc.ID,
		"username": acc.Username,
		"email":    acc.Email,
	})
}

func (s *Server) register(c echo.Context) error {
	acc := Account{
		Username:  c.FormValue("username"),
		Password:  c.FormValue("password"),
		Email:     c.FormValue("email"),
		Role:      user.Role(c.FormValue("role")),
		FirstName: c.FormValue("firstName"),
		LastName:  c.FormValue("lastName"),
	}
	if v := c.FormValue("incomePerAnnum"); v != "" {
		acc.Income, _ = strconv.ParseFloat(v, 64)
	}
	if fh, err := c.FormFile("idProof"); err == nil {
		acc.IDProof = "uploads/id-proofs/" + fh.Filename
		s.mu.Lock()
		s.LastUpload = fh.Filename
		s.mu.Unlock()
	}
	return s.addRegistered(c, acc)
}

func (s *Server) registerJSON(c echo.Context) error {
	var in user.RegisterInput
	if err := c.Bind(&in); err != nil {
		return c.String(http.StatusBadRequest, "Invalid registration payload")
	}
	acc := Account{Username: in.Username, Password: in.Password, Email: in.Email, Role: in.Role, FirstName: in.FirstName, LastName: in.LastName}
	if in.IncomePerAnnum != nil {
		acc.Income = *in.IncomePerAnnum
	}
	return s.addRegistered(c, acc)
}

func (s *Server) addRegistered(c echo.Context, acc Account) error {
	if acc.Username == "" {
		return c.String(http.StatusBadRequest, "Username is required")
	}
	s.mu.Lock()
	exists := s.account(acc.Username) != nil
	s.mu.Unlock()
	if exists {
		return c.String(http.StatusBadRequest, "Error: Username is already taken!")
	}
	s.AddAccount(acc)
	return c.String(http.StatusOK, "User registered successfully!")
}

// ---- policies ----

func (s *Server) findPolicy(id int64) int {
	for i, p := range s.policies {
		if p.PolicyID == id {
			return i
		}
	}
	return -1
}

func (s *Server) listPublic(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []policy.Template{}
	for _, p := range s.policies {
		if p.PolicyStatus == string(policy.StatusActive) {
			out = append(out, p)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getPublic(c echo.Context) error { return s.getPolicy(c) }

func (s *Server) getPublicByNumber(c echo.Context) error { return s.getPolicyByNumber(c) }

func (s *Server) listPolicies(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, append([]policy.Template{}, s.policies...))
}

func (s *Server) getPolicy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findPolicy(id)
	if i < 0 {
		return notFound(c, "Policy")
	}
	return c.JSON(http.StatusOK, s.policies[i])
}

func (s *Server) getPolicyByNumber(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.policies {
		if p.PolicyNumber == c.Param("number") {
			return c.JSON(http.StatusOK, p)
		}
	}
	return notFound(c, "Policy")
}

func (s *Server) createPolicy(c echo.Context) error {
	var in policy.Input
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	s.mu.Lock()
	for _, p := range s.policies {
		if p.PolicyNumber == in.PolicyNumber {
			s.mu.Unlock()
			return badRequest(c, "Policy number already exists")
		}
	}
	s.mu.Unlock()
	p := s.AddPolicy(templateFrom(0, in))
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) updatePolicy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var in policy.Input
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findPolicy(id)
	if i < 0 {
		return notFound(c, "Policy")
	}
	s.policies[i] = templateFrom(id, in)
	return c.JSON(http.StatusOK, s.policies[i])
}

func (s *Server) deletePolicy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findPolicy(id)
	if i < 0 {
		return c.String(http.StatusNotFound, "Policy not found")
	}
	s.policies = append(s.policies[:i], s.policies[i+1:]...)
	return c.String(http.StatusOK, "Policy deleted successfully")
}

func templateFrom(id int64, in policy.Input) policy.Template {
	status := string(in.PolicyStatus)
	if status == "" {
		status = string(policy.StatusActive)
	}
	return policy.Template{
		PolicyID: id, PolicyNumber: in.PolicyNumber, VehicleType: in.VehicleType, CoverageType: in.CoverageType,
		CoverageAmount: in.CoverageAmount, PremiumAmount: in.PremiumAmount,
		StartDate: in.StartDate, EndDate: in.EndDate, PolicyStatus: status,
	}
}

// ---- enrollments ----

func (s *Server) findEnrollment(id int64) int {
	for i, e := range s.enrollments {
		if e.EnrollmentID == id {
			return i
		}
	}
	return -1
}

func (s *Server) enroll(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var in enrollment.EnrollInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	acc := current(c)
	s.mu.Lock()
	i := s.findPolicy(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound(c, "Policy template")
	}
	tpl := s.policies[i]
	for _, e := range s.enrollments {
		if e.PolicyTemplateID == id && strings.EqualFold(e.VehicleDetails, in.VehicleDetails) && e.EnrollmentStatus != string(enrollment.StatusDeclined) {
			s.mu.Unlock()
			return badRequest(c, "This vehicle is already enrolled in this policy type")
		}
	}
	s.mu.Unlock()
	rec := s.AddEnrollment(enrollment.Record{
		PolicyTemplateID: id, PolicyTemplateNumber: tpl.PolicyNumber,
		CustomerID: ptr(acc.ID), CustomerName: acc.Username, CustomerEmail: acc.Email,
		VehicleDetails: in.VehicleDetails, EnrolledDate: time.Now().UTC().Format("2006-01-02T15:04:05"),
		CoverageType: tpl.CoverageType, CoverageAmount: tpl.CoverageAmount, PremiumAmount: tpl.PremiumAmount,
	})
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) eligibility(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findPolicy(id) < 0 {
		return notFound(c, "Policy template")
	}
	return c.JSON(http.StatusOK, enrollment.Eligibility{Eligible: true, Message: "Eligible to enroll"})
}

func (s *Server) canEnroll(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.findPolicy(id) >= 0)
}

func (s *Server) myEnrollments(c echo.Context) error {
	acc := current(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []enrollment.Record{}
	for _, e := range s.enrollments {
		if e.CustomerID != nil && *e.CustomerID == acc.ID {
			out = append(out, e)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) allEnrollments(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, append([]enrollment.Record{}, s.enrollments...))
}

func (s *Server) pendingEnrollments(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []enrollment.Record{}
	for _, e := range s.enrollments {
		if e.EnrollmentStatus == string(enrollment.StatusPending) {
			out = append(out, e)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) decide(to enrollment.Status) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "invalid id")
		}
		var notes string
		_ = json.NewDecoder(c.Request().Body).Decode(&notes)
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.findEnrollment(id)
		if i < 0 {
			return notFound(c, "Enrollment")
		}
		e := &s.enrollments[i]
		if e.EnrollmentStatus != string(enrollment.StatusPending) {
			return badRequest(c, "Enrollment is not pending")
		}
		now := time.Now().UTC().Format("2006-01-02T15:04:05")
		e.EnrollmentStatus = string(to)
		e.AdminNotes = notes
		if to == enrollment.StatusApproved {
			e.GeneratedPolicyNumber = ptr(fmt.Sprintf("POL-%s-%d", strings.ToUpper(strings.ReplaceAll(e.CoverageType, " ", "")), e.EnrollmentID))
			e.ApprovedDate = now
		} else {
			e.DeclinedDate = now
		}
		return c.JSON(http.StatusOK, *e)
	}
}

// ---- claims ----

func (s *Server) findClaim(id int64) int {
	for i, cl := range s.claims {
		if cl.Identifier() == id {
			return i
		}
	}
	return -1
}

func (s *Server) submitClaim(c echo.Context) error {
	var in claim.SubmitInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	acc := current(c)
	s.mu.Lock()
	i := s.findEnrollment(in.PolicyEnrollmentID)
	if i < 0 {
		s.mu.Unlock()
		return notFound(c, "Enrollment")
	}
	e := s.enrollments[i]
	s.mu.Unlock()
	if e.EnrollmentStatus != string(enrollment.StatusApproved) {
		return badRequest(c, "Claims can only be submitted for approved enrollments")
	}
	if in.ClaimAmount <= 0 {
		return badRequest(c, "Claim amount must be positive")
	}
	rec := s.AddClaim(claim.Record{
		PolicyEnrollmentID: in.PolicyEnrollmentID, GeneratedPolicyNumber: deref(e.GeneratedPolicyNumber),
		CustomerUsername: acc.Username, CustomerEmail: acc.Email,
		ClaimAmount: ptr(in.ClaimAmount), ClaimDescription: in.ClaimDescription,
		ClaimStatus: string(claim.StatusOpen), ClaimDate: time.Now().UTC().Format("2006-01-02T15:04:05"),
	})
	return c.JSON(http.StatusCreated, rec)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *Server) visibleClaims(acc *Account) []claim.Record {
	out := []claim.Record{}
	for _, cl := range s.claims {
		if acc.Role == user.RoleAdmin || cl.CustomerUsername == acc.Username {
			out = append(out, cl)
		}
	}
	return out
}

func (s *Server) listClaims(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.visibleClaims(current(c)))
}

func (s *Server) getClaim(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cl := range s.visibleClaims(current(c)) {
		if cl.Identifier() == id {
			return c.JSON(http.StatusOK, cl)
		}
	}
	return notFound(c, "Claim")
}

func (s *Server) updateClaim(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var in claim.StatusUpdate
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findClaim(id)
	if i < 0 {
		return notFound(c, "Claim")
	}
	cl := &s.claims[i]
	if !claim.Machine.CanTransition(cl.CurrentStatus(), string(in.ClaimStatus)) {
		return badRequest(c, "Invalid status transition")
	}
	cl.ClaimStatus = string(in.ClaimStatus)
	cl.Status = ""
	cl.AdminNotes = in.AdminNotes
	cl.AdminUsername = current(c).Username
	cl.ProcessedDate = time.Now().UTC().Format("2006-01-02T15:04:05")
	return c.JSON(http.StatusOK, *cl)
}

func (s *Server) claimsByStatus(c echo.Context) error {
	want := strings.ToUpper(c.Param("status"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []claim.Record{}
	for _, cl := range s.claims {
		if cl.CurrentStatus() == want {
			out = append(out, cl)
		}
	}
	return c.JSON(http.StatusOK, out)
}

// ---- support ----

func (s *Server) findTicket(id int64) int {
	for i, t := range s.tickets {
		if t.Identifier() == id {
			return i
		}
	}
	return -1
}

func (s *Server) createTicket(c echo.Context) error {
	var in ticket.CreateInput
	if err := c.Bind(&in); err != nil || strings.TrimSpace(in.IssueDescription) == "" {
		return c.String(http.StatusBadRequest, "Bad Request")
	}
	acc := current(c)
	s.mu.Lock()
	id := s.id()
	s.mu.Unlock()
	rec := s.AddTicket(ticket.Record{
		TicketID: ptr(id), TicketNumber: fmt.Sprintf("TKT-%06d", id),
		IssueDescription: in.IssueDescription, TicketStatus: string(ticket.StatusOpen),
		CreatedDate: time.Now().UTC().Format("2006-01-02T15:04:05"),
		FirstName:   acc.FirstName, LastName: acc.LastName, CustomerUsername: acc.Username, CustomerEmail: acc.Email,
		PolicyEnrollmentID: in.PolicyEnrollmentID, ClaimID: in.ClaimID,
	})
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) visibleTickets(acc *Account, openOnly bool) []ticket.Record {
	out := []ticket.Record{}
	for _, t := range s.tickets {
		if acc.Role != user.RoleAdmin && t.CustomerUsername != acc.Username {
			continue
		}
		if openOnly && !ticket.IsOpen(t.CurrentStatus()) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Server) listTickets(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.visibleTickets(current(c), false))
}

func (s *Server) openTickets(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.visibleTickets(current(c), true))
}

func (s *Server) getTicket(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.visibleTickets(current(c), false) {
		if t.Identifier() == id {
			return c.JSON(http.StatusOK, t)
		}
	}
	return c.String(http.StatusNotFound, "Not Found")
}

func (s *Server) resolveTicket(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var in ticket.ResolveInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTicket(id)
	if i < 0 {
		return c.String(http.StatusNotFound, "Not Found")
	}
	t := &s.tickets[i]
	if ticket.IsResolved(t.CurrentStatus()) {
		return c.String(http.StatusConflict, "Ticket already resolved")
	}
	t.TicketStatus = string(ticket.StatusResolved)
	t.Status = ""
	t.ResolutionNotes = in.ResolutionNotes
	t.ResolvedByAdminName = current(c).Username
	t.ResolvedDate = time.Now().UTC().Format("2006-01-02T15:04:05")
	return c.JSON(http.StatusOK, *t)
}

// ---- users ----

func accountJSON(a *Account) user.Account {
	out := user.Account{
		UserID: ptr(a.ID), Username: a.Username, Email: a.Email,
		FirstName: a.FirstName, LastName: a.LastName, Role: string(a.Role), IncomePerAnnum: a.Income,
	}
	if a.IDProof != "" {
		out.IDProofFilePath = ptr(a.IDProof)
	}
	return out
}

func (s *Server) profile(c echo.Context) error {
	return c.JSON(http.StatusOK, accountJSON(current(c)))
}

func (s *Server) usersDetailed(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, accountJSON(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) customersDetailed(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []user.Account{}
	for _, a := range s.accounts {
		if a.Role == user.RoleCustomer {
			out = append(out, accountJSON(a))
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) userDetail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByID(id)
	if a == nil {
		return c.String(http.StatusNotFound, "Not Found")
	}
	return c.JSON(http.StatusOK, accountJSON(a))
}
