package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"insurance-portal/internal/adapter/gateway"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/uow"
	"insurance-portal/internal/domain/user"
	"insurance-portal/internal/usecase/form"
	"insurance-portal/pkg/id"
)

// Gateway is the slice of the remote API the auth flow needs.
type Gateway interface {
	Login(ctx context.Context, identifier, secret string) (*gateway.LoginResponse, error)
	Register(ctx context.Context, in user.RegisterInput, proof *gateway.IDProof) (string, error)
	RegisterJSON(ctx context.Context, in user.RegisterInput) (string, error)
}

type Usecase struct {
	api  Gateway
	repo session.Repository
	tx   uow.UnitOfWork
	ttl  time.Duration
	now  func() time.Time
	log  *slog.Logger
}

func NewUsecase(api Gateway, repo session.Repository, tx uow.UnitOfWork, ttl time.Duration) *Usecase {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Usecase{api: api, repo: repo, tx: tx, ttl: ttl, now: time.Now, log: slog.Default().With("component", "auth")}
}

type LoginInput struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password"        validate:"required"`
	Role            string `json:"role"            validate:"omitempty,oneof=customer admin CUSTOMER ADMIN"`
}

// Login authenticates against the remote API and stores a new session. When
// expected is set and the account has a different role nothing is stored.
// Expired sessions are swept in the same transaction.
func (u *Usecase) Login(ctx context.Context, identifier, secret string, expected session.Role) (*session.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return nil, form.Invalid("Username/email and password are required")
	}

	res, err := u.api.Login(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}

	role := session.ParseRole(res.Role)
	if expected != "" && session.ParseRole(string(expected)) != role {
		u.log.Info("login refused: role mismatch", "username", res.Username, "expected", expected, "actual", role)
		return nil, session.ErrRoleMismatch
	}

	now := u.now().UTC()
	s := &session.Session{
		Key:       id.NewID32(),
		Token:     res.Token,
		Role:      role,
		UserID:    string(res.ID),
		Username:  res.Username,
		Email:     res.Email,
		CreatedAt: now,
		ExpiresAt: u.expiry(res.Token, now),
	}
	if !s.Complete() {
		return nil, &gateway.APIError{Op: "login", Message: "Login failed", Err: errors.New("incomplete login response")}
	}

	err = u.tx.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Sessions.DeleteExpired(ctx, now.Unix()); err != nil {
			return err
		}
		return r.Sessions.Save(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("login", "username", s.Username, "role", s.Role)
	return s, nil
}

// expiry prefers the token's own exp claim. The signature is not checked; the
// portal never holds the signing key.
func (u *Usecase) expiry(token string, now time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time.UTC()
	}
	return now.Add(u.ttl)
}

// Logout erases the session; unknown keys are not an error.
func (u *Usecase) Logout(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return u.repo.Delete(ctx, key)
}

// CurrentSession returns session.ErrNoSession for absent, incomplete or expired sessions.
func (u *Usecase) CurrentSession(ctx context.Context, key string) (*session.Session, error) {
	if !id.Valid32(key) {
		return nil, session.ErrNoSession
	}
	s, err := u.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if !s.Complete() {
		return nil, session.ErrNoSession
	}
	if s.Expired(u.now()) {
		_ = u.repo.Delete(ctx, key)
		return nil, session.ErrNoSession
	}
	return s, nil
}

func (u *Usecase) IsAuthenticated(ctx context.Context, key string) bool {
	_, err := u.CurrentSession(ctx, key)
	return err == nil
}

// Sweep drops every expired session.
func (u *Usecase) Sweep(ctx context.Context) (int64, error) {
	return u.repo.DeleteExpired(ctx, u.now().Unix())
}

// Register validates the form locally, then posts it with the optional id proof.
func (u *Usecase) Register(ctx context.Context, in user.RegisterInput, proof *gateway.IDProof) (string, error) {
	if err := ValidateRegistration(in); err != nil {
		return "", err
	}
	return u.api.Register(ctx, in, proof)
}

// RegisterJSON is Register without a file upload.
func (u *Usecase) RegisterJSON(ctx context.Context, in user.RegisterInput) (string, error) {
	if err := ValidateRegistration(in); err != nil {
		return "", err
	}
	return u.api.RegisterJSON(ctx, in)
}

// DashboardRouteFor maps a session to its landing page.
func DashboardRouteFor(s *session.Session) string {
	switch {
	case s.IsCustomer():
		return "/dashboard/customer"
	case s.IsAdmin():
		return "/dashboard/admin"
	}
	return "/"
}

// HasRole is false for a nil session.
func HasRole(s *session.Session, role session.Role) bool {
	return s != nil && s.Role == session.ParseRole(string(role))
}
