package claim

import (
	"context"
	"strings"
	"unicode/utf8"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/usecase/board"
	"insurance-portal/internal/usecase/form"
	"insurance-portal/internal/usecase/format"
)

const maxDescription = 1000

type Gateway interface {
	SubmitClaim(ctx context.Context, sess *session.Session, in claim.SubmitInput) (*claim.Record, error)
	GetClaim(ctx context.Context, sess *session.Session, id int64) (*claim.Record, error)
	ListClaims(ctx context.Context, sess *session.Session) ([]claim.Record, error)
	UpdateClaimStatus(ctx context.Context, sess *session.Session, id int64, in claim.StatusUpdate) (*claim.Record, error)
	ListClaimsByStatus(ctx context.Context, sess *session.Session, status claim.Status) ([]claim.Record, error)
}

// Enrollments supplies the enrollments a customer may claim against.
type Enrollments interface {
	Approved(ctx context.Context, sess *session.Session) ([]format.EnrollmentView, error)
}

type Usecase struct {
	api         Gateway
	enrollments Enrollments
	views       board.Views
}

func NewUsecase(api Gateway, enrollments Enrollments, views board.Views) *Usecase {
	return &Usecase{api: api, enrollments: enrollments, views: views}
}

const boardKind = "claims"

func recordID(r claim.Record) int64 { return r.Identifier() }

// ValidateSubmission reports every problem with a claim form.
func ValidateSubmission(in claim.SubmitInput) error {
	var c form.Checker
	c.Require(in.PolicyEnrollmentID > 0, "Policy enrollment ID is required")
	c.Require(in.ClaimAmount > 0, "Claim amount must be positive")
	c.Require(utf8.RuneCountInString(in.ClaimDescription) <= maxDescription, "Claim description cannot exceed 1000 characters")
	return c.Err()
}

// Submit files a claim against one of the customer's approved enrollments.
func (u *Usecase) Submit(ctx context.Context, sess *session.Session, in claim.SubmitInput) (format.ClaimView, error) {
	in.ClaimDescription = strings.TrimSpace(in.ClaimDescription)
	if err := ValidateSubmission(in); err != nil {
		return format.ClaimView{}, err
	}
	if u.enrollments != nil {
		approved, err := u.enrollments.Approved(ctx, sess)
		if err != nil {
			return format.ClaimView{}, err
		}
		if !containsEnrollment(approved, in.PolicyEnrollmentID) {
			return format.ClaimView{}, claim.ErrNotApprovedEnrollment
		}
	}
	rec, err := u.api.SubmitClaim(ctx, sess, in)
	if err != nil {
		return format.ClaimView{}, err
	}
	board.Patch(ctx, u.views, board.Key(boardKind, sess.Key), func(l []claim.Record) []claim.Record {
		return board.Upsert(l, *rec, recordID)
	})
	return format.Claim(*rec), nil
}

func containsEnrollment(list []format.EnrollmentView, id int64) bool {
	for _, e := range list {
		if e.EnrollmentID == id {
			return true
		}
	}
	return false
}

// List returns the session's claims: the customer's own, or every claim for an admin.
func (u *Usecase) List(ctx context.Context, sess *session.Session, reload bool) ([]format.ClaimView, error) {
	list, err := u.load(ctx, sess, reload)
	if err != nil {
		return nil, err
	}
	return toViews(list), nil
}

func (u *Usecase) Get(ctx context.Context, sess *session.Session, id int64) (format.ClaimView, error) {
	rec, err := u.api.GetClaim(ctx, sess, id)
	if err != nil {
		return format.ClaimView{}, err
	}
	return format.Claim(*rec), nil
}

// Filter lists claims in one status. An empty status or ALL means every claim.
func (u *Usecase) Filter(ctx context.Context, sess *session.Session, status string) ([]format.ClaimView, error) {
	if s := strings.TrimSpace(status); s == "" || strings.EqualFold(s, "ALL") {
		return u.List(ctx, sess, false)
	}
	st, ok := claim.Machine.Parse(status)
	if !ok {
		return nil, form.Invalid("Unknown claim status: " + status)
	}
	list, err := u.api.ListClaimsByStatus(ctx, sess, st)
	if err != nil {
		return nil, err
	}
	return toViews(list), nil
}

// UpdateStatus moves a claim along the transition table. Disallowed moves are
// refused without calling the server.
func (u *Usecase) UpdateStatus(ctx context.Context, sess *session.Session, id int64, to string, notes string) (format.ClaimView, error) {
	if strings.TrimSpace(to) == "" {
		return format.ClaimView{}, form.Invalid("Please select a status")
	}
	current, err := u.current(ctx, sess, id)
	if err != nil {
		return format.ClaimView{}, err
	}
	from := current.CurrentStatus()
	if len(claim.AvailableTransitions(from)) == 0 {
		return format.ClaimView{}, claim.ErrFinal
	}
	if !claim.Machine.CanTransition(from, to) {
		return format.ClaimView{}, claim.ErrInvalidTransition
	}
	target, _ := claim.Machine.Parse(to)

	rec, err := u.api.UpdateClaimStatus(ctx, sess, id, claim.StatusUpdate{ClaimStatus: target, AdminNotes: strings.TrimSpace(notes)})
	if err != nil {
		return format.ClaimView{}, err
	}
	if rec.Identifier() == 0 {
		rec.ClaimID = &id
	}
	board.Patch(ctx, u.views, board.Key(boardKind, sess.Key), func(l []claim.Record) []claim.Record {
		return board.Replace(l, *rec, recordID)
	})
	return format.Claim(*rec), nil
}

// current trusts the board's copy only once it is final; anything else may have
// moved on the server since the board was fetched.
func (u *Usecase) current(ctx context.Context, sess *session.Session, id int64) (claim.Record, error) {
	if list, ok := board.Cached[claim.Record](ctx, u.views, board.Key(boardKind, sess.Key)); ok {
		if r, found := board.Find(list, id, recordID); found && claim.IsStatusFinal(r.CurrentStatus()) {
			return r, nil
		}
	}
	rec, err := u.api.GetClaim(ctx, sess, id)
	if err != nil {
		return claim.Record{}, err
	}
	return *rec, nil
}

func (u *Usecase) load(ctx context.Context, sess *session.Session, reload bool) ([]claim.Record, error) {
	fetch := func(ctx context.Context) ([]claim.Record, error) { return u.api.ListClaims(ctx, sess) }
	if reload {
		return board.Reload(ctx, u.views, board.Key(boardKind, sess.Key), fetch)
	}
	return board.Load(ctx, u.views, board.Key(boardKind, sess.Key), fetch)
}

func toViews(list []claim.Record) []format.ClaimView {
	out := make([]format.ClaimView, len(list))
	for i, r := range list {
		out[i] = format.Claim(r)
	}
	return out
}
