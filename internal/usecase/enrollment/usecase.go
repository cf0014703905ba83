package enrollment

import (
	"context"
	"strings"

	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/usecase/board"
	"insurance-portal/internal/usecase/format"
)

type Gateway interface {
	Enroll(ctx context.Context, sess *session.Session, templateID int64, vehicleDetails string) (*enrollment.Record, error)
	CheckEligibility(ctx context.Context, sess *session.Session, templateID int64) (*enrollment.Eligibility, error)
	CanEnroll(ctx context.Context, sess *session.Session, templateID int64) bool
	ListMyEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error)
	ListEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error)
	ListPendingEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error)
	ApproveEnrollment(ctx context.Context, sess *session.Session, id int64, notes string) (*enrollment.Record, error)
	DeclineEnrollment(ctx context.Context, sess *session.Session, id int64, notes string) (*enrollment.Record, error)
}

type Usecase struct {
	api   Gateway
	views board.Views
}

func NewUsecase(api Gateway, views board.Views) *Usecase { return &Usecase{api: api, views: views} }

const (
	kindMine    = "enrollments-mine"
	kindAll     = "enrollments"
	kindPending = "enrollments-pending"
)

func recordID(r enrollment.Record) int64 { return r.EnrollmentID }

// Enroll validates the vehicle details locally before asking the server.
func (u *Usecase) Enroll(ctx context.Context, sess *session.Session, templateID int64, vehicleDetails string) (format.EnrollmentView, error) {
	vehicleDetails = strings.TrimSpace(vehicleDetails)
	if err := ValidateVehicleDetails(vehicleDetails); err != nil {
		return format.EnrollmentView{}, err
	}
	rec, err := u.api.Enroll(ctx, sess, templateID, vehicleDetails)
	if err != nil {
		return format.EnrollmentView{}, err
	}
	board.Patch(ctx, u.views, board.Key(kindMine, sess.Key), func(l []enrollment.Record) []enrollment.Record {
		return board.Upsert(l, *rec, recordID)
	})
	return format.Enrollment(*rec), nil
}

func (u *Usecase) Eligibility(ctx context.Context, sess *session.Session, templateID int64) (*enrollment.Eligibility, error) {
	return u.api.CheckEligibility(ctx, sess, templateID)
}

// CanEnroll is false on any failure.
func (u *Usecase) CanEnroll(ctx context.Context, sess *session.Session, templateID int64) bool {
	return u.api.CanEnroll(ctx, sess, templateID)
}

// Mine lists the customer's own enrollments.
func (u *Usecase) Mine(ctx context.Context, sess *session.Session, reload bool) ([]format.EnrollmentView, error) {
	list, err := u.load(ctx, sess, kindMine, reload, u.api.ListMyEnrollments)
	if err != nil {
		return nil, err
	}
	return toViews(list), nil
}

// Approved lists the customer's enrollments that a claim may be filed against. It
// always asks the server: an admin may have approved one a moment ago.
func (u *Usecase) Approved(ctx context.Context, sess *session.Session) ([]format.EnrollmentView, error) {
	list, err := u.load(ctx, sess, kindMine, true, u.api.ListMyEnrollments)
	if err != nil {
		return nil, err
	}
	out := make([]enrollment.Record, 0, len(list))
	for _, r := range list {
		if r.Status() == enrollment.StatusApproved {
			out = append(out, r)
		}
	}
	return toViews(out), nil
}

// Board is the admin enrollment screen: every enrollment plus the pending queue.
type Board struct {
	All     []format.EnrollmentView `json:"all"`
	Pending []format.EnrollmentView `json:"pending"`
}

func (u *Usecase) AdminBoard(ctx context.Context, sess *session.Session, reload bool) (Board, error) {
	all, err := u.load(ctx, sess, kindAll, reload, u.api.ListEnrollments)
	if err != nil {
		return Board{}, err
	}
	pending, err := u.load(ctx, sess, kindPending, reload, u.api.ListPendingEnrollments)
	if err != nil {
		return Board{}, err
	}
	return Board{All: toViews(all), Pending: toViews(pending)}, nil
}

// Approve decides a pending enrollment; the returned record carries the generated
// policy number.
func (u *Usecase) Approve(ctx context.Context, sess *session.Session, id int64, notes string) (format.EnrollmentView, error) {
	return u.decide(ctx, sess, id, notes, u.api.ApproveEnrollment)
}

func (u *Usecase) Decline(ctx context.Context, sess *session.Session, id int64, notes string) (format.EnrollmentView, error) {
	return u.decide(ctx, sess, id, notes, u.api.DeclineEnrollment)
}

type decision func(ctx context.Context, sess *session.Session, id int64, notes string) (*enrollment.Record, error)

func (u *Usecase) decide(ctx context.Context, sess *session.Session, id int64, notes string, call decision) (format.EnrollmentView, error) {
	if known, ok := u.cached(ctx, sess, kindAll, id); ok && enrollment.IsDecided(known.EnrollmentStatus) {
		return format.EnrollmentView{}, enrollment.ErrDecided
	}
	rec, err := call(ctx, sess, id, strings.TrimSpace(notes))
	if err != nil {
		return format.EnrollmentView{}, err
	}
	if rec.EnrollmentID == 0 {
		rec.EnrollmentID = id
	}
	board.Patch(ctx, u.views, board.Key(kindAll, sess.Key), func(l []enrollment.Record) []enrollment.Record {
		return board.Replace(l, *rec, recordID)
	})
	board.Patch(ctx, u.views, board.Key(kindPending, sess.Key), func(l []enrollment.Record) []enrollment.Record {
		return board.Remove(l, id, recordID)
	})
	return format.Enrollment(*rec), nil
}

type lister func(ctx context.Context, sess *session.Session) ([]enrollment.Record, error)

func (u *Usecase) load(ctx context.Context, sess *session.Session, kind string, reload bool, list lister) ([]enrollment.Record, error) {
	fetch := func(ctx context.Context) ([]enrollment.Record, error) { return list(ctx, sess) }
	if reload {
		return board.Reload(ctx, u.views, board.Key(kind, sess.Key), fetch)
	}
	return board.Load(ctx, u.views, board.Key(kind, sess.Key), fetch)
}

func (u *Usecase) cached(ctx context.Context, sess *session.Session, kind string, id int64) (enrollment.Record, bool) {
	list, ok := board.Cached[enrollment.Record](ctx, u.views, board.Key(kind, sess.Key))
	if !ok {
		return enrollment.Record{}, false
	}
	return board.Find(list, id, recordID)
}

func toViews(list []enrollment.Record) []format.EnrollmentView {
	out := make([]format.EnrollmentView, len(list))
	for i, r := range list {
		out[i] = format.Enrollment(r)
	}
	return out
}
