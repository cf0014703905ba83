package ticket

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/usecase/board"
	"insurance-portal/internal/usecase/form"
	"insurance-portal/internal/usecase/format"
)

const maxIssue = 2000

type Gateway interface {
	CreateTicket(ctx context.Context, sess *session.Session, in ticket.CreateInput) (*ticket.Record, error)
	ListTickets(ctx context.Context, sess *session.Session) ([]ticket.Record, error)
	GetTicket(ctx context.Context, sess *session.Session, id int64) (*ticket.Record, error)
	ListOpenTickets(ctx context.Context, sess *session.Session) ([]ticket.Record, error)
	ResolveTicket(ctx context.Context, sess *session.Session, id int64, notes string) (*ticket.Record, error)
}

type Usecase struct {
	api   Gateway
	views board.Views
	now   func() time.Time
}

func NewUsecase(api Gateway, views board.Views) *Usecase {
	return &Usecase{api: api, views: views, now: time.Now}
}

const (
	kindAll  = "tickets"
	kindOpen = "tickets-open"
)

func recordID(r ticket.Record) int64 { return r.Identifier() }

// Item is a ticket row with its age-based priority.
type Item struct {
	format.TicketView
	Priority      format.Priority `json:"priority"`
	PriorityColor string          `json:"priorityColor"`
}

func ValidateTicket(in ticket.CreateInput) error {
	var c form.Checker
	issue := strings.TrimSpace(in.IssueDescription)
	c.Require(issue != "", "Issue description is required")
	c.Require(utf8.RuneCountInString(issue) <= maxIssue, "Issue description cannot exceed 2000 characters")
	return c.Err()
}

// Create opens a ticket, optionally linked to an enrollment or a claim.
func (u *Usecase) Create(ctx context.Context, sess *session.Session, in ticket.CreateInput) (Item, error) {
	in.IssueDescription = strings.TrimSpace(in.IssueDescription)
	if err := ValidateTicket(in); err != nil {
		return Item{}, err
	}
	if in.PolicyEnrollmentID != nil && *in.PolicyEnrollmentID <= 0 {
		in.PolicyEnrollmentID = nil
	}
	if in.ClaimID != nil && *in.ClaimID <= 0 {
		in.ClaimID = nil
	}
	rec, err := u.api.CreateTicket(ctx, sess, in)
	if err != nil {
		return Item{}, err
	}
	for _, kind := range []string{kindAll, kindOpen} {
		board.Patch(ctx, u.views, board.Key(kind, sess.Key), func(l []ticket.Record) []ticket.Record {
			return board.Upsert(l, *rec, recordID)
		})
	}
	return u.item(*rec), nil
}

func (u *Usecase) List(ctx context.Context, sess *session.Session, reload bool) ([]Item, error) {
	return u.load(ctx, sess, kindAll, reload, u.api.ListTickets)
}

// Open lists OPEN and IN_PROGRESS tickets.
func (u *Usecase) Open(ctx context.Context, sess *session.Session, reload bool) ([]Item, error) {
	return u.load(ctx, sess, kindOpen, reload, u.api.ListOpenTickets)
}

func (u *Usecase) Get(ctx context.Context, sess *session.Session, id int64) (Item, error) {
	rec, err := u.api.GetTicket(ctx, sess, id)
	if err != nil {
		return Item{}, err
	}
	return u.item(*rec), nil
}

// Resolve closes out a ticket with the admin's notes.
func (u *Usecase) Resolve(ctx context.Context, sess *session.Session, id int64, notes string) (Item, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return Item{}, form.Invalid("Resolution notes are required")
	}
	if list, ok := board.Cached[ticket.Record](ctx, u.views, board.Key(kindAll, sess.Key)); ok {
		if r, found := board.Find(list, id, recordID); found && ticket.IsResolved(r.CurrentStatus()) {
			return Item{}, ticket.ErrResolved
		}
	}
	rec, err := u.api.ResolveTicket(ctx, sess, id, notes)
	if err != nil {
		return Item{}, err
	}
	if rec.Identifier() == 0 {
		rec.TicketID = &id
	}
	board.Patch(ctx, u.views, board.Key(kindAll, sess.Key), func(l []ticket.Record) []ticket.Record {
		return board.Replace(l, *rec, recordID)
	})
	board.Patch(ctx, u.views, board.Key(kindOpen, sess.Key), func(l []ticket.Record) []ticket.Record {
		return board.Remove(l, id, recordID)
	})
	return u.item(*rec), nil
}

type lister func(ctx context.Context, sess *session.Session) ([]ticket.Record, error)

func (u *Usecase) load(ctx context.Context, sess *session.Session, kind string, reload bool, list lister) ([]Item, error) {
	fetch := func(ctx context.Context) ([]ticket.Record, error) { return list(ctx, sess) }
	key := board.Key(kind, sess.Key)
	var (
		recs []ticket.Record
		err  error
	)
	if reload {
		recs, err = board.Reload(ctx, u.views, key, fetch)
	} else {
		recs, err = board.Load(ctx, u.views, key, fetch)
	}
	if err != nil {
		return nil, err
	}
	out := make([]Item, len(recs))
	for i, r := range recs {
		out[i] = u.item(r)
	}
	return out, nil
}

func (u *Usecase) item(r ticket.Record) Item {
	v := format.Ticket(r)
	p := format.PriorityNormal
	if !v.Resolved {
		p = format.TicketPriority(v.CreatedDate, u.now())
	}
	return Item{TicketView: v, Priority: p, PriorityColor: format.PriorityColor(p)}
}
