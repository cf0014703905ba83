package user

import (
	"context"

	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/user"
	"insurance-portal/internal/usecase/board"
	"insurance-portal/internal/usecase/format"
)

type Gateway interface {
	GetProfile(ctx context.Context, sess *session.Session) (*user.Account, error)
	ListUsersDetailed(ctx context.Context, sess *session.Session) ([]user.Account, error)
	ListCustomersDetailed(ctx context.Context, sess *session.Session) ([]user.Account, error)
	GetUserDetail(ctx context.Context, sess *session.Session, userID int64) (*user.Account, error)
}

type Usecase struct {
	api   Gateway
	views board.Views
}

func NewUsecase(api Gateway, views board.Views) *Usecase { return &Usecase{api: api, views: views} }

// Audience selects the admin users table.
type Audience string

const (
	AudienceAll       Audience = "all"
	AudienceCustomers Audience = "customers"
)

func (u *Usecase) Profile(ctx context.Context, sess *session.Session) (format.UserView, error) {
	a, err := u.api.GetProfile(ctx, sess)
	if err != nil {
		return format.UserView{}, err
	}
	return format.User(*a), nil
}

// Users is the admin users table. Unknown audiences fall back to everyone.
func (u *Usecase) Users(ctx context.Context, sess *session.Session, audience Audience, reload bool) ([]format.UserView, error) {
	kind, list := "users", u.api.ListUsersDetailed
	if audience == AudienceCustomers {
		kind, list = "users-customers", u.api.ListCustomersDetailed
	}
	fetch := func(ctx context.Context) ([]user.Account, error) { return list(ctx, sess) }
	load := board.Load[user.Account]
	if reload {
		load = board.Reload[user.Account]
	}
	accounts, err := load(ctx, u.views, board.Key(kind, sess.Key), fetch)
	if err != nil {
		return nil, err
	}
	out := make([]format.UserView, len(accounts))
	for i, a := range accounts {
		out[i] = format.User(a)
	}
	return out, nil
}

func (u *Usecase) Detail(ctx context.Context, sess *session.Session, userID int64) (format.UserView, error) {
	a, err := u.api.GetUserDetail(ctx, sess, userID)
	if err != nil {
		return format.UserView{}, err
	}
	return format.User(*a), nil
}
