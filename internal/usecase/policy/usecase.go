package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/usecase/board"
	"insurance-portal/internal/usecase/form"
	"insurance-portal/internal/usecase/format"
)

// Gateway is the policy slice of the remote API.
type Gateway interface {
	ListPublicTemplates(ctx context.Context) ([]policy.Template, error)
	GetPublicTemplate(ctx context.Context, policyID int64) (*policy.Template, error)
	GetPublicTemplateByNumber(ctx context.Context, number string) (*policy.Template, error)
	ListPolicies(ctx context.Context, sess *session.Session) ([]policy.Template, error)
	GetPolicy(ctx context.Context, sess *session.Session, policyID int64) (*policy.Template, error)
	GetPolicyByNumber(ctx context.Context, sess *session.Session, number string) (*policy.Template, error)
	CreatePolicy(ctx context.Context, sess *session.Session, in policy.Input) (*policy.Template, error)
	UpdatePolicy(ctx context.Context, sess *session.Session, policyID int64, in policy.Input) (*policy.Template, error)
	DeletePolicy(ctx context.Context, sess *session.Session, policyID int64) (string, error)
}

type Usecase struct {
	api   Gateway
	views board.Views
}

func NewUsecase(api Gateway, views board.Views) *Usecase { return &Usecase{api: api, views: views} }

const boardKind = "policies"

func templateID(t policy.Template) int64 { return t.PolicyID }

// Browse lists the public templates as customer cards. Inactive templates are hidden.
func (u *Usecase) Browse(ctx context.Context) ([]format.TemplateCard, error) {
	list, err := u.api.ListPublicTemplates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]format.TemplateCard, 0, len(list))
	for _, t := range list {
		if !policy.Listed(t) {
			continue
		}
		out = append(out, format.Template(t))
	}
	return out, nil
}

func (u *Usecase) Template(ctx context.Context, policyID int64) (format.TemplateCard, error) {
	t, err := u.api.GetPublicTemplate(ctx, policyID)
	if err != nil {
		return format.TemplateCard{}, err
	}
	return format.Template(*t), nil
}

func (u *Usecase) TemplateByNumber(ctx context.Context, number string) (format.TemplateCard, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return format.TemplateCard{}, form.Invalid("Policy number is required")
	}
	t, err := u.api.GetPublicTemplateByNumber(ctx, number)
	if err != nil {
		return format.TemplateCard{}, err
	}
	return format.Template(*t), nil
}

// List is the admin policy table, served from the session's board when cached.
func (u *Usecase) List(ctx context.Context, sess *session.Session, reload bool) ([]format.PolicyView, error) {
	fetch := func(ctx context.Context) ([]policy.Template, error) { return u.api.ListPolicies(ctx, sess) }
	load := board.Load[policy.Template]
	if reload {
		load = board.Reload[policy.Template]
	}
	list, err := load(ctx, u.views, board.Key(boardKind, sess.Key), fetch)
	if err != nil {
		return nil, err
	}
	return toViews(list), nil
}

func (u *Usecase) Get(ctx context.Context, sess *session.Session, policyID int64) (format.PolicyView, error) {
	t, err := u.api.GetPolicy(ctx, sess, policyID)
	if err != nil {
		return format.PolicyView{}, err
	}
	return format.Policy(*t), nil
}

func (u *Usecase) GetByNumber(ctx context.Context, sess *session.Session, number string) (format.PolicyView, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return format.PolicyView{}, form.Invalid("Policy number is required")
	}
	t, err := u.api.GetPolicyByNumber(ctx, sess, number)
	if err != nil {
		return format.PolicyView{}, err
	}
	return format.Policy(*t), nil
}

func (u *Usecase) Create(ctx context.Context, sess *session.Session, in policy.Input) (format.PolicyView, error) {
	in = normalize(in)
	if err := Validate(in); err != nil {
		return format.PolicyView{}, err
	}
	t, err := u.api.CreatePolicy(ctx, sess, in)
	if err != nil {
		return format.PolicyView{}, err
	}
	board.Patch(ctx, u.views, board.Key(boardKind, sess.Key), func(l []policy.Template) []policy.Template {
		return board.Upsert(l, *t, templateID)
	})
	return format.Policy(*t), nil
}

func (u *Usecase) Update(ctx context.Context, sess *session.Session, policyID int64, in policy.Input) (format.PolicyView, error) {
	in = normalize(in)
	if err := Validate(in); err != nil {
		return format.PolicyView{}, err
	}
	t, err := u.api.UpdatePolicy(ctx, sess, policyID, in)
	if err != nil {
		return format.PolicyView{}, err
	}
	if t.PolicyID == 0 {
		t.PolicyID = policyID
	}
	board.Patch(ctx, u.views, board.Key(boardKind, sess.Key), func(l []policy.Template) []policy.Template {
		return board.Replace(l, *t, templateID)
	})
	return format.Policy(*t), nil
}

// Delete returns the server's confirmation text.
func (u *Usecase) Delete(ctx context.Context, sess *session.Session, policyID int64) (string, error) {
	msg, err := u.api.DeletePolicy(ctx, sess, policyID)
	if err != nil {
		return "", err
	}
	board.Patch(ctx, u.views, board.Key(boardKind, sess.Key), func(l []policy.Template) []policy.Template {
		return board.Remove(l, policyID, templateID)
	})
	return msg, nil
}

func normalize(in policy.Input) policy.Input {
	in.PolicyNumber = strings.TrimSpace(in.PolicyNumber)
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	in.CoverageType = strings.TrimSpace(in.CoverageType)
	if in.PolicyStatus == "" {
		in.PolicyStatus = policy.StatusActive
	}
	in.PolicyStatus = policy.ParseStatus(string(in.PolicyStatus))
	return in
}

const dateLayout = "2006-01-02"

// Validate checks the admin policy form and reports every problem at once.
func Validate(in policy.Input) error {
	var c form.Checker
	c.Require(in.PolicyNumber != "", "Policy number is required")
	c.Require(in.VehicleType != "", "Vehicle type is required")
	c.Require(in.CoverageType != "", "Coverage type is required")
	c.Require(in.CoverageAmount > 0, "Coverage amount must be greater than 0")
	c.Require(in.PremiumAmount > 0, "Premium amount must be greater than 0")

	start, startErr := time.Parse(dateLayout, in.StartDate)
	end, endErr := time.Parse(dateLayout, in.EndDate)
	c.Require(startErr == nil, "Start date must be a valid date (YYYY-MM-DD)")
	c.Require(endErr == nil, "End date must be a valid date (YYYY-MM-DD)")
	if startErr == nil && endErr == nil {
		c.Require(end.After(start), "End date must be after start date")
	}
	c.Require(in.PolicyStatus == policy.StatusActive || in.PolicyStatus == policy.StatusInactive,
		fmt.Sprintf("Policy status must be %s or %s", policy.StatusActive, policy.StatusInactive))
	return c.Err()
}

func toViews(list []policy.Template) []format.PolicyView {
	out := make([]format.PolicyView, len(list))
	for i, t := range list {
		out[i] = format.Policy(t)
	}
	return out
}
