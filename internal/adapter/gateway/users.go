package gateway

import (
	"context"
	"fmt"
	"net/http"

	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/user"
)

func (c *Client) GetProfile(ctx context.Context, sess *session.Session) (*user.Account, error) {
	var out user.Account
	if err := c.call(ctx, sess, "get-profile", http.MethodGet, "/api/users/profile", nil, &out, "Failed to fetch user profile"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsersDetailed(ctx context.Context, sess *session.Session) ([]user.Account, error) {
	var out []user.Account
	if err := c.call(ctx, sess, "list-users", http.MethodGet, "/api/users/detailed", nil, &out, "Failed to fetch users"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCustomersDetailed(ctx context.Context, sess *session.Session) ([]user.Account, error) {
	var out []user.Account
	if err := c.call(ctx, sess, "list-customers", http.MethodGet, "/api/users/customers/detailed", nil, &out, "Failed to fetch customers"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUserDetail(ctx context.Context, sess *session.Session, userID int64) (*user.Account, error) {
	var out user.Account
	path := fmt.Sprintf("/api/users/detailed/%d", userID)
	if err := c.call(ctx, sess, "get-user-detail", http.MethodGet, path, nil, &out, "Failed to fetch user details"); err != nil {
		return nil, err
	}
	return &out, nil
}
