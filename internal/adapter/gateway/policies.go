package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
)

func (c *Client) CreatePolicy(ctx context.Context, sess *session.Session, in policy.Input) (*policy.Template, error) {
	var out policy.Template
	if err := c.call(ctx, sess, "create-policy", http.MethodPost, "/api/policies", in, &out, "Failed to create policy"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePolicy(ctx context.Context, sess *session.Session, policyID int64, in policy.Input) (*policy.Template, error) {
	var out policy.Template
	path := fmt.Sprintf("/api/policies/%d", policyID)
	if err := c.call(ctx, sess, "update-policy", http.MethodPut, path, in, &out, "Failed to update policy"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePolicy returns the backend's plain-text confirmation.
func (c *Client) DeletePolicy(ctx context.Context, sess *session.Session, policyID int64) (string, error) {
	var msg string
	path := fmt.Sprintf("/api/policies/%d", policyID)
	if err := c.call(ctx, sess, "delete-policy", http.MethodDelete, path, nil, &msg, "Failed to delete policy"); err != nil {
		return "", err
	}
	return strings.TrimSpace(msg), nil
}

// ListPolicies is role-scoped on the server: admins see every template.
func (c *Client) ListPolicies(ctx context.Context, sess *session.Session) ([]policy.Template, error) {
	var out []policy.Template
	if err := c.call(ctx, sess, "list-policies", http.MethodGet, "/api/policies", nil, &out, "Failed to fetch policies"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPolicy(ctx context.Context, sess *session.Session, policyID int64) (*policy.Template, error) {
	var out policy.Template
	path := fmt.Sprintf("/api/policies/%d", policyID)
	if err := c.call(ctx, sess, "get-policy", http.MethodGet, path, nil, &out, "Failed to fetch policy"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPolicyByNumber(ctx context.Context, sess *session.Session, number string) (*policy.Template, error) {
	var out policy.Template
	path := "/api/policies/number/" + url.PathEscape(number)
	if err := c.call(ctx, sess, "get-policy-by-number", http.MethodGet, path, nil, &out, "Failed to fetch policy"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPublicTemplates needs no session.
func (c *Client) ListPublicTemplates(ctx context.Context) ([]policy.Template, error) {
	var out []policy.Template
	if err := c.call(ctx, nil, "list-public-templates", http.MethodGet, "/api/policies/public", nil, &out, "Failed to fetch policy templates"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPublicTemplate(ctx context.Context, policyID int64) (*policy.Template, error) {
	var out policy.Template
	path := fmt.Sprintf("/api/policies/public/%d", policyID)
	if err := c.call(ctx, nil, "get-public-template", http.MethodGet, path, nil, &out, "Failed to fetch policy template"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPublicTemplateByNumber(ctx context.Context, number string) (*policy.Template, error) {
	var out policy.Template
	path := "/api/policies/public/number/" + url.PathEscape(number)
	if err := c.call(ctx, nil, "get-public-template-by-number", http.MethodGet, path, nil, &out, "Failed to fetch policy template"); err != nil {
		return nil, err
	}
	return &out, nil
}
