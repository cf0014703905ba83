package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/session"
)

func (c *Client) SubmitClaim(ctx context.Context, sess *session.Session, in claim.SubmitInput) (*claim.Record, error) {
	var out claim.Record
	if err := c.call(ctx, sess, "submit-claim", http.MethodPost, "/api/claims", in, &out, "Failed to submit claim"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetClaim(ctx context.Context, sess *session.Session, id int64) (*claim.Record, error) {
	var out claim.Record
	path := fmt.Sprintf("/api/claims/%d", id)
	if err := c.call(ctx, sess, "get-claim", http.MethodGet, path, nil, &out, "Failed to fetch claim details"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListClaims is role-scoped: admins get every claim, customers their own.
func (c *Client) ListClaims(ctx context.Context, sess *session.Session) ([]claim.Record, error) {
	var out []claim.Record
	if err := c.call(ctx, sess, "list-claims", http.MethodGet, "/api/claims", nil, &out, "Failed to fetch claims"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateClaimStatus(ctx context.Context, sess *session.Session, id int64, in claim.StatusUpdate) (*claim.Record, error) {
	var out claim.Record
	path := fmt.Sprintf("/api/claims/%d/status", id)
	if err := c.call(ctx, sess, "update-claim-status", http.MethodPut, path, in, &out, "Failed to update claim status"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListClaimsByStatus(ctx context.Context, sess *session.Session, status claim.Status) ([]claim.Record, error) {
	var out []claim.Record
	path := "/api/claims/status/" + url.PathEscape(string(status))
	if err := c.call(ctx, sess, "list-claims-by-status", http.MethodGet, path, nil, &out, "Failed to fetch claims with status: "+string(status)); err != nil {
		return nil, err
	}
	return out, nil
}
