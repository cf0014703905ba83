package gateway

import (
	"context"
	"fmt"
	"net/http"

	"insurance-portal/internal/domain/session"
	"insurance-portal/internal/domain/ticket"
)

func (c *Client) CreateTicket(ctx context.Context, sess *session.Session, in ticket.CreateInput) (*ticket.Record, error) {
	var out ticket.Record
	if err := c.call(ctx, sess, "create-ticket", http.MethodPost, "/api/support/tickets", in, &out, "Failed to create support ticket"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTickets(ctx context.Context, sess *session.Session) ([]ticket.Record, error) {
	var out []ticket.Record
	if err := c.call(ctx, sess, "list-tickets", http.MethodGet, "/api/support/tickets", nil, &out, "Failed to fetch tickets"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTicket(ctx context.Context, sess *session.Session, id int64) (*ticket.Record, error) {
	var out ticket.Record
	path := fmt.Sprintf("/api/support/tickets/%d", id)
	if err := c.call(ctx, sess, "get-ticket", http.MethodGet, path, nil, &out, "Failed to fetch ticket"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOpenTickets(ctx context.Context, sess *session.Session) ([]ticket.Record, error) {
	var out []ticket.Record
	if err := c.call(ctx, sess, "list-open-tickets", http.MethodGet, "/api/support/tickets/open", nil, &out, "Failed to fetch open tickets"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResolveTicket(ctx context.Context, sess *session.Session, id int64, notes string) (*ticket.Record, error) {
	var out ticket.Record
	path := fmt.Sprintf("/api/support/tickets/%d/resolve", id)
	if err := c.call(ctx, sess, "resolve-ticket", http.MethodPut, path, ticket.ResolveInput{ResolutionNotes: notes}, &out, "Failed to resolve ticket"); err != nil {
		return nil, err
	}
	return &out, nil
}
