// Package gateway is the thin REST client for the remote insurance backend. Each method
// maps to exactly one endpoint, takes the caller's session explicitly and fires once:
// no retries, no caching.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"insurance-portal/internal/domain/session"
)

const HeaderRequestID = "X-Request-Id"

type Config struct {
	BaseURL string
	Debug   bool
	// HTTPClient lets tests and callers swap the transport; nil uses resty's default.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	rc  *resty.Client
	log *slog.Logger
}

func New(cfg Config) *Client {
	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetDebug(cfg.Debug)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{rc: rc, log: logger.With("component", "gateway")}
}

// request starts a request bound to ctx, authorized when sess carries a token.
func (c *Client) request(ctx context.Context, sess *session.Session) *resty.Request {
	req := c.rc.R().
		SetContext(ctx).
		SetHeader(HeaderRequestID, uuid.NewString())
	if sess != nil && sess.Token != "" {
		req.SetAuthToken(sess.Token)
	}
	return req
}

// call performs method on path. body, when non-nil, is sent as JSON. out receives the
// decoded 2xx body; a *string out receives the raw text instead.
func (c *Client) call(ctx context.Context, sess *session.Session, op, method, path string, body, out any, fallback string) error {
	req := c.request(ctx, sess)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	return c.finish(ctx, op, resp, err, out, fallback)
}

func (c *Client) finish(ctx context.Context, op string, resp *resty.Response, err error, out any, fallback string) error {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.log.Warn("request failed", "op", op, "err", err)
		return &APIError{Op: op, Message: fallback, Err: err}
	}

	c.log.Debug("request done", "op", op, "status", resp.StatusCode(), "took", resp.Time())
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &APIError{Op: op, Status: resp.StatusCode(), Message: messageFrom(resp.Body(), fallback)}
	}
	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = resp.String()
		return nil
	}
	if len(strings.TrimSpace(resp.String())) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &APIError{Op: op, Status: resp.StatusCode(), Message: fallback, Err: fmt.Errorf("decode %s: %w", op, err)}
	}
	return nil
}
