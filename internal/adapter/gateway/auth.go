package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"insurance-portal/internal/domain/user"
)

// FlexID accepts both JSON numbers and strings; the backend is not consistent.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	ID       FlexID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// IDProof is the optional identity document uploaded at registration.
type IDProof struct {
	Filename string
	Content  io.Reader
}

func (c *Client) Login(ctx context.Context, identifier, secret string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.call(ctx, nil, "login", http.MethodPost, "/api/auth/login",
		LoginRequest{UsernameOrEmail: identifier, Password: secret}, &out, "Login failed")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register posts the multipart form the backend expects and returns its plain-text reply.
func (c *Client) Register(ctx context.Context, in user.RegisterInput, proof *IDProof) (string, error) {
	role := string(in.Role)
	if role == "" {
		role = string(user.RoleCustomer)
	}
	fields := map[string]string{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
		"username":  in.Username,
		"password":  in.Password,
		"email":     in.Email,
		"role":      role,
	}
	if in.IncomePerAnnum != nil && *in.IncomePerAnnum != 0 {
		fields["incomePerAnnum"] = strconv.FormatFloat(*in.IncomePerAnnum, 'f', -1, 64)
	}

	req := c.request(ctx, nil).SetMultipartFormData(fields)
	if proof != nil && proof.Content != nil {
		req.SetFileReader("idProof", proof.Filename, proof.Content)
	}
	resp, err := req.Post("/api/auth/register")
	return c.registered(ctx, "register", resp, err)
}

// RegisterJSON is the JSON-only registration endpoint (no id proof upload).
func (c *Client) RegisterJSON(ctx context.Context, in user.RegisterInput) (string, error) {
	if in.Role == "" {
		in.Role = user.RoleCustomer
	}
	resp, err := c.request(ctx, nil).
		SetHeader("Content-Type", "application/json").
		SetBody(in).
		Post("/api/auth/register-json")
	return c.registered(ctx, "register-json", resp, err)
}

// registered returns the backend's plain-text reply. A refused registration shows
// the response text as sent, whatever its shape.
func (c *Client) registered(ctx context.Context, op string, resp *resty.Response, err error) (string, error) {
	var msg string
	if err := c.finish(ctx, op, resp, err, &msg, "Registration failed"); err != nil {
		var ae *APIError
		if errors.As(err, &ae) && !ae.Transport() {
			if raw := strings.TrimSpace(resp.String()); raw != "" {
				ae.Message = raw
			}
		}
		return "", err
	}
	return strings.TrimSpace(msg), nil
}
