package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/session"
)

func (c *Client) Enroll(ctx context.Context, sess *session.Session, templateID int64, vehicleDetails string) (*enrollment.Record, error) {
	in := enrollment.EnrollInput{
		VehicleDetails: strings.TrimSpace(vehicleDetails),
		EnrollmentDate: time.Now().UTC().Format(time.RFC3339Nano),
	}
	var out enrollment.Record
	path := fmt.Sprintf("/api/enrollments/%d/enroll", templateID)
	if err := c.call(ctx, sess, "enroll", http.MethodPost, path, in, &out, "Failed to enroll in policy template"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckEligibility(ctx context.Context, sess *session.Session, templateID int64) (*enrollment.Eligibility, error) {
	var out enrollment.Eligibility
	path := fmt.Sprintf("/api/enrollments/%d/eligibility", templateID)
	if err := c.call(ctx, sess, "check-eligibility", http.MethodGet, path, nil, &out, "Failed to check enrollment eligibility"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CanEnroll swallows every failure into false, as the enroll button only needs a yes/no.
func (c *Client) CanEnroll(ctx context.Context, sess *session.Session, templateID int64) bool {
	var ok bool
	path := fmt.Sprintf("/api/enrollments/%d/can-enroll", templateID)
	if err := c.call(ctx, sess, "can-enroll", http.MethodGet, path, nil, &ok, "Failed to check enrollment"); err != nil {
		return false
	}
	return ok
}

func (c *Client) ListMyEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error) {
	var out []enrollment.Record
	if err := c.call(ctx, sess, "list-my-enrollments", http.MethodGet, "/api/enrollments/my-enrollments", nil, &out, "Failed to fetch enrollments"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error) {
	var out []enrollment.Record
	if err := c.call(ctx, sess, "list-enrollments", http.MethodGet, "/api/enrollments", nil, &out, "Failed to fetch all enrollments"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPendingEnrollments(ctx context.Context, sess *session.Session) ([]enrollment.Record, error) {
	var out []enrollment.Record
	if err := c.call(ctx, sess, "list-pending-enrollments", http.MethodGet, "/api/enrollments/pending", nil, &out, "Failed to fetch pending enrollments"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApproveEnrollment(ctx context.Context, sess *session.Session, id int64, notes string) (*enrollment.Record, error) {
	return c.decide(ctx, sess, "approve-enrollment", fmt.Sprintf("/api/enrollments/%d/approve", id), notes, "Failed to approve enrollment")
}

func (c *Client) DeclineEnrollment(ctx context.Context, sess *session.Session, id int64, notes string) (*enrollment.Record, error) {
	return c.decide(ctx, sess, "decline-enrollment", fmt.Sprintf("/api/enrollments/%d/decline", id), notes, "Failed to decline enrollment")
}

// decide sends the admin notes as a bare JSON string, and no body at all when empty.
func (c *Client) decide(ctx context.Context, sess *session.Session, op, path, notes, fallback string) (*enrollment.Record, error) {
	var body any
	if notes != "" {
		b, err := json.Marshal(notes)
		if err != nil {
			return nil, err
		}
		body = b
	}
	var out enrollment.Record
	if err := c.call(ctx, sess, op, http.MethodPut, path, body, &out, fallback); err != nil {
		return nil, err
	}
	return &out, nil
}
