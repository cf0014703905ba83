package claim

import (
	"errors"

	"insurance-portal/internal/domain/workflow"
)

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"

	// legacy server values, treated as OPEN
	StatusSubmitted Status = "SUBMITTED"
	StatusPending   Status = "PENDING"
)

var (
	ErrNotApprovedEnrollment = errors.New("claims can only be filed against an approved enrollment")
	ErrInvalidTransition     = errors.New("claim status transition not allowed")
	ErrFinal                 = errors.New("claim is already in a final state")
)

// Machine: OPEN -> {APPROVED, REJECTED}; APPROVED and REJECTED are terminal.
var Machine = workflow.New(StatusOpen,
	map[Status][]Status{
		StatusOpen:     {StatusApproved, StatusRejected},
		StatusApproved: {},
		StatusRejected: {},
	},
	map[string]Status{
		string(StatusSubmitted): StatusOpen,
		string(StatusPending):   StatusOpen,
	},
)

// AvailableTransitions returns the statuses an admin may move a claim to. The input is
// uppercased and trimmed; unknown or terminal statuses yield an empty slice.
func AvailableTransitions(status string) []Status { return Machine.Transitions(status) }

// IsStatusFinal is true iff status is exactly APPROVED or REJECTED.
func IsStatusFinal(status string) bool {
	s := Status(status)
	return s == StatusApproved || s == StatusRejected
}

// IsOpen reports whether status counts as an open claim (OPEN or a legacy alias).
func IsOpen(status string) bool {
	switch Status(status) {
	case StatusOpen, StatusSubmitted, StatusPending:
		return true
	}
	return false
}

// Record is a claim as returned by the remote API. Several fields have older
// spellings that the backend still emits; the formatter picks whichever is set.
type Record struct {
	ClaimID               *int64   `json:"claimId,omitempty"`
	ID                    *int64   `json:"id,omitempty"`
	PolicyEnrollmentID    int64    `json:"policyEnrollmentId"`
	GeneratedPolicyNumber string   `json:"generatedPolicyNumber,omitempty"`
	PolicyNumber          string   `json:"policyNumber,omitempty"`
	CustomerUsername      string   `json:"customerUsername,omitempty"`
	CustomerName          string   `json:"customerName,omitempty"`
	CustomerEmail         string   `json:"customerEmail,omitempty"`
	ClaimAmount           *float64 `json:"claimAmount,omitempty"`
	ClaimDescription      string   `json:"claimDescription,omitempty"`
	ClaimStatus           string   `json:"claimStatus,omitempty"`
	Status                string   `json:"status,omitempty"`
	ClaimDate             string   `json:"claimDate,omitempty"`
	SubmittedDate         string   `json:"submittedDate,omitempty"`
	CreatedDate           string   `json:"createdDate,omitempty"`
	ProcessedDate         string   `json:"processedDate,omitempty"`
	UpdatedDate           string   `json:"updatedDate,omitempty"`
	SettledDate           string   `json:"settledDate,omitempty"`
	AdminNotes            string   `json:"adminNotes,omitempty"`
	AdminUsername         string   `json:"adminUsername,omitempty"`
}

// Identifier returns claimId, falling back to id.
func (r Record) Identifier() int64 {
	switch {
	case r.ClaimID != nil:
		return *r.ClaimID
	case r.ID != nil:
		return *r.ID
	}
	return 0
}

// CurrentStatus returns claimStatus, then status, then OPEN.
func (r Record) CurrentStatus() string {
	switch {
	case r.ClaimStatus != "":
		return r.ClaimStatus
	case r.Status != "":
		return r.Status
	}
	return string(StatusOpen)
}

type SubmitInput struct {
	PolicyEnrollmentID int64   `json:"policyEnrollmentId"`
	ClaimAmount        float64 `json:"claimAmount"`
	ClaimDescription   string  `json:"claimDescription,omitempty"`
}

type StatusUpdate struct {
	ClaimStatus Status `json:"claimStatus"`
	AdminNotes  string `json:"adminNotes,omitempty"`
}
