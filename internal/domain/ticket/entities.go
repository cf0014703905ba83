package ticket

import (
	"errors"

	"insurance-portal/internal/domain/workflow"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

var ErrResolved = errors.New("ticket is already resolved")

// Machine mirrors the backend lifecycle. The portal itself only ever moves a ticket
// to RESOLVED.
var Machine = workflow.New(StatusOpen,
	map[Status][]Status{
		StatusOpen:       {StatusInProgress, StatusResolved},
		StatusInProgress: {StatusResolved},
		StatusResolved:   {StatusClosed},
		StatusClosed:     {},
	},
	nil,
)

// IsResolved is true for RESOLVED and CLOSED.
func IsResolved(status string) bool {
	s, _ := Machine.Parse(status)
	return s == StatusResolved || s == StatusClosed
}

// IsOpen is true for OPEN and IN_PROGRESS.
func IsOpen(status string) bool {
	s, _ := Machine.Parse(status)
	return s == StatusOpen || s == StatusInProgress
}

type Record struct {
	TicketID            *int64 `json:"ticketId,omitempty"`
	ID                  *int64 `json:"id,omitempty"`
	TicketNumber        string `json:"ticketNumber,omitempty"`
	IssueDescription    string `json:"issueDescription,omitempty"`
	TicketStatus        string `json:"ticketStatus,omitempty"`
	Status              string `json:"status,omitempty"`
	CreatedDate         string `json:"createdDate,omitempty"`
	CreatedAt           string `json:"createdAt,omitempty"`
	ResolvedDate        string `json:"resolvedDate,omitempty"`
	ResolvedAt          string `json:"resolvedAt,omitempty"`
	FirstName           string `json:"firstName,omitempty"`
	LastName            string `json:"lastName,omitempty"`
	CustomerUsername    string `json:"customerUsername,omitempty"`
	CustomerEmail       string `json:"customerEmail,omitempty"`
	ResolvedByAdminName string `json:"resolvedByAdminName,omitempty"`
	ResolvedByUsername  string `json:"resolvedByUsername,omitempty"`
	ResolutionNotes     string `json:"resolutionNotes,omitempty"`
	Resolution          string `json:"resolution,omitempty"`
	PolicyEnrollmentID  *int64 `json:"policyEnrollmentId,omitempty"`
	PolicyNumber        string `json:"policyNumber,omitempty"`
	ClaimID             *int64 `json:"claimId,omitempty"`
}

func (r Record) Identifier() int64 {
	switch {
	case r.TicketID != nil:
		return *r.TicketID
	case r.ID != nil:
		return *r.ID
	}
	return 0
}

func (r Record) CurrentStatus() string {
	switch {
	case r.TicketStatus != "":
		return r.TicketStatus
	case r.Status != "":
		return r.Status
	}
	return string(StatusOpen)
}

type CreateInput struct {
	IssueDescription   string `json:"issueDescription"`
	PolicyEnrollmentID *int64 `json:"policyEnrollmentId"`
	ClaimID            *int64 `json:"claimId"`
}

type ResolveInput struct {
	ResolutionNotes string `json:"resolutionNotes"`
}
