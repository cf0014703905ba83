package enrollment

import (
	"errors"

	"insurance-portal/internal/domain/workflow"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
)

var (
	ErrNotFound = errors.New("enrollment not found")
	ErrDecided  = errors.New("enrollment has already been decided")
)

// Machine: PENDING -> {APPROVED, DECLINED}; both outcomes are terminal.
var Machine = workflow.New(StatusPending,
	map[Status][]Status{
		StatusPending:  {StatusApproved, StatusDeclined},
		StatusApproved: {},
		StatusDeclined: {},
	},
	nil,
)

// IsDecided reports whether approve/decline should no longer be offered.
func IsDecided(status string) bool { return Machine.IsTerminal(status) }

type Record struct {
	EnrollmentID          int64   `json:"enrollmentId"`
	PolicyTemplateID      int64   `json:"policyTemplateId"`
	PolicyTemplateNumber  string  `json:"policyTemplateNumber,omitempty"`
	CustomerID            *int64  `json:"customerId,omitempty"`
	CustomerName          string  `json:"customerName,omitempty"`
	CustomerEmail         string  `json:"customerEmail,omitempty"`
	VehicleDetails        string  `json:"vehicleDetails,omitempty"`
	EnrollmentStatus      string  `json:"enrollmentStatus"`
	GeneratedPolicyNumber *string `json:"generatedPolicyNumber,omitempty"`
	AdminNotes            string  `json:"adminNotes,omitempty"`
	EnrolledDate          string  `json:"enrolledDate,omitempty"`
	ApprovedDate          string  `json:"approvedDate,omitempty"`
	DeclinedDate          string  `json:"declinedDate,omitempty"`
	CoverageType          string  `json:"coverageType,omitempty"`
	CoverageAmount        float64 `json:"coverageAmount,omitempty"`
	PremiumAmount         float64 `json:"premiumAmount,omitempty"`
}

// Status returns the parsed status, PENDING when the server sent none.
func (r Record) Status() Status { return Machine.Canonical(r.EnrollmentStatus) }

type EnrollInput struct {
	VehicleDetails string `json:"vehicleDetails"`
	EnrollmentDate string `json:"enrollmentDate"`
}

// Eligibility is the server's answer to "may I enroll in this template".
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}
