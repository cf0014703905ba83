package policy

import "strings"

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// ParseStatus normalizes raw; anything unrecognized is returned as-is (uppercased).
func ParseStatus(raw string) Status { return Status(strings.ToUpper(strings.TrimSpace(raw))) }

// Listed reports whether customers see t: templates without a status count as active.
func Listed(t Template) bool {
	return t.PolicyStatus == "" || ParseStatus(t.PolicyStatus) == StatusActive
}

// Template is an admin-defined policy template. Customers only see the public
// projection served from /api/policies/public, which carries the same fields.
type Template struct {
	PolicyID       int64   `json:"policyId"`
	PolicyNumber   string  `json:"policyNumber"`
	VehicleType    string  `json:"vehicleType,omitempty"`
	VehicleDetails string  `json:"vehicleDetails,omitempty"`
	CoverageType   string  `json:"coverageType"`
	CoverageAmount float64 `json:"coverageAmount"`
	PremiumAmount  float64 `json:"premiumAmount"`
	StartDate      string  `json:"startDate,omitempty"`
	EndDate        string  `json:"endDate,omitempty"`
	PolicyStatus   string  `json:"policyStatus,omitempty"`
}

// Input is the admin create/update payload.
type Input struct {
	PolicyNumber   string  `json:"policyNumber"`
	VehicleType    string  `json:"vehicleType"`
	CoverageType   string  `json:"coverageType"`
	CoverageAmount float64 `json:"coverageAmount"`
	PremiumAmount  float64 `json:"premiumAmount"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	PolicyStatus   Status  `json:"policyStatus"`
}
