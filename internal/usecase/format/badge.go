package format

import (
	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/ticket"
)

type BadgeStyle struct {
	Background string `json:"backgroundColor"`
	Color      string `json:"color"`
	Border     string `json:"border"`
}

type BadgeKind string

const (
	BadgeClaim      BadgeKind = "claim"
	BadgeTicket     BadgeKind = "ticket"
	BadgeEnrollment BadgeKind = "enrollment"
	BadgeRole       BadgeKind = "role"
	BadgePolicy     BadgeKind = "policy"
)

var (
	blue   = BadgeStyle{"#e3f2fd", "#1976d2", "1px solid #bbdefb"}
	green  = BadgeStyle{"#d4edda", "#155724", "1px solid #c3e6cb"}
	red    = BadgeStyle{"#f8d7da", "#721c24", "1px solid #f5c6cb"}
	yellow = BadgeStyle{"#fff3cd", "#856404", "1px solid #ffeeba"}
	grey   = BadgeStyle{"#f8f9fa", "#6c757d", "1px solid #dee2e6"}
	teal   = BadgeStyle{"#d1ecf1", "#0c5460", "1px solid #bee5eb"}

	adminRole    = BadgeStyle{"#dc3545", "white", "1px solid #dc3545"}
	customerRole = BadgeStyle{"#007bff", "white", "1px solid #007bff"}
)

// Badge picks the style for status within kind. Statuses go through the same parser
// as the transition tables, so legacy aliases share their canonical state's style.
func Badge(kind BadgeKind, status string) BadgeStyle {
	switch kind {
	case BadgeClaim:
		s, _ := claim.Machine.Parse(status)
		switch s {
		case claim.StatusApproved:
			return green
		case claim.StatusRejected:
			return red
		case "UNDER_REVIEW":
			return yellow
		case "SETTLED":
			return teal
		case "CANCELLED":
			return grey
		}
		return blue
	case BadgeTicket:
		s, _ := ticket.Machine.Parse(status)
		switch s {
		case ticket.StatusInProgress:
			return yellow
		case ticket.StatusResolved:
			return green
		case ticket.StatusClosed:
			return grey
		}
		return blue
	case BadgeEnrollment:
		s, _ := enrollment.Machine.Parse(status)
		switch s {
		case enrollment.StatusApproved:
			return green
		case enrollment.StatusDeclined:
			return red
		}
		return yellow
	case BadgeRole:
		if status == "ADMIN" || status == "admin" {
			return adminRole
		}
		return customerRole
	case BadgePolicy:
		if status == "ACTIVE" {
			return green
		}
		return red
	}
	return blue
}
