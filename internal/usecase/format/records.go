package format

import (
	"fmt"
	"path"
	"strings"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/enrollment"
	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/ticket"
	"insurance-portal/internal/domain/user"
)

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type ClaimView struct {
	ClaimID            int64    `json:"claimId"`
	PolicyEnrollmentID int64    `json:"policyEnrollmentId"`
	PolicyNumber       string   `json:"policyNumber"`
	CustomerName       string   `json:"customerName"`
	CustomerID         string   `json:"customerId"`
	CustomerEmail      string   `json:"customerEmail"`
	ClaimAmount        float64  `json:"claimAmount"`
	AmountLabel        string   `json:"amountLabel"`
	ClaimDescription   string   `json:"claimDescription"`
	Status             string   `json:"status"`
	SubmittedDate      string   `json:"submittedDate,omitempty"`
	ProcessedDate      string   `json:"processedDate,omitempty"`
	SettledDate        string   `json:"settledDate,omitempty"`
	AdminNotes         string   `json:"adminNotes"`
	AdminUsername      string   `json:"adminUsername"`
	Final              bool     `json:"final"`
	Transitions        []string `json:"transitions"`
}

func Claim(r claim.Record) ClaimView {
	amount := 0.0
	if r.ClaimAmount != nil {
		amount = *r.ClaimAmount
	}
	status := r.CurrentStatus()
	next := claim.AvailableTransitions(status)
	transitions := make([]string, len(next))
	for i, s := range next {
		transitions[i] = string(s)
	}
	return ClaimView{
		ClaimID:            r.Identifier(),
		PolicyEnrollmentID: r.PolicyEnrollmentID,
		PolicyNumber:       firstNonEmpty(r.GeneratedPolicyNumber, r.PolicyNumber, fmt.Sprintf("POL-%d", r.PolicyEnrollmentID)),
		CustomerName:       firstNonEmpty(r.CustomerUsername, r.CustomerName, "Unknown Customer"),
		CustomerID:         firstNonEmpty(r.CustomerUsername, r.CustomerEmail, "Unknown ID"),
		CustomerEmail:      r.CustomerEmail,
		ClaimAmount:        amount,
		AmountLabel:        Currency(amount),
		ClaimDescription:   r.ClaimDescription,
		Status:             status,
		SubmittedDate:      firstNonEmpty(r.ClaimDate, r.SubmittedDate, r.CreatedDate),
		ProcessedDate:      firstNonEmpty(r.ProcessedDate, r.UpdatedDate),
		SettledDate:        r.SettledDate,
		AdminNotes:         r.AdminNotes,
		AdminUsername:      r.AdminUsername,
		Final:              claim.IsStatusFinal(status),
		Transitions:        transitions,
	}
}

type TicketView struct {
	TicketID            int64  `json:"ticketId"`
	TicketNumber        string `json:"ticketNumber"`
	IssueDescription    string `json:"issueDescription"`
	Status              string `json:"status"`
	CreatedDate         string `json:"createdDate,omitempty"`
	ResolvedDate        string `json:"resolvedDate,omitempty"`
	CustomerName        string `json:"customerName"`
	CustomerUsername    string `json:"customerUsername"`
	CustomerEmail       string `json:"customerEmail,omitempty"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	ResolvedByAdminName string `json:"resolvedByAdminName,omitempty"`
	ResolutionNotes     string `json:"resolutionNotes"`
	PolicyEnrollmentID  *int64 `json:"policyEnrollmentId,omitempty"`
	PolicyNumber        string `json:"policyNumber,omitempty"`
	ClaimID             *int64 `json:"claimId,omitempty"`
	Resolved            bool   `json:"resolved"`
}

func Ticket(r ticket.Record) TicketView {
	id := r.Identifier()
	return TicketView{
		TicketID:            id,
		TicketNumber:        firstNonEmpty(r.TicketNumber, fmt.Sprintf("TICK-%d", id)),
		IssueDescription:    r.IssueDescription,
		Status:              r.CurrentStatus(),
		CreatedDate:         firstNonEmpty(r.CreatedDate, r.CreatedAt),
		ResolvedDate:        firstNonEmpty(r.ResolvedDate, r.ResolvedAt),
		CustomerName:        CustomerDisplayName(r.FirstName, r.LastName, r.CustomerUsername),
		CustomerUsername:    r.CustomerUsername,
		CustomerEmail:       r.CustomerEmail,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		ResolvedByAdminName: firstNonEmpty(r.ResolvedByAdminName, r.ResolvedByUsername),
		ResolutionNotes:     firstNonEmpty(r.ResolutionNotes, r.Resolution),
		PolicyEnrollmentID:  r.PolicyEnrollmentID,
		PolicyNumber:        r.PolicyNumber,
		ClaimID:             r.ClaimID,
		Resolved:            ticket.IsResolved(r.CurrentStatus()),
	}
}

// CustomerDisplayName is "First Last (username)", degrading to whichever parts exist.
func CustomerDisplayName(first, last, username string) string {
	handle := firstNonEmpty(username, "Unknown")
	switch {
	case first != "" && last != "":
		return fmt.Sprintf("%s %s (%s)", first, last, handle)
	case first != "":
		return fmt.Sprintf("%s (%s)", first, handle)
	case last != "":
		return fmt.Sprintf("%s (%s)", last, handle)
	}
	return firstNonEmpty(username, "Unknown Customer")
}

type UserView struct {
	UserID          int64   `json:"userId"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	DisplayName     string  `json:"displayName"`
	Role            string  `json:"role"`
	IncomePerAnnum  float64 `json:"incomePerAnnum"`
	IncomeLabel     string  `json:"incomeLabel"`
	IDProofFilePath *string `json:"idProofFilePath"`
	IDProofFilename string  `json:"idProofFilename"`
	IDProofIcon     string  `json:"idProofIcon"`
	Avatar          string  `json:"avatar"`
}

func User(a user.Account) UserView {
	role := firstNonEmpty(strings.ToUpper(a.Role), string(user.RoleCustomer))
	var proof string
	if a.IDProofFilePath != nil {
		proof = *a.IDProofFilePath
	}
	return UserView{
		UserID:          a.Identifier(),
		Username:        a.Username,
		Email:           a.Email,
		FirstName:       a.First(),
		LastName:        a.Last(),
		DisplayName:     DisplayName(a),
		Role:            role,
		IncomePerAnnum:  a.IncomePerAnnum,
		IncomeLabel:     Income(a.IncomePerAnnum),
		IDProofFilePath: a.IDProofFilePath,
		IDProofFilename: IDProofFilename(proof),
		IDProofIcon:     IDProofIcon(proof),
		Avatar:          Avatar(a.Username),
	}
}

// DisplayName prefers the full name, then username, then email.
func DisplayName(a user.Account) string {
	first, last := a.First(), a.Last()
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return firstNonEmpty(a.Username, a.Email, "Unknown User")
}

func Avatar(username string) string {
	if username == "" {
		return "👤"
	}
	return strings.ToUpper(username[:1])
}

func IDProofFilename(filePath string) string {
	if filePath == "" {
		return "No ID proof uploaded"
	}
	base := path.Base(filePath)
	if base == "." || base == "/" {
		return "Unknown file"
	}
	return base
}

func IDProofIcon(filePath string) string {
	if filePath == "" {
		return "📄"
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(filePath), ".")) {
	case "pdf":
		return "📋"
	case "jpg", "jpeg", "png":
		return "🖼️"
	}
	return "📄"
}

type EnrollmentView struct {
	EnrollmentID          int64   `json:"enrollmentId"`
	PolicyTemplateID      int64   `json:"policyTemplateId"`
	PolicyTemplateNumber  string  `json:"policyTemplateNumber"`
	CustomerName          string  `json:"customerName"`
	CustomerEmail         string  `json:"customerEmail"`
	VehicleDetails        string  `json:"vehicleDetails"`
	Status                string  `json:"status"`
	GeneratedPolicyNumber string  `json:"generatedPolicyNumber,omitempty"`
	AdminNotes            string  `json:"adminNotes,omitempty"`
	EnrolledDate          string  `json:"enrolledDate,omitempty"`
	DecidedDate           string  `json:"decidedDate,omitempty"`
	CoverageType          string  `json:"coverageType"`
	CoverageLabel         string  `json:"coverageLabel"`
	PremiumLabel          string  `json:"premiumLabel"`
	CoverageAmount        float64 `json:"coverageAmount"`
	PremiumAmount         float64 `json:"premiumAmount"`
	Decided               bool    `json:"decided"`
}

func Enrollment(r enrollment.Record) EnrollmentView {
	v := EnrollmentView{
		EnrollmentID:         r.EnrollmentID,
		PolicyTemplateID:     r.PolicyTemplateID,
		PolicyTemplateNumber: r.PolicyTemplateNumber,
		CustomerName:         firstNonEmpty(r.CustomerName, "Unknown Customer"),
		CustomerEmail:        r.CustomerEmail,
		VehicleDetails:       r.VehicleDetails,
		Status:               string(r.Status()),
		AdminNotes:           r.AdminNotes,
		EnrolledDate:         r.EnrolledDate,
		DecidedDate:          firstNonEmpty(r.ApprovedDate, r.DeclinedDate),
		CoverageType:         r.CoverageType,
		CoverageLabel:        Currency(r.CoverageAmount),
		PremiumLabel:         Currency(r.PremiumAmount),
		CoverageAmount:       r.CoverageAmount,
		PremiumAmount:        r.PremiumAmount,
		Decided:              enrollment.IsDecided(r.EnrollmentStatus),
	}
	if r.GeneratedPolicyNumber != nil {
		v.GeneratedPolicyNumber = *r.GeneratedPolicyNumber
	}
	return v
}

type PolicyView struct {
	policy.Template
	CoverageLabel string `json:"coverageLabel"`
	PremiumLabel  string `json:"premiumLabel"`
	Active        bool   `json:"active"`
	Period        string `json:"period"`
}

func Policy(t policy.Template) PolicyView {
	return PolicyView{
		Template:      t,
		CoverageLabel: Currency(t.CoverageAmount),
		PremiumLabel:  Currency(t.PremiumAmount),
		Active:        policy.ParseStatus(t.PolicyStatus) == policy.StatusActive,
		Period:        Date(t.StartDate) + " – " + Date(t.EndDate),
	}
}

// TemplateCard is the customer-facing card for a public policy template.
type TemplateCard struct {
	ID             int64    `json:"id"`
	PolicyID       int64    `json:"policyId"`
	Name           string   `json:"name"`
	CoverageType   string   `json:"coverageType"`
	Description    string   `json:"description"`
	Features       []string `json:"features"`
	BasePrice      string   `json:"basePrice"`
	CoverageAmount string   `json:"coverageAmount"`
	Category       string   `json:"category"`
	PolicyNumber   string   `json:"policyNumber"`
	VehicleDetails string   `json:"vehicleDetails,omitempty"`
	PremiumAmount  float64  `json:"premiumAmount"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
}

var featuresByCoverage = map[string][]string{
	"Comprehensive":     {"Own Damage Cover", "Third Party Liability", "Theft Protection", "Natural Disasters"},
	"Third Party":       {"Third Party Liability", "Legal Compliance", "Bodily Injury Cover", "Property Damage"},
	"Zero Depreciation": {"Zero Depreciation", "Complete Part Replacement", "Higher Claim Amount"},
	"Own Damage":        {"Own Damage Cover", "Accidental Damage", "Natural Calamities"},
	"Personal Accident": {"Accidental Death", "Disability Benefits", "Medical Expenses"},
}

func Template(t policy.Template) TemplateCard {
	return TemplateCard{
		ID:             t.PolicyID,
		PolicyID:       t.PolicyID,
		Name:           t.CoverageType + " Template",
		CoverageType:   t.CoverageType,
		Description:    t.CoverageType + " policy template with comprehensive coverage.",
		Features:       Features(t.CoverageType),
		BasePrice:      Currency(t.PremiumAmount),
		CoverageAmount: Currency(t.CoverageAmount),
		Category:       Category(t.CoverageType),
		PolicyNumber:   t.PolicyNumber,
		VehicleDetails: t.VehicleDetails,
		PremiumAmount:  t.PremiumAmount,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
	}
}

func Features(coverageType string) []string {
	if f, ok := featuresByCoverage[coverageType]; ok {
		return append([]string(nil), f...)
	}
	return []string{"Standard Coverage", "Legal Protection"}
}

func Category(coverageType string) string {
	c := strings.ToLower(coverageType)
	switch {
	case strings.Contains(c, "bike"):
		return "Bike"
	case strings.Contains(c, "commercial"):
		return "Commercial"
	case strings.Contains(c, "personal"):
		return "Personal"
	}
	return "Car"
}
