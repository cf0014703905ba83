package enrollment

import (
	"regexp"
	"strings"

	"insurance-portal/internal/usecase/form"
)

var (
	rePlate = regexp.MustCompile(`(?i)license[:\s]*([a-z0-9-]+)|plate[:\s]*([a-z0-9-]+)|([a-z]{2,3}[\s-]?\d{3,4}[a-z]?)`)
	reVIN   = regexp.MustCompile(`(?i)vin[:\s]*([a-z0-9]{17})|([a-z0-9]{17})`)
	reYear  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Identifiers are the vehicle ids found in free-text details, lowercased.
type Identifiers struct {
	LicensePlate string `json:"licensePlate,omitempty"`
	VIN          string `json:"vin,omitempty"`
}

// ExtractVehicleIdentifiers pulls the first license plate and VIN out of details.
func ExtractVehicleIdentifiers(details string) Identifiers {
	d := strings.ToLower(details)
	return Identifiers{
		LicensePlate: firstGroup(rePlate.FindStringSubmatch(d)),
		VIN:          firstGroup(reVIN.FindStringSubmatch(d)),
	}
}

func firstGroup(m []string) string {
	for _, g := range m[min(1, len(m)):] {
		if g != "" {
			return g
		}
	}
	return ""
}

// ValidateVehicleDetails requires a plate or VIN and a model year.
func ValidateVehicleDetails(details string) error {
	if strings.TrimSpace(details) == "" {
		return form.Invalid("Vehicle details are required")
	}
	var c form.Checker
	ids := ExtractVehicleIdentifiers(details)
	c.Require(ids.LicensePlate != "" || ids.VIN != "", "Please include either license plate or VIN number")
	c.Require(reYear.MatchString(strings.ToLower(details)), "Please include the vehicle year")
	return c.Err()
}
