package auth

import (
	"regexp"

	"insurance-portal/internal/domain/user"
	"insurance-portal/internal/usecase/form"
)

var (
	lettersOnly = regexp.MustCompile(`^[A-Za-z]+$`)
	gmailOnly   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._%+-]{2,}@gmail\.com$`)
	hasUpper    = regexp.MustCompile(`[A-Z]`)
	hasLower    = regexp.MustCompile(`[a-z]`)
	hasDigit    = regexp.MustCompile(`[0-9]`)
	hasSpecial  = regexp.MustCompile(`[@$!%*?&]`)
)

// ValidateRegistration stops at the first failing rule, in form order.
func ValidateRegistration(in user.RegisterInput) error {
	if msg := firstProblem(in); msg != "" {
		return form.Invalid(msg)
	}
	return nil
}

func firstProblem(in user.RegisterInput) string {
	switch {
	case in.FirstName == "":
		return "First name is required."
	case len(in.FirstName) < 2:
		return "First name must be at least 2 characters long."
	case !lettersOnly.MatchString(in.FirstName):
		return "First name must contain only alphabets"
	case in.LastName == "":
		return "Last name is required."
	case len(in.LastName) < 2:
		return "Last name must be at least 2 characters long."
	case !lettersOnly.MatchString(in.LastName):
		return "Last name must contain only alphabets"
	case len(in.Username) < 3 || len(in.Username) > 20:
		return "Username must be 3-20 characters long"
	case !strongPassword(in.Password):
		return "Password must have 8 characters and include uppercase, lowercase, number, and special character."
	case !gmailOnly.MatchString(in.Email):
		return "Enter a valid email address"
	case in.IncomePerAnnum != nil && *in.IncomePerAnnum < 0:
		return "Income per annum cannot be negative"
	}
	return ""
}

func strongPassword(p string) bool {
	return len(p) >= 8 && len(p) <= 20 &&
		hasUpper.MatchString(p) && hasLower.MatchString(p) &&
		hasDigit.MatchString(p) && hasSpecial.MatchString(p)
}
