package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Syntactic check only: local part with letters/digits/._%+-, a domain with
	// at least one dot, and a TLD of two or more letters. Deliverability is not
	// verified here.
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("linkedin_url", LinkedInURL)
}

// ValidEmail validates the syntactic shape of an email address
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// LinkedInURL validates that a string field points at a LinkedIn profile.
// Empty values pass; combine with required when the field is mandatory.
func LinkedInURL(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return ValidLinkedInURL(val)
}

// ValidLinkedInURL reports whether the URL belongs to linkedin.com
func ValidLinkedInURL(url string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(url)), "linkedin.com")
}

// NormalizeLinkedInURL trims the value, drops the query string (tracking
// parameters) and enforces an https:// scheme. Applying it twice yields the
// same result as applying it once.
func NormalizeLinkedInURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}

	// Remove tracking parameters
	if idx := strings.Index(url, "?"); idx >= 0 {
		url = url[:idx]
	}

	// Ensure it starts with https://
	if !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}

	return url
}
