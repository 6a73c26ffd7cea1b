package gateway

import (
	"net/http"
	"strings"
	"time"

	"go-contact-review-backend/internal/domain"
)

// DefaultTimeout bounds every outbound enrollment call. A slow remote makes
// that one dispatch fail; it never aborts sibling requests.
const DefaultTimeout = 10 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// firstNameOf falls back to the first token of the full name when the
// dedicated first_name column was absent.
func firstNameOf(c *domain.Contact) string {
	if c.FirstName != "" {
		return c.FirstName
	}
	parts := strings.Fields(c.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// lastNameOf falls back to everything after the first token; empty when the
// full name is a single token.
func lastNameOf(c *domain.Contact) string {
	if c.LastName != "" {
		return c.LastName
	}
	parts := strings.Fields(c.Name)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}
