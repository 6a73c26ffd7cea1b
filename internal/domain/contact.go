package domain

import (
	"errors"
	"strings"

	"go-contact-review-backend/pkg/validation"
)

// Source CSV column headers. The LinkedIn column is the exact header exported
// by the signup form, so it is matched verbatim.
const (
	ColumnName      = "name"
	ColumnEmail     = "email"
	ColumnLinkedIn  = "What is your LinkedIn profile?"
	ColumnFirstName = "first_name"
	ColumnLastName  = "last_name"
)

// Row-level rejection reasons. Rejected rows are dropped during ingestion;
// these sentinels only feed the aggregate skip counters.
var (
	ErrMissingName     = errors.New("name is empty")
	ErrMissingEmail    = errors.New("email is empty")
	ErrMissingLinkedIn = errors.New("linkedin url is empty")
	ErrInvalidEmail    = errors.New("email format is invalid")
	ErrNotLinkedIn     = errors.New("url is not a linkedin profile")
)

// Contact is one validated spreadsheet row. A Contact is only ever created
// through NewContact, so an existing value is always well-formed: name and
// email are non-empty and trimmed, and LinkedInURL is normalized and points
// at linkedin.com.
type Contact struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	LinkedInURL string `json:"linkedin_url" validate:"required,linkedin_url"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
}

// RawRow holds the recognized columns of one data row before validation.
// Missing columns are empty strings.
type RawRow struct {
	Name        string
	Email       string
	LinkedInURL string
	FirstName   string
	LastName    string
}

// NewContact classifies a raw row as a well-formed contact or rejects it.
// Checks run in a fixed order so the returned reason is deterministic; all
// checks are mandatory, so ordering only affects diagnostics.
func NewContact(row RawRow) (*Contact, error) {
	name := strings.TrimSpace(row.Name)
	email := strings.TrimSpace(row.Email)
	linkedin := validation.NormalizeLinkedInURL(row.LinkedInURL)

	if name == "" {
		return nil, ErrMissingName
	}
	if email == "" {
		return nil, ErrMissingEmail
	}
	if linkedin == "" {
		return nil, ErrMissingLinkedIn
	}
	if !validation.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.ValidLinkedInURL(linkedin) {
		return nil, ErrNotLinkedIn
	}

	// Optional fields: empty after trim means absent.
	return &Contact{
		Name:        name,
		Email:       email,
		LinkedInURL: linkedin,
		FirstName:   strings.TrimSpace(row.FirstName),
		LastName:    strings.TrimSpace(row.LastName),
	}, nil
}
