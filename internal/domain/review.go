package domain

import "context"

// UploadResult is the response body of POST /upload-csv. Contacts holds the
// preview only (first PreviewLimit contacts).
type UploadResult struct {
	SessionID      string         `json:"session_id"`
	TotalContacts  int            `json:"total_contacts"`
	Skipped        int            `json:"skipped"`
	SkippedReasons map[string]int `json:"skipped_reasons,omitempty"`
	Contacts       []Contact      `json:"contacts"`
}

// ReviewRequest is the body of POST /review-contact
type ReviewRequest struct {
	SessionID        string `json:"session_id" binding:"required"`
	ContactIndex     int    `json:"contact_index" binding:"min=0"`
	AddToMailingList bool   `json:"add_to_mailing_list"`
	AddToCRM         bool   `json:"add_to_crm"`
}

// ReviewResult reports the per-target outcome of one review call. Results
// only contains entries for the targets that were requested.
type ReviewResult struct {
	Contact   Contact         `json:"contact"`
	Results   map[Target]bool `json:"results"`
	Processed bool            `json:"processed"`
}

// SessionContacts is the response body of GET /contacts/:session_id
type SessionContacts struct {
	SessionID     string    `json:"session_id"`
	TotalContacts int       `json:"total_contacts"`
	Contacts      []Contact `json:"contacts"`
}

// IngestUsecase turns an uploaded CSV payload into a review session
type IngestUsecase interface {
	Ingest(ctx context.Context, filename string, data []byte) (*UploadResult, error)
}

// ReviewUsecase resolves a contact, dispatches it to the requested targets
// and records the outcomes. It keeps no per-caller cursor: the caller owns
// its "current index" and bounds are re-checked on every call.
type ReviewUsecase interface {
	Review(ctx context.Context, req *ReviewRequest) (*ReviewResult, error)
	ListContacts(ctx context.Context, sessionID string) (*SessionContacts, error)
}
