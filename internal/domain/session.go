package domain

import (
	"context"
	"errors"
	"time"
)

// Target identifies one of the external enrollment destinations.
type Target string

const (
	TargetMailingList Target = "mailing_list"
	TargetCRM         Target = "crm"
)

var (
	ErrSessionNotFound = errors.New("review session not found")
	ErrContactIndex    = errors.New("contact index out of range")
)

// ReviewSession is one CSV upload: its validated contacts in row order plus
// the dispatch history recorded so far. Contacts are immutable after creation;
// the dispatch log is the only thing that mutates, and a re-dispatch of the
// same (index, target) pair overwrites the previous outcome.
type ReviewSession struct {
	SessionID   string
	Contacts    []Contact
	DispatchLog map[int]map[Target]bool
	CreatedAt   time.Time
}

// SessionRepository is the process-wide registry of review sessions. All
// operations must be safe under concurrent callers; implementations never
// hold a lock across a network call.
type SessionRepository interface {
	// Create inserts a new session and returns its generated id.
	Create(ctx context.Context, contacts []Contact) (string, error)
	// Get returns a snapshot of the session, or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*ReviewSession, error)
	// GetContact resolves one contact. ErrSessionNotFound for unknown ids,
	// ErrContactIndex when index is outside [0, len(contacts)).
	GetContact(ctx context.Context, sessionID string, index int) (*Contact, error)
	// RecordOutcome writes the dispatch outcome for (index, target),
	// overwriting any prior entry for the same pair.
	RecordOutcome(ctx context.Context, sessionID string, index int, target Target, ok bool) error
	// Len reports how many sessions are currently live.
	Len(ctx context.Context) (int, error)
	Close() error
}

// Enroller pushes a validated contact into one external target service.
// Enroll fails closed: missing credentials, transport errors and remote
// rejections all collapse to false.
type Enroller interface {
	Target() Target
	Configured() bool
	Enroll(ctx context.Context, contact *Contact) bool
}
