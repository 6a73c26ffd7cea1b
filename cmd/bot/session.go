package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go-contact-review-backend/internal/domain"
)

// Button callback actions
const (
	actionMailingList = "mailing"
	actionCRM         = "crm"
	actionBoth        = "both"
	actionSkip        = "skip"
)

// reviewState is one chat's position within a backend session. The backend
// re-validates index bounds on every call, so this is bookkeeping only.
type reviewState struct {
	SessionID string
	Total     int
	Current   int
}

func (s *reviewState) done() bool {
	return s.Current >= s.Total
}

// sessionTracker maps chat ids to their active review
type sessionTracker struct {
	mu     sync.Mutex
	byChat map[int64]*reviewState
}

func newSessionTracker() *sessionTracker {
	return &sessionTracker{byChat: make(map[int64]*reviewState)}
}

func (t *sessionTracker) get(chatID int64) (*reviewState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byChat[chatID]
	return s, ok
}

func (t *sessionTracker) start(chatID int64, sessionID string, total int) *reviewState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := &reviewState{SessionID: sessionID, Total: total}
	t.byChat[chatID] = s
	return s
}

func (t *sessionTracker) drop(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byChat, chatID)
}

// callbackData encodes an action button for one contact index
func callbackData(action string, index int) string {
	return fmt.Sprintf("%s_%d", action, index)
}

// parseCallback splits button data back into action and contact index
func parseCallback(data string) (action string, index int, err error) {
	action, idxStr, found := strings.Cut(data, "_")
	if !found {
		return "", 0, fmt.Errorf("malformed callback data %q", data)
	}
	index, err = strconv.Atoi(idxStr)
	if err != nil {
		return "", 0, fmt.Errorf("malformed callback index %q", data)
	}
	return action, index, nil
}

// reviewFlags translates a button action into the review request flags
func reviewFlags(action string) (mailingList, crm bool) {
	switch action {
	case actionMailingList:
		return true, false
	case actionCRM:
		return false, true
	case actionBoth:
		return true, true
	}
	return false, false
}

// formatResults renders the per-target outcome lines shown after a review
func formatResults(name string, results map[domain.Target]bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Results for %s:*\n\n", name)
	if ok, present := results[domain.TargetMailingList]; present {
		fmt.Fprintf(&b, "*Mailchimp:* %s\n", statusLabel(ok))
	}
	if ok, present := results[domain.TargetCRM]; present {
		fmt.Fprintf(&b, "*Pipedrive:* %s\n", statusLabel(ok))
	}
	return b.String()
}

func statusLabel(ok bool) string {
	if ok {
		return "✅ Added"
	}
	return "❌ Failed"
}
