package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/pkg/logger"
)

// MailchimpGateway subscribes contacts to a Mailchimp audience (the
// mailing-list target).
type MailchimpGateway struct {
	apiKey       string
	listID       string
	serverPrefix string
	client       *http.Client
	// baseURL is derived from the server prefix; tests point it at a stub.
	baseURL string
}

type mailchimpMember struct {
	EmailAddress string               `json:"email_address"`
	Status       string               `json:"status"`
	MergeFields  mailchimpMergeFields `json:"merge_fields"`
}

type mailchimpMergeFields struct {
	FNAME    string `json:"FNAME"`
	LNAME    string `json:"LNAME"`
	LinkedIn string `json:"LINKEDIN"`
}

// NewMailchimpGateway creates the mailing-list adapter. Empty credentials are
// valid: the gateway reports unconfigured and every Enroll returns false
// without a network call.
func NewMailchimpGateway(apiKey, listID, serverPrefix string, timeout time.Duration) *MailchimpGateway {
	return &MailchimpGateway{
		apiKey:       apiKey,
		listID:       listID,
		serverPrefix: serverPrefix,
		client:       newHTTPClient(timeout),
		baseURL:      fmt.Sprintf("https://%s.api.mailchimp.com/3.0", serverPrefix),
	}
}

func (g *MailchimpGateway) Target() domain.Target {
	return domain.TargetMailingList
}

// Configured reports whether every credential is present. A partial set still
// counts as unconfigured so Enroll never dials a half-built URL.
func (g *MailchimpGateway) Configured() bool {
	return g.apiKey != "" && g.listID != "" && g.serverPrefix != ""
}

// Enroll adds the contact as a subscribed member. HTTP 200/201 count as
// success; everything else, including transport failures, fails closed.
func (g *MailchimpGateway) Enroll(ctx context.Context, contact *domain.Contact) bool {
	if !g.Configured() {
		logger.Log.Warn("mailchimp credentials not configured, skipping enrollment",
			"email", contact.Email)
		return false
	}

	member := mailchimpMember{
		EmailAddress: contact.Email,
		Status:       "subscribed",
		MergeFields: mailchimpMergeFields{
			FNAME:    firstNameOf(contact),
			LNAME:    lastNameOf(contact),
			LinkedIn: contact.LinkedInURL,
		},
	}

	body, err := json.Marshal(member)
	if err != nil {
		logger.Log.Error("failed to encode mailchimp member", "error", err)
		return false
	}

	url := fmt.Sprintf("%s/lists/%s/members", g.baseURL, g.listID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Log.Error("failed to build mailchimp request", "error", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Log.Error("mailchimp request failed", "email", contact.Email, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		logger.Log.Info("added contact to mailchimp", "email", contact.Email)
		return true
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	logger.Log.Error("mailchimp rejected contact",
		"email", contact.Email, "status", resp.StatusCode, "body", string(detail))
	return false
}
