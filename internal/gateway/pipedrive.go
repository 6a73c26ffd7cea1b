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

// PipedriveGateway creates persons in a Pipedrive account (the CRM target).
type PipedriveGateway struct {
	apiKey        string
	companyDomain string
	client        *http.Client
	baseURL       string
}

type pipedrivePerson struct {
	Name     string           `json:"name"`
	Email    []pipedriveEmail `json:"email"`
	LinkedIn string           `json:"linkedin"`
}

type pipedriveEmail struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary"`
	Label   string `json:"label"`
}

// NewPipedriveGateway creates the CRM adapter. Empty credentials are valid;
// the gateway then fails closed without network calls.
func NewPipedriveGateway(apiKey, companyDomain string, timeout time.Duration) *PipedriveGateway {
	return &PipedriveGateway{
		apiKey:        apiKey,
		companyDomain: companyDomain,
		client:        newHTTPClient(timeout),
		baseURL:       fmt.Sprintf("https://%s.pipedrive.com/api/v1", companyDomain),
	}
}

func (g *PipedriveGateway) Target() domain.Target {
	return domain.TargetCRM
}

// Configured requires both the token and the company domain; with only one of
// them the persons URL cannot be built, so Enroll must not dial.
func (g *PipedriveGateway) Configured() bool {
	return g.apiKey != "" && g.companyDomain != ""
}

// Enroll creates the contact as a person with a primary work email.
// Pipedrive answers 201 on creation; anything else fails closed.
func (g *PipedriveGateway) Enroll(ctx context.Context, contact *domain.Contact) bool {
	if !g.Configured() {
		logger.Log.Warn("pipedrive credentials not configured, skipping enrollment",
			"email", contact.Email)
		return false
	}

	person := pipedrivePerson{
		Name: contact.Name,
		Email: []pipedriveEmail{
			{Value: contact.Email, Primary: true, Label: "work"},
		},
		LinkedIn: contact.LinkedInURL,
	}

	body, err := json.Marshal(person)
	if err != nil {
		logger.Log.Error("failed to encode pipedrive person", "error", err)
		return false
	}

	url := fmt.Sprintf("%s/persons?api_token=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Log.Error("failed to build pipedrive request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Log.Error("pipedrive request failed", "email", contact.Email, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		logger.Log.Info("added contact to pipedrive", "email", contact.Email)
		return true
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	logger.Log.Error("pipedrive rejected contact",
		"email", contact.Email, "status", resp.StatusCode, "body", string(detail))
	return false
}
