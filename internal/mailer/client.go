// Package mailer sends transactional email through the Resend REST API.
// The only consumer today is the emergency video endpoint, which attaches a
// panic-mode recording and delivers it to the user's attorney.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultBaseURL is the Resend API endpoint. Overridable for tests.
const defaultBaseURL = "https://api.resend.com"

// Attachment is a file attached to an outgoing email. Content must be
// base64-encoded per the Resend API contract.
type Attachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

// Email is a single outgoing message.
type Email struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Client talks to the Resend API. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

// Config holds the settings for constructing a Client.
type Config struct {
	// APIKey is the Resend API key (RESEND_API_KEY).
	APIKey string
	// From is the verified sender address (RESEND_FROM_EMAIL).
	From string
	// BaseURL overrides the API endpoint. Empty selects the production API.
	BaseURL string
}

// New constructs a Client. Both the API key and sender address are required;
// callers should treat a nil client as "email not configured".
func New(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailer: API key is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mailer: sender address is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// From returns the configured sender address.
func (c *Client) From() string {
	return c.from
}

// sendResponse is the JSON body returned by POST /emails.
type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// Send delivers the email and returns the provider-assigned message id.
func (c *Client) Send(ctx context.Context, email *Email) (string, error) {
	if email.From == "" {
		email.From = c.from
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("mailer: marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("mailer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailer: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("mailer: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Message != "" {
			msg = result.Message
		}
		return "", fmt.Errorf("mailer: %s", msg)
	}

	return result.ID, nil
}
