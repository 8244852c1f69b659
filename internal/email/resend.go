package email

import (
	"bytes"         // Request body buffer
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Error formatting
	"io"            // Response body reading
	"net/http"      // HTTP client
	"time"          // Client timeout

	"github.com/sirupsen/logrus" // Logging library
)

// resendEndpoint is the Resend transactional email API
const resendEndpoint = "https://api.resend.com/emails"

// Mailer sends transactional email through the Resend HTTP API.
// An empty APIKey disables sending, so local and test environments
// run without a key.
type Mailer struct {
	APIKey      string       // Resend API key
	From        string       // Sender address
	APIBaseURL  string       // Public base URL of this API, for verification links
	FrontendURL string       // Base URL of the front-end, for links in email bodies
	Endpoint    string       // API endpoint, overridable in tests
	Client      *http.Client // HTTP client
}

// NewMailer builds a Mailer with a sane HTTP timeout
func NewMailer(apiKey, from, apiBaseURL, frontendURL string) *Mailer {
	return &Mailer{
		APIKey:      apiKey,                                  // Resend API key
		From:        from,                                    // Sender address
		APIBaseURL:  apiBaseURL,                              // API base URL
		FrontendURL: frontendURL,                             // Front-end base URL
		Endpoint:    resendEndpoint,                          // Resend API endpoint
		Client:      &http.Client{Timeout: 10 * time.Second}, // Bounded request time
	}
}

// sendRequest is the Resend API request body
type sendRequest struct {
	From    string   `json:"from"`    // Sender address
	To      []string `json:"to"`      // Recipient addresses
	Subject string   `json:"subject"` // Subject line
	HTML    string   `json:"html"`    // HTML body
	Text    string   `json:"text"`    // Plain text body
}

// Send delivers one email synchronously. Disabled mailers log and return nil.
func (m *Mailer) Send(to, subject, html, text string) error {
	// Skip sending when no API key is configured
	if m.APIKey == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,      // Recipient
			"subject": subject, // Subject line
		}).Debug("Email sending disabled, skipping")
		return nil
	}
	// Marshal the request body
	body, err := json.Marshal(sendRequest{
		From:    m.From,       // Sender address
		To:      []string{to}, // Single recipient
		Subject: subject,      // Subject line
		HTML:    html,         // HTML body
		Text:    text,         // Plain text body
	})
	if err != nil {
		return err // Return error if marshaling fails
	}
	// Build the API request
	req, err := http.NewRequest(http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err // Return error if the request cannot be built
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey) // API key auth
	req.Header.Set("Content-Type", "application/json")  // JSON payload
	// Execute the request
	resp, err := m.Client.Do(req)
	if err != nil {
		return err // Return transport errors
	}
	defer resp.Body.Close() // Always close the body
	// Treat non-2xx responses as errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048)) // Read a bounded error body
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// SendAsync delivers one email in the background; failures are logged
// and never fail the request that triggered them
func (m *Mailer) SendAsync(to, subject, html, text string) {
	go func() {
		if err := m.Send(to, subject, html, text); err != nil {
			// Log the failure with context
			logrus.WithFields(logrus.Fields{
				"to":      to,          // Recipient
				"subject": subject,     // Subject line
				"error":   err.Error(), // Error message
			}).Error("Failed to send email")
		}
	}()
}
