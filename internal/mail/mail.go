// Package mail delivers password reset links through a transactional email API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/observability"
)

const resetSubject = "Reset your Workout Tracker password"

// HTTPMailer posts messages to a Resend-compatible endpoint.
type HTTPMailer struct {
	client *http.Client
	url    string
	apiKey string
	from   string
}

// NewHTTPMailer constructs an HTTPMailer.
func NewHTTPMailer(endpoint, apiKey, from string, timeout time.Duration) *HTTPMailer {
	return &HTTPMailer{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(endpoint, "/"),
		apiKey: apiKey,
		from:   from,
	}
}

type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// SendPasswordReset delivers resetURL to the given address.
func (m *HTTPMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) (err error) {
	defer func() { observability.RecordMail(err) }()

	body, err := json.Marshal(message{
		From:    m.from,
		To:      []string{to},
		Subject: resetSubject,
		HTML:    resetHTML(name, resetURL),
		Text:    resetText(name, resetURL),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &DeliveryError{Status: resp.StatusCode}
	}
	return nil
}

// DeliveryError represents a non-successful response from the email API.
type DeliveryError struct {
	Status int
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email delivery failed with status %d %s", e.Status, http.StatusText(e.Status))
}

// LogMailer writes reset links to the log instead of sending them. It is used when no email API
// key is configured outside production.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendPasswordReset logs the reset link.
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	m.logger.Info().Str("to", to).Str("reset_url", resetURL).Msg("password reset email (not sent)")
	return nil
}

func greeting(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Hi,"
	}
	return "Hi " + name + ","
}

func resetText(name, resetURL string) string {
	return greeting(name) + "\n\n" +
		"We received a request to reset your password. Open the link below within the next hour to choose a new one:\n\n" +
		resetURL + "\n\n" +
		"If you did not ask for this, you can ignore this email.\n"
}

func resetHTML(name, resetURL string) string {
	link := html.EscapeString(resetURL)
	return "<p>" + html.EscapeString(greeting(name)) + "</p>" +
		"<p>We received a request to reset your password. Open the link below within the next hour to choose a new one:</p>" +
		`<p><a href="` + link + `">Reset password</a></p>` +
		"<p>If you did not ask for this, you can ignore this email.</p>"
}
