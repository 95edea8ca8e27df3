package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-otp-api/internal/config"
)

const defaultEndpoint = "https://api.brevo.com/v3/smtp/email"

// Sender submits messages through the Brevo transactional email HTTP API
// (the "api" transport).
type Sender struct {
	apiKey      string
	senderName  string
	senderEmail string
	endpoint    string
	httpc       *http.Client
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		apiKey:      cfg.BrevoAPIKey,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		endpoint:    defaultEndpoint,
		httpc:       &http.Client{Timeout: 10 * time.Second},
	}
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
	TextContent string  `json:"textContent"`
}

func (s *Sender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if s.apiKey == "" {
		return fmt.Errorf("BREVO_API_KEY not set")
	}
	if htmlBody == "" {
		htmlBody = "<p>" + textBody + "</p>"
	}

	payload, err := json.Marshal(sendRequest{
		Sender:      party{Name: s.senderName, Email: s.senderEmail},
		To:          []party{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
		TextContent: textBody,
	})
	if err != nil {
		return fmt.Errorf("marshal brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("brevo send to %s: status %d: %s", to, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
