package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPMailer hands transactional email off to the external mail service.
// The service owns the templates; this client only names one and sends
// the substitution data.
type HTTPMailer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPMailer creates a client for the mail service at baseURL.
func NewHTTPMailer(baseURL, apiKey string, client *http.Client) *HTTPMailer {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPMailer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (m *HTTPMailer) Send(ctx context.Context, to string, template domain.MailTemplate, data map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"to":       to,
		"template": string(template),
		"data":     data,
	})
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("X-Api-Key", m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w: %s", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send mail: %w: status %d: %s", domain.ErrUpstream, resp.StatusCode, respBody)
	}

	return nil
}

var _ domain.Mailer = (*HTTPMailer)(nil)
