package auth

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

// HTTPProvider resolves identities against the external auth platform.
// Tokens are opaque here: the platform validates them and returns the
// user profile, including the storefront role.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider creates a client for the auth platform at baseURL.
func NewHTTPProvider(baseURL, apiKey string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (p *HTTPProvider) UserFromToken(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("resolve user: %w: %s", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.User{}, domain.ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.User{}, fmt.Errorf("resolve user: %w: status %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}

	var payload userPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.User{}, fmt.Errorf("decode user response: %w", err)
	}
	if payload.ID == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}

	return domain.User{
		ID:    payload.ID,
		Email: payload.Email,
		Name:  payload.Name,
		Role:  payload.Role,
	}, nil
}

func (p *HTTPProvider) Signup(ctx context.Context, email, password, name, role string) (domain.User, error) {
	if role == "" {
		role = domain.RoleCustomer
	}

	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
		"role":     role,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("encode signup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/signup", bytes.NewReader(body))
	if err != nil {
		return domain.User{}, fmt.Errorf("build signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("signup: %w: %s", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.User{}, fmt.Errorf("signup: %w: status %d: %s", domain.ErrUpstream, resp.StatusCode, respBody)
	}

	var payload userPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.User{}, fmt.Errorf("decode signup response: %w", err)
	}

	return domain.User{
		ID:    payload.ID,
		Email: payload.Email,
		Name:  payload.Name,
		Role:  payload.Role,
	}, nil
}

var _ domain.AuthProvider = (*HTTPProvider)(nil)
