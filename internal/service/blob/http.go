package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPStore talks to the external object-storage gateway. Objects are
// uploaded by key and read back only through short-lived signed URLs.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPStore creates a client for the storage gateway at baseURL.
func NewHTTPStore(baseURL, apiKey string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (s *HTTPStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	endpoint := s.baseURL + "/objects/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload object %s: %w: %s", key, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload object %s: %w: status %d: %s", key, domain.ErrUpstream, resp.StatusCode, body)
	}

	return nil
}

func (s *HTTPStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	query := url.Values{}
	query.Set("key", key)
	query.Set("ttl_seconds", fmt.Sprintf("%d", int64(ttl.Seconds())))

	endpoint := s.baseURL + "/sign?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build sign request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign object %s: %w: %s", key, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("sign object %s: %w: status %d: %s", key, domain.ErrUpstream, resp.StatusCode, body)
	}

	var payload struct {
		SignedURL string `json:"signed_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode sign response: %w", err)
	}
	if payload.SignedURL == "" {
		return "", fmt.Errorf("sign object %s: %w: empty signed_url", key, domain.ErrUpstream)
	}

	return payload.SignedURL, nil
}

var _ domain.BlobStore = (*HTTPStore)(nil)
