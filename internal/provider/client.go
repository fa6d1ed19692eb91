package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds every provider HTTP call.
const DefaultRequestTimeout = 30 * time.Second

// ErrMissingCredential is returned before any network call when the client
// has no API key. This is a deployment configuration error, not an upstream
// failure.
var ErrMissingCredential = errors.New("provider: api key not configured")

// APIError is a structured upstream failure (non-2xx response).
// The core never retries these automatically.
type APIError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: %s (status %d): %s", e.Message, e.StatusCode, e.Body)
}

// Client is a thin, stateless HTTP wrapper over the voice provider.
//
// Every method is a single request/response; connection reuse is whatever the
// underlying http.Client provides.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient builds a provider client. baseURL must not end with a slash
// requirement; trailing slashes are trimmed.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: DefaultRequestTimeout},
	}
}

// Configured reports whether the client can make authenticated calls.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.baseURL != ""
}

// CreateOutboundCall places an outbound call.
func (c *Client) CreateOutboundCall(ctx context.Context, req OutboundRequest) (Call, error) {
	var out Call
	err := c.do(ctx, http.MethodPost, "/call", req, &out)
	return out, err
}

// GetCall fetches the provider's current view of a call.
func (c *Client) GetCall(ctx context.Context, id string) (Call, error) {
	var out Call
	err := c.do(ctx, http.MethodGet, "/call/"+id, nil, &out)
	return out, err
}

// GetAgent fetches a stored agent configuration.
func (c *Client) GetAgent(ctx context.Context, id string) (Agent, error) {
	var out Agent
	err := c.do(ctx, http.MethodGet, "/agent/"+id, nil, &out)
	return out, err
}

// ListPhoneNumbers lists the provider-registered outbound numbers.
func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	var out []PhoneNumber
	err := c.do(ctx, http.MethodGet, "/phone-number", nil, &out)
	return out, err
}

// ListCalls lists recent provider calls.
func (c *Client) ListCalls(ctx context.Context) ([]Call, error) {
	var out []Call
	err := c.do(ctx, http.MethodGet, "/call", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c == nil || c.apiKey == "" {
		return ErrMissingCredential
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("provider: encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("provider: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Message:    method + " " + path + " rejected",
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("provider: decode response: %w", err)
		}
	}
	return nil
}
