// Package retell provides a minimal client for the Retell voice-AI call API.
//
// Only call creation is needed here; call lifecycle and analysis results
// arrive later as webhook events, not as responses to this client.
package retell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/talktuah/seatswitch/internal/models"
)

// DefaultBaseURL is the production Retell API endpoint.
const DefaultBaseURL = "https://api.retellai.com"

const createPhoneCallPath = "/v2/create-phone-call"

// ProviderError describes a failed call-creation attempt, either a
// transport failure or a non-2xx response from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retell: create phone call: %v", e.Err)
	}
	return fmt.Sprintf("retell: create phone call: status %d: %s", e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CreatePhoneCallRequest is the payload for call creation.
type CreatePhoneCallRequest struct {
	FromNumber       string               `json:"from_number"`
	ToNumber         string               `json:"to_number"`
	DynamicVariables map[string]string    `json:"retell_llm_dynamic_variables,omitempty"`
	Metadata         *models.CallMetadata `json:"metadata,omitempty"`
}

// PhoneCall is the subset of the provider's response the orchestrator uses.
type PhoneCall struct {
	CallID string `json:"call_id"`
	Status string `json:"call_status,omitempty"`
}

// Client calls the Retell REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key, overriding $RETELL_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL overrides the API endpoint; used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient initializes a Retell client, reading the API key from
// $RETELL_API_KEY unless WithAPIKey is given.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:     os.Getenv("RETELL_API_KEY"),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("retell: RETELL_API_KEY not set")
	}
	return c, nil
}

// CreatePhoneCall asks the provider to place an outbound call. The call's
// progress is reported asynchronously via webhooks keyed by the returned
// call id.
func (c *Client) CreatePhoneCall(ctx context.Context, req CreatePhoneCallRequest) (*PhoneCall, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPhoneCallPath, bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var call PhoneCall
	if err := json.Unmarshal(body, &call); err != nil {
		return nil, &ProviderError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &call, nil
}
