// Package moderation submits user-generated text to a remote classifier
// and enforces an allow/block decision before content is persisted.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Content classes submitted to the classifier
const (
	ClassPost    = "post"
	ClassComment = "comment"
	ClassMessage = "message"
)

// Suggested actions returned by the classifier
const (
	ActionApprove = "approve"
	ActionFlag    = "flag"
	ActionReject  = "reject"
)

// Request is the payload sent to the classifier
type Request struct {
	Content string `json:"content"`
	Type    string `json:"type"`
	UserID  string `json:"userId"`
}

// Verdict is the classifier's structured judgment
type Verdict struct {
	IsAppropriate   bool     `json:"isAppropriate"`
	Confidence      float64  `json:"confidence"`
	Reasons         []string `json:"reasons,omitempty"`
	SuggestedAction string   `json:"suggestedAction"`
}

// Client calls the remote moderation function
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a moderation client for the given endpoint
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type classifyResponse struct {
	Moderation Verdict `json:"moderation"`
}

// Classify submits content and returns the classifier's verdict
func (c *Client) Classify(ctx context.Context, req Request) (*Verdict, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("classifier returned %d", resp.StatusCode)
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	return &result.Moderation, nil
}
