// Package openai implements the extraction, embedding, and vision clients
// against the OpenAI HTTP API with bounded retry.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"paperbridge/internal/config"
)

// Client is the shared HTTP transport for all OpenAI calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
}

// NewClient creates a Client from the OpenAI configuration.
func NewClient(cfg *config.OpenAIConfig) *Client {
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: cfg.MaxRetries + 1,
		backoffMin:  cfg.BackoffMin(),
		backoffMax:  cfg.BackoffMax(),
	}
}

// postJSON sends body to path and decodes the response into out.
// Non-2xx responses are returned as errors carrying the API error message.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("openai API error (status %d)", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// chatMessage is one entry of a chat completion request. Content is either a
// plain string or a slice of content blocks (for vision calls).
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// chatResponse is the subset of the completion response the clients consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r *chatResponse) content() (string, error) {
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("openai API returned no choices")
	}
	return r.Choices[0].Message.Content, nil
}
