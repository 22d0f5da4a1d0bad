package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"paperbridge/internal/config"
	"paperbridge/internal/domain"
	"paperbridge/internal/llm"
	"paperbridge/internal/port"
)

// Extractor implements port.Extractor using the OpenAI Chat Completions API
// with JSON-object output.
type Extractor struct {
	client        *Client
	model         string
	maxChatTokens int
}

// NewExtractor creates an OpenAI-backed structured extractor.
func NewExtractor(client *Client, cfg *config.OpenAIConfig) *Extractor {
	model := cfg.ChatModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Extractor{client: client, model: model, maxChatTokens: cfg.MaxChatTokens}
}

var _ port.Extractor = (*Extractor)(nil)

// Extract calls the chat API and decodes the structured payload. Transient
// provider failures are retried with exponential backoff; the final error is
// returned on exhaustion.
func (e *Extractor) Extract(ctx context.Context, text string) (*domain.ExtractionPayload, error) {
	reqBody := map[string]interface{}{
		"model":      e.model,
		"max_tokens": e.maxChatTokens,
		"messages": []chatMessage{
			{Role: "system", Content: llm.ExtractionSystemPrompt},
			{Role: "user", Content: llm.ExtractionUserPrefix + text},
		},
		"response_format": map[string]interface{}{"type": "json_object"},
	}

	var payload *domain.ExtractionPayload
	err := llm.RetryWithBackoff(ctx, func() error {
		var resp chatResponse
		if err := e.client.postJSON(ctx, "/chat/completions", reqBody, &resp); err != nil {
			log.Printf("openai.Extractor: extraction call failed: %v", err)
			return err
		}
		content, err := resp.content()
		if err != nil {
			return err
		}
		var p domain.ExtractionPayload
		if err := json.Unmarshal([]byte(content), &p); err != nil {
			return fmt.Errorf("decoding extraction payload: %w", err)
		}
		payload = &p
		return nil
	}, e.client.maxAttempts, e.client.backoffMin, e.client.backoffMax)
	if err != nil {
		return nil, fmt.Errorf("openai.Extractor.Extract: %w", err)
	}
	return payload, nil
}
