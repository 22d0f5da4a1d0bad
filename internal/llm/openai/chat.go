package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"paperbridge/internal/config"
	"paperbridge/internal/llm"
	"paperbridge/internal/port"
)

// Chat implements port.ChatCompleter and port.VisionTexter against the
// OpenAI Chat Completions API.
type Chat struct {
	client        *Client
	model         string
	maxChatTokens int
}

// NewChat creates an OpenAI-backed chat client.
func NewChat(client *Client, cfg *config.OpenAIConfig) *Chat {
	model := cfg.ChatModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Chat{client: client, model: model, maxChatTokens: cfg.MaxChatTokens}
}

var (
	_ port.ChatCompleter = (*Chat)(nil)
	_ port.VisionTexter  = (*Chat)(nil)
)

// Complete issues one chat completion and returns the assistant's text.
func (c *Chat) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.model,
		"max_tokens":  c.maxChatTokens,
		"temperature": 0,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
	}

	var answer string
	err := llm.RetryWithBackoff(ctx, func() error {
		var resp chatResponse
		if err := c.client.postJSON(ctx, "/chat/completions", reqBody, &resp); err != nil {
			log.Printf("openai.Chat: completion call failed: %v", err)
			return err
		}
		content, err := resp.content()
		if err != nil {
			return err
		}
		answer = content
		return nil
	}, c.client.maxAttempts, c.client.backoffMin, c.client.backoffMax)
	if err != nil {
		return "", fmt.Errorf("openai.Chat.Complete: %w", err)
	}
	return answer, nil
}

// ExtractText transcribes a page image via the vision content block API.
func (c *Chat) ExtractText(ctx context.Context, imagePNG []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(imagePNG)
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": c.maxChatTokens,
		"messages": []chatMessage{
			{
				Role: "user",
				Content: []map[string]interface{}{
					{"type": "text", "text": llm.VisionOCRPrompt},
					{
						"type":      "image_url",
						"image_url": map[string]string{"url": "data:image/png;base64," + encoded},
					},
				},
			},
		},
	}

	var text string
	err := llm.RetryWithBackoff(ctx, func() error {
		var resp chatResponse
		if err := c.client.postJSON(ctx, "/chat/completions", reqBody, &resp); err != nil {
			log.Printf("openai.Chat: vision call failed: %v", err)
			return err
		}
		content, err := resp.content()
		if err != nil {
			return err
		}
		text = content
		return nil
	}, c.client.maxAttempts, c.client.backoffMin, c.client.backoffMax)
	if err != nil {
		return "", fmt.Errorf("openai.Chat.ExtractText: %w", err)
	}
	return text, nil
}
