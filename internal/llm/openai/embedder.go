package openai

import (
	"context"
	"fmt"
	"log"

	"paperbridge/internal/config"
	"paperbridge/internal/domain"
	"paperbridge/internal/llm"
	"paperbridge/internal/port"
)

// Embedder implements port.Embedder using the OpenAI embeddings API.
type Embedder struct {
	client *Client
	model  string
	dims   int
}

// NewEmbedder creates an OpenAI-backed embedder.
func NewEmbedder(client *Client, cfg *config.OpenAIConfig) *Embedder {
	model := cfg.EmbedModel
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Embedder{client: client, model: model, dims: cfg.EmbedDims}
}

var _ port.Embedder = (*Embedder)(nil)

// Dimensions reports the configured vector size; stored vectors must match it.
func (e *Embedder) Dimensions() int { return e.dims }

// Embed returns one vector per input string, in input order. The call fails
// as a unit: on error no vectors are returned.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := map[string]interface{}{
		"model": e.model,
		"input": texts,
	}

	var vectors [][]float32
	err := llm.RetryWithBackoff(ctx, func() error {
		var resp struct {
			Data []struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			} `json:"data"`
		}
		if err := e.client.postJSON(ctx, "/embeddings", reqBody, &resp); err != nil {
			log.Printf("openai.Embedder: embedding call failed: %v", err)
			return err
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
		}

		out := make([][]float32, len(texts))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(out) {
				return fmt.Errorf("embedding index %d out of range", d.Index)
			}
			if len(d.Embedding) != e.dims {
				return fmt.Errorf("%w: got %d, want %d", domain.ErrEmbeddingDimension, len(d.Embedding), e.dims)
			}
			out[d.Index] = d.Embedding
		}
		vectors = out
		return nil
	}, e.client.maxAttempts, e.client.backoffMin, e.client.backoffMax)
	if err != nil {
		return nil, fmt.Errorf("openai.Embedder.Embed: %w", err)
	}
	return vectors, nil
}
