package port

import (
	"context"

	"paperbridge/internal/domain"
)

// Extractor abstracts the structured-extraction LLM call. Implementations
// retry transient provider failures a bounded number of times and return the
// final error on exhaustion.
type Extractor interface {
	Extract(ctx context.Context, text string) (*domain.ExtractionPayload, error)
}

// Embedder abstracts the embedding provider. Vectors are returned in input
// order and the call fails as a unit on error.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions reports the configured output vector size.
	Dimensions() int
}

// VisionTexter extracts text from a page image. Used as the OCR fallback when
// a PDF page carries too little native text.
type VisionTexter interface {
	ExtractText(ctx context.Context, imagePNG []byte) (string, error)
}

// ChatCompleter issues a single chat completion with a system prompt and user
// content, returning the assistant's text.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userContent string) (string, error)
}
