// Package chunker splits page text into overlapping token-bounded segments.
// Chunking is deterministic for a given input and configuration, which is what
// makes full embedding rebuilds idempotent at the document level.
package chunker

import (
	"strings"

	"paperbridge/internal/domain"
)

// TokenCounter reports how many model tokens a string occupies.
type TokenCounter func(text string) int

// Chunker accumulates whitespace-delimited words into chunks of at most
// maxTokens tokens, seeding each chunk after the first with the trailing
// overlapTokens tokens of its predecessor.
type Chunker struct {
	maxTokens     int
	overlapTokens int
	countTokens   TokenCounter
}

// New creates a Chunker. overlapTokens must be strictly smaller than
// maxTokens; equal or larger overlap could produce non-advancing chunks and is
// rejected rather than clamped.
func New(maxTokens, overlapTokens int, counter TokenCounter) (*Chunker, error) {
	if maxTokens <= 0 || overlapTokens < 0 || overlapTokens >= maxTokens {
		return nil, domain.ErrInvalidChunkParams
	}
	if counter == nil {
		return nil, domain.ErrInvalidChunkParams
	}
	return &Chunker{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
		countTokens:   counter,
	}, nil
}

// Chunk splits text on whitespace boundaries into ordered chunk strings.
// Empty or whitespace-only input yields an empty slice.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, word := range words {
		wordLen := c.countTokens(word)
		if currentLen+wordLen > c.maxTokens {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
			}

			overlap, overlapLen := c.trailingOverlap(current)
			current = append(overlap, word)
			currentLen = overlapLen + wordLen
			continue
		}
		current = append(current, word)
		currentLen += wordLen
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// trailingOverlap collects the longest suffix of words whose token count fits
// within the configured overlap budget.
func (c *Chunker) trailingOverlap(words []string) ([]string, int) {
	var overlap []string
	overlapLen := 0
	for i := len(words) - 1; i >= 0; i-- {
		wl := c.countTokens(words[i])
		if overlapLen+wl > c.overlapTokens {
			break
		}
		overlap = append([]string{words[i]}, overlap...)
		overlapLen += wl
	}
	return overlap, overlapLen
}
