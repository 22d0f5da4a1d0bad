package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"paperbridge/internal/domain"
	"paperbridge/internal/llm"
	"paperbridge/internal/port"
)

// NoContextAnswer is returned verbatim when retrieval finds no chunks, so
// clients can distinguish "nothing indexed" from a grounded answer.
const NoContextAnswer = "No context available. Please embed documents first."

// AskInput is the DTO for a retrieval-augmented question.
type AskInput struct {
	Question    string
	TopK        int
	DocumentIDs []uuid.UUID
}

// AskService answers questions grounded in embedded document chunks.
type AskService interface {
	Ask(ctx context.Context, input *AskInput) (*domain.Answer, error)
}

type askService struct {
	embeddingRepo    port.EmbeddingRepository
	embedder         port.Embedder
	chat             port.ChatCompleter
	defaultTopK      int
	maxTopK          int
	vectorCandidates int
}

// NewAskService creates a new AskService implementation.
func NewAskService(
	embeddingRepo port.EmbeddingRepository,
	embedder port.Embedder,
	chat port.ChatCompleter,
	defaultTopK, maxTopK, vectorCandidates int,
) AskService {
	return &askService{
		embeddingRepo:    embeddingRepo,
		embedder:         embedder,
		chat:             chat,
		defaultTopK:      defaultTopK,
		maxTopK:          maxTopK,
		vectorCandidates: vectorCandidates,
	}
}

func (s *askService) Ask(ctx context.Context, input *AskInput) (*domain.Answer, error) {
	topK := clampTopK(input.TopK, s.defaultTopK, s.maxTopK)

	vectors, err := s.embedder.Embed(ctx, []string{input.Question})
	if err != nil {
		return nil, fmt.Errorf("askService.Ask: %w", err)
	}
	query := pgvector.NewVector(vectors[0])

	candidates, err := s.embeddingRepo.SearchSimilar(ctx, query, s.vectorCandidates, input.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("askService.Ask: %w", err)
	}

	ranked := RankChunks(candidates, topK)
	if len(ranked) == 0 {
		return &domain.Answer{Answer: NoContextAnswer, Citations: []domain.Citation{}}, nil
	}

	answerText, err := s.chat.Complete(ctx, llm.AnswerSystemPrompt, buildAskContent(input.Question, ranked))
	if err != nil {
		return nil, fmt.Errorf("askService.Ask: %w", err)
	}

	// Citations come from the retrieved set itself, never from parsing the
	// model's prose, so they are stable across completions.
	citations := make([]domain.Citation, len(ranked))
	for i, c := range ranked {
		citations[i] = domain.Citation{
			ChunkID:    c.ChunkID,
			DocumentID: c.DocumentID,
			PageStart:  c.PageStart,
			PageEnd:    c.PageEnd,
			Text:       c.Content,
			Similarity: 1 - c.Distance,
		}
	}

	return &domain.Answer{Answer: answerText, Citations: citations}, nil
}

// RankChunks orders candidates by ascending distance with chunk ID as the tie
// break and returns at most topK of them.
func RankChunks(candidates []domain.RetrievedChunk, topK int) []domain.RetrievedChunk {
	ranked := make([]domain.RetrievedChunk, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].ChunkID < ranked[j].ChunkID
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func clampTopK(requested, def, max int) int {
	if requested <= 0 {
		return def
	}
	if max > 0 && requested > max {
		return max
	}
	return requested
}

func buildAskContent(question string, chunks []domain.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "[chunk %s | document %s | pages %d-%d]\n%s\n\n",
			c.ChunkID, c.DocumentID, c.PageStart, c.PageEnd, c.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
