package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/mock"

	"paperbridge/internal/domain"
)

// MockEmbeddingRepo is a mock implementation of port.EmbeddingRepository.
type MockEmbeddingRepo struct {
	mock.Mock
}

func (m *MockEmbeddingRepo) InsertBatch(ctx context.Context, embeddings []domain.Embedding) error {
	args := m.Called(ctx, embeddings)
	return args.Error(0)
}

func (m *MockEmbeddingRepo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEmbeddingRepo) SearchSimilar(ctx context.Context, query pgvector.Vector, limit int, documentIDs []uuid.UUID) ([]domain.RetrievedChunk, error) {
	args := m.Called(ctx, query, limit, documentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievedChunk), args.Error(1)
}
