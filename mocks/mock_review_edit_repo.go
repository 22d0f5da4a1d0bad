package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"paperbridge/internal/domain"
)

// MockReviewEditRepo is a mock implementation of port.ReviewEditRepository.
type MockReviewEditRepo struct {
	mock.Mock
}

func (m *MockReviewEditRepo) Create(ctx context.Context, edit *domain.ReviewEdit) error {
	args := m.Called(ctx, edit)
	return args.Error(0)
}

func (m *MockReviewEditRepo) ListByExtraction(ctx context.Context, extractionID uuid.UUID) ([]domain.ReviewEdit, error) {
	args := m.Called(ctx, extractionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewEdit), args.Error(1)
}
