package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"paperbridge/internal/domain"
)

// MockPageRepo is a mock implementation of port.PageRepository.
type MockPageRepo struct {
	mock.Mock
}

func (m *MockPageRepo) Create(ctx context.Context, page *domain.DocumentPage) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentPage, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentPage), args.Error(1)
}
