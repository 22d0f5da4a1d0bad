package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paperbridge/internal/domain"
)

// MockExtractor is a mock implementation of port.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, text string) (*domain.ExtractionPayload, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionPayload), args.Error(1)
}

// MockEmbedder is a mock implementation of port.Embedder.
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) Dimensions() int {
	args := m.Called()
	return args.Int(0)
}

// MockVisionTexter is a mock implementation of port.VisionTexter.
type MockVisionTexter struct {
	mock.Mock
}

func (m *MockVisionTexter) ExtractText(ctx context.Context, imagePNG []byte) (string, error) {
	args := m.Called(ctx, imagePNG)
	return args.String(0), args.Error(1)
}

// MockChatCompleter is a mock implementation of port.ChatCompleter.
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	args := m.Called(ctx, systemPrompt, userContent)
	return args.String(0), args.Error(1)
}
