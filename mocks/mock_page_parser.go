package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paperbridge/internal/pdfparse"
)

// MockPageParser is a mock implementation of service.PageParser.
type MockPageParser struct {
	mock.Mock
}

func (m *MockPageParser) Parse(ctx context.Context, pdfBytes []byte) ([]pdfparse.ParsedPage, error) {
	args := m.Called(ctx, pdfBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pdfparse.ParsedPage), args.Error(1)
}
