package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"snapdoc/internal/ai"
)

// MockExtractor is a mock implementation of ai.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractDataFromDocument(ctx context.Context, input ai.ExtractInput) (*ai.ProviderResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.ProviderResponse), args.Error(1)
}
