package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"snapdoc/internal/service"
)

// MockProcessorService is a mock implementation of service.ProcessorService.
type MockProcessorService struct {
	mock.Mock
}

func (m *MockProcessorService) Process(ctx context.Context, input *service.ProcessInput) (*service.ProcessResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessResult), args.Error(1)
}
