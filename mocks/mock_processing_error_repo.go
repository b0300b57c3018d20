package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"snapdoc/internal/domain"
)

// MockProcessingErrorRepo is a mock implementation of port.ProcessingErrorRepository.
type MockProcessingErrorRepo struct {
	mock.Mock
}

func (m *MockProcessingErrorRepo) Create(ctx context.Context, procErr *domain.ProcessingError) error {
	args := m.Called(ctx, procErr)
	return args.Error(0)
}

func (m *MockProcessingErrorRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.ProcessingError, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProcessingError), args.Error(1)
}
