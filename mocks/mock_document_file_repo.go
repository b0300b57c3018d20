package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"snapdoc/internal/domain"
)

// MockDocumentFileRepo is a mock implementation of port.DocumentFileRepository.
type MockDocumentFileRepo struct {
	mock.Mock
}

func (m *MockDocumentFileRepo) Create(ctx context.Context, file *domain.DocumentFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockDocumentFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.DocumentFile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentFile), args.Error(1)
}

func (m *MockDocumentFileRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.DocumentFile, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentFile), args.Error(1)
}

func (m *MockDocumentFileRepo) MarkUploaded(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func (m *MockDocumentFileRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}
