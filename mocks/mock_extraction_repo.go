package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"snapdoc/internal/domain"
)

// MockExtractionRepo is a mock implementation of port.ExtractionRepository.
type MockExtractionRepo struct {
	mock.Mock
}

func (m *MockExtractionRepo) Create(ctx context.Context, extraction *domain.Extraction) error {
	args := m.Called(ctx, extraction)
	return args.Error(0)
}

func (m *MockExtractionRepo) CreateGuests(ctx context.Context, guests []domain.GuestExtraction) error {
	args := m.Called(ctx, guests)
	return args.Error(0)
}

func (m *MockExtractionRepo) GetByID(ctx context.Context, extractionID uuid.UUID) (*domain.Extraction, error) {
	args := m.Called(ctx, extractionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionRepo) GetLatestByDocument(ctx context.Context, docID uuid.UUID) (*domain.Extraction, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Extraction, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Extraction), args.Error(1)
}

func (m *MockExtractionRepo) ListGuests(ctx context.Context, extractionID uuid.UUID) ([]domain.GuestExtraction, error) {
	args := m.Called(ctx, extractionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GuestExtraction), args.Error(1)
}

func (m *MockExtractionRepo) UpdateData(ctx context.Context, extraction *domain.Extraction) error {
	args := m.Called(ctx, extraction)
	return args.Error(0)
}
