package port

import (
	"context"

	"github.com/google/uuid"

	"snapdoc/internal/domain"
)

// ExtractionRepository defines the contract for extraction persistence.
type ExtractionRepository interface {
	Create(ctx context.Context, extraction *domain.Extraction) error
	CreateGuests(ctx context.Context, guests []domain.GuestExtraction) error
	GetByID(ctx context.Context, extractionID uuid.UUID) (*domain.Extraction, error)
	GetLatestByDocument(ctx context.Context, docID uuid.UUID) (*domain.Extraction, error)
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Extraction, error)
	ListGuests(ctx context.Context, extractionID uuid.UUID) ([]domain.GuestExtraction, error)
	UpdateData(ctx context.Context, extraction *domain.Extraction) error
}

// ProcessingErrorRepository defines the contract for processing error logs.
type ProcessingErrorRepository interface {
	Create(ctx context.Context, procErr *domain.ProcessingError) error
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.ProcessingError, error)
}
