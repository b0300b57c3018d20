package port

import (
	"context"

	"github.com/google/uuid"

	"snapdoc/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
	GetWithFiles(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.DocumentStatus) error
	Delete(ctx context.Context, userID, docID uuid.UUID) error
}

// DocumentFileRepository defines the contract for document file persistence.
type DocumentFileRepository interface {
	Create(ctx context.Context, file *domain.DocumentFile) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.DocumentFile, error)
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.DocumentFile, error)
	MarkUploaded(ctx context.Context, fileID uuid.UUID) error
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
}
