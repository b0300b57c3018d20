package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"snapdoc/internal/domain"
	"snapdoc/internal/port"
)

type processingErrorRepo struct {
	db *sqlx.DB
}

// NewProcessingErrorRepo creates a new PostgreSQL-backed ProcessingErrorRepository.
func NewProcessingErrorRepo(db *sqlx.DB) port.ProcessingErrorRepository {
	return &processingErrorRepo{db: db}
}

func (r *processingErrorRepo) Create(ctx context.Context, procErr *domain.ProcessingError) error {
	procErr.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO processing_errors (id, document_id, error_type, error_message, step_failed, error_details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		procErr.ID, procErr.DocumentID, procErr.ErrorType, procErr.ErrorMessage,
		procErr.StepFailed, procErr.ErrorDetails, procErr.CreatedAt)
	if err != nil {
		return fmt.Errorf("processingErrorRepo.Create: %w", err)
	}
	return nil
}

func (r *processingErrorRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.ProcessingError, error) {
	var procErrs []domain.ProcessingError
	err := r.db.SelectContext(ctx, &procErrs,
		"SELECT * FROM processing_errors WHERE document_id = $1 ORDER BY created_at DESC", docID)
	if err != nil {
		return nil, fmt.Errorf("processingErrorRepo.ListByDocument: %w", err)
	}
	return procErrs, nil
}
