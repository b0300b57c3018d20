package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"snapdoc/internal/domain"
	"snapdoc/internal/port"
)

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, extraction *domain.Extraction) error {
	now := time.Now().UTC()
	extraction.CreatedAt = now
	extraction.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extractions (
			id, document_id, model_name, extraction_data, fields_for_review,
			confidence_score, detected_guest_count, processing_time_ms,
			is_manually_corrected, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		extraction.ID, extraction.DocumentID, extraction.ModelName,
		extraction.ExtractionData, extraction.FieldsForReview,
		extraction.ConfidenceScore, extraction.DetectedGuestCount,
		extraction.ProcessingTimeMs, extraction.IsManuallyCorrected,
		extraction.CreatedAt, extraction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) CreateGuests(ctx context.Context, guests []domain.GuestExtraction) error {
	if len(guests) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range guests {
		guests[i].CreatedAt = now
	}

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO guest_extractions (id, extraction_id, position, guest_data, created_at)
		 VALUES (:id, :extraction_id, :position, :guest_data, :created_at)`,
		guests)
	if err != nil {
		return fmt.Errorf("extractionRepo.CreateGuests: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, extractionID uuid.UUID) (*domain.Extraction, error) {
	var extraction domain.Extraction
	err := r.db.GetContext(ctx, &extraction,
		"SELECT * FROM extractions WHERE id = $1", extractionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return &extraction, nil
}

func (r *extractionRepo) GetLatestByDocument(ctx context.Context, docID uuid.UUID) (*domain.Extraction, error) {
	var extraction domain.Extraction
	err := r.db.GetContext(ctx, &extraction,
		"SELECT * FROM extractions WHERE document_id = $1 ORDER BY created_at DESC LIMIT 1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetLatestByDocument: %w", err)
	}
	return &extraction, nil
}

func (r *extractionRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Extraction, error) {
	var extractions []domain.Extraction
	err := r.db.SelectContext(ctx, &extractions,
		"SELECT * FROM extractions WHERE document_id = $1 ORDER BY created_at DESC", docID)
	if err != nil {
		return nil, fmt.Errorf("extractionRepo.ListByDocument: %w", err)
	}
	return extractions, nil
}

func (r *extractionRepo) ListGuests(ctx context.Context, extractionID uuid.UUID) ([]domain.GuestExtraction, error) {
	var guests []domain.GuestExtraction
	err := r.db.SelectContext(ctx, &guests,
		"SELECT * FROM guest_extractions WHERE extraction_id = $1 ORDER BY position ASC", extractionID)
	if err != nil {
		return nil, fmt.Errorf("extractionRepo.ListGuests: %w", err)
	}
	return guests, nil
}

func (r *extractionRepo) UpdateData(ctx context.Context, extraction *domain.Extraction) error {
	extraction.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE extractions SET extraction_data = $1, fields_for_review = $2,
			is_manually_corrected = $3, updated_at = $4
		 WHERE id = $5`,
		extraction.ExtractionData, extraction.FieldsForReview,
		extraction.IsManuallyCorrected, extraction.UpdatedAt, extraction.ID)
	if err != nil {
		return fmt.Errorf("extractionRepo.UpdateData: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrExtractionNotFound
	}
	return nil
}
