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

type documentFileRepo struct {
	db *sqlx.DB
}

// NewDocumentFileRepo creates a new PostgreSQL-backed DocumentFileRepository.
func NewDocumentFileRepo(db *sqlx.DB) port.DocumentFileRepository {
	return &documentFileRepo{db: db}
}

func (r *documentFileRepo) Create(ctx context.Context, file *domain.DocumentFile) error {
	file.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO document_files (id, document_id, s3_bucket, s3_key, side, content_type, size_bytes, uploaded, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		file.ID, file.DocumentID, file.S3Bucket, file.S3Key, file.Side,
		file.ContentType, file.SizeBytes, file.Uploaded, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("documentFileRepo.Create: %w", err)
	}
	return nil
}

func (r *documentFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.DocumentFile, error) {
	var file domain.DocumentFile
	err := r.db.GetContext(ctx, &file,
		"SELECT * FROM document_files WHERE id = $1", fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *documentFileRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.DocumentFile, error) {
	var files []domain.DocumentFile
	err := r.db.SelectContext(ctx, &files,
		"SELECT * FROM document_files WHERE document_id = $1 ORDER BY created_at ASC", docID)
	if err != nil {
		return nil, fmt.Errorf("documentFileRepo.ListByDocument: %w", err)
	}
	return files, nil
}

func (r *documentFileRepo) MarkUploaded(ctx context.Context, fileID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE document_files SET uploaded = true WHERE id = $1", fileID)
	if err != nil {
		return fmt.Errorf("documentFileRepo.MarkUploaded: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentFileRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM document_files WHERE document_id = $1", docID)
	if err != nil {
		return fmt.Errorf("documentFileRepo.DeleteByDocument: %w", err)
	}
	return nil
}
