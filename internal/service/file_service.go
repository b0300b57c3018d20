package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"snapdoc/internal/config"
	"snapdoc/internal/domain"
	"snapdoc/internal/port"
)

// PresignUploadInput is the DTO for requesting a direct-upload URL.
type PresignUploadInput struct {
	DocumentID  uuid.UUID       `json:"document_id" binding:"required"`
	Side        domain.FileSide `json:"side" binding:"required"`
	ContentType string          `json:"content_type" binding:"required"`
	SizeBytes   int64           `json:"size_bytes" binding:"required,min=1"`
}

// PresignUploadOutput carries the presigned PUT URL the client uploads to.
type PresignUploadOutput struct {
	FileID    uuid.UUID `json:"file_id"`
	UploadURL string    `json:"upload_url"`
	S3Key     string    `json:"s3_key"`
	ExpiresIn int64     `json:"expires_in"`
}

// FileService handles the browser direct-upload flow: presign, client
// PUT, then confirmation.
type FileService interface {
	PresignUpload(ctx context.Context, userID uuid.UUID, input PresignUploadInput) (*PresignUploadOutput, error)
	CompleteUpload(ctx context.Context, userID, fileID uuid.UUID) (*domain.DocumentFile, error)
}

type fileService struct {
	docRepo  port.DocumentRepository
	fileRepo port.DocumentFileRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	docRepo port.DocumentRepository,
	fileRepo port.DocumentFileRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		docRepo:  docRepo,
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *fileService) PresignUpload(ctx context.Context, userID uuid.UUID, input PresignUploadInput) (*PresignUploadOutput, error) {
	fileType, ok := domain.AllowedContentTypes[input.ContentType]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.SizeBytes > s.cfg.MaxFileSizeMB<<20 {
		return nil, domain.ErrFileTooLarge
	}
	if input.Side != domain.FileSideFront && input.Side != domain.FileSideBack {
		return nil, fmt.Errorf("file.PresignUpload: unknown side %q", input.Side)
	}

	doc, err := s.docRepo.GetByID(ctx, userID, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.DocumentStatusCompleted {
		return nil, domain.ErrAlreadyProcessed
	}

	fileID := uuid.New()
	key := fmt.Sprintf("uploads/%s/%s/%s.%s", userID, doc.ID, fileID, fileType)

	file := &domain.DocumentFile{
		ID:          fileID,
		DocumentID:  doc.ID,
		S3Bucket:    s.cfg.Bucket,
		S3Key:       key,
		Side:        input.Side,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		Uploaded:    false,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("file.PresignUpload: %w", err)
	}

	uploadURL, err := s.storage.PresignPut(ctx, s.cfg.Bucket, key, input.ContentType, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("file.PresignUpload: %w", err)
	}

	return &PresignUploadOutput{
		FileID:    fileID,
		UploadURL: uploadURL,
		S3Key:     key,
		ExpiresIn: s.cfg.PresignExpiry,
	}, nil
}

// CompleteUpload marks a presigned upload as done after the client PUT
// succeeds. Only uploaded files are visible to processing.
func (s *fileService) CompleteUpload(ctx context.Context, userID, fileID uuid.UUID) (*domain.DocumentFile, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	// Ownership check through the parent document.
	if _, err := s.docRepo.GetByID(ctx, userID, file.DocumentID); err != nil {
		return nil, err
	}

	if err := s.fileRepo.MarkUploaded(ctx, fileID); err != nil {
		return nil, err
	}
	file.Uploaded = true
	return file, nil
}
