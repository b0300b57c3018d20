package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"snapdoc/internal/domain"
	"snapdoc/internal/port"
)

// CreateDocumentInput is the DTO for document creation.
type CreateDocumentInput struct {
	DocumentType domain.DocumentType `json:"document_type" binding:"required"`
	TemplateID   *uuid.UUID          `json:"template_id"`
}

// UpdateExtractionInput is the DTO for manual extraction corrections.
type UpdateExtractionInput struct {
	ExtractionData  json.RawMessage `json:"extraction_data" binding:"required"`
	FieldsForReview []string        `json:"fields_for_review"`
}

// DocumentStatusOutput is the processing state returned to polling clients.
type DocumentStatusOutput struct {
	DocumentID       uuid.UUID                `json:"document_id"`
	Status           domain.DocumentStatus    `json:"status"`
	LatestExtraction *domain.Extraction       `json:"latest_extraction,omitempty"`
	Errors           []domain.ProcessingError `json:"errors,omitempty"`
}

// DocumentService defines the document lifecycle contract.
type DocumentService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateDocumentInput) (*domain.Document, error)
	Get(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	Delete(ctx context.Context, userID, docID uuid.UUID) error
	Process(ctx context.Context, input *ProcessInput) (*ProcessResult, error)
	Status(ctx context.Context, userID, docID uuid.UUID) (*DocumentStatusOutput, error)
	Extractions(ctx context.Context, userID, docID uuid.UUID) ([]domain.Extraction, error)
	Guests(ctx context.Context, userID, docID uuid.UUID) ([]domain.GuestExtraction, error)
	UpdateExtraction(ctx context.Context, userID, extractionID uuid.UUID, input UpdateExtractionInput) (*domain.Extraction, error)
}

type documentService struct {
	docRepo        port.DocumentRepository
	fileRepo       port.DocumentFileRepository
	templateRepo   port.FormTemplateRepository
	extractionRepo port.ExtractionRepository
	errorRepo      port.ProcessingErrorRepository
	storage        port.ObjectStorage
	processor      ProcessorService
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	fileRepo port.DocumentFileRepository,
	templateRepo port.FormTemplateRepository,
	extractionRepo port.ExtractionRepository,
	errorRepo port.ProcessingErrorRepository,
	storage port.ObjectStorage,
	processor ProcessorService,
) DocumentService {
	return &documentService{
		docRepo:        docRepo,
		fileRepo:       fileRepo,
		templateRepo:   templateRepo,
		extractionRepo: extractionRepo,
		errorRepo:      errorRepo,
		storage:        storage,
		processor:      processor,
	}
}

func (s *documentService) Create(ctx context.Context, userID uuid.UUID, input CreateDocumentInput) (*domain.Document, error) {
	if !domain.ValidDocumentTypes[input.DocumentType] {
		return nil, domain.ErrInvalidDocumentType
	}
	if input.DocumentType == domain.DocumentTypeGuestForm {
		if input.TemplateID == nil {
			return nil, domain.ErrTemplateRequired
		}
		template, err := s.templateRepo.GetByID(ctx, *input.TemplateID)
		if err != nil {
			return nil, err
		}
		if !template.IsActive {
			return nil, domain.ErrTemplateNotFound
		}
	}

	doc := &domain.Document{
		ID:           uuid.New(),
		UserID:       userID,
		DocumentType: input.DocumentType,
		TemplateID:   input.TemplateID,
		Status:       domain.DocumentStatusUploaded,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("document.Create: %w", err)
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetWithFiles(ctx, userID, docID)
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.ListByUser(ctx, userID, offset, limit)
}

func (s *documentService) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}

	files, err := s.fileRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := s.storage.Delete(ctx, file.S3Bucket, file.S3Key); err != nil {
			// Orphaned objects are cheaper than a stuck delete.
			log.Printf("service.document: deleting s3 object %s/%s: %v", file.S3Bucket, file.S3Key, err)
		}
	}

	return s.docRepo.Delete(ctx, userID, docID)
}

// Process kicks off an extraction run. Completed documents are final and
// cannot be reprocessed; failed documents can be retried.
func (s *documentService) Process(ctx context.Context, input *ProcessInput) (*ProcessResult, error) {
	doc, err := s.docRepo.GetByID(ctx, input.UserID, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.DocumentStatusCompleted {
		return nil, domain.ErrAlreadyProcessed
	}

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusProcessing); err != nil {
		return nil, err
	}

	return s.processor.Process(ctx, input)
}

func (s *documentService) Status(ctx context.Context, userID, docID uuid.UUID) (*DocumentStatusOutput, error) {
	doc, err := s.docRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	out := &DocumentStatusOutput{DocumentID: doc.ID, Status: doc.Status}

	if doc.Status == domain.DocumentStatusCompleted {
		extraction, err := s.extractionRepo.GetLatestByDocument(ctx, doc.ID)
		if err == nil {
			out.LatestExtraction = extraction
		}
	}
	if doc.Status == domain.DocumentStatusFailed {
		procErrs, err := s.errorRepo.ListByDocument(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		out.Errors = procErrs
	}
	return out, nil
}

func (s *documentService) Extractions(ctx context.Context, userID, docID uuid.UUID) ([]domain.Extraction, error) {
	if _, err := s.docRepo.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	return s.extractionRepo.ListByDocument(ctx, docID)
}

func (s *documentService) Guests(ctx context.Context, userID, docID uuid.UUID) ([]domain.GuestExtraction, error) {
	if _, err := s.docRepo.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	extraction, err := s.extractionRepo.GetLatestByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.extractionRepo.ListGuests(ctx, extraction.ID)
}

func (s *documentService) UpdateExtraction(ctx context.Context, userID, extractionID uuid.UUID, input UpdateExtractionInput) (*domain.Extraction, error) {
	extraction, err := s.extractionRepo.GetByID(ctx, extractionID)
	if err != nil {
		return nil, err
	}
	// Ownership check through the parent document.
	if _, err := s.docRepo.GetByID(ctx, userID, extraction.DocumentID); err != nil {
		return nil, err
	}

	if !json.Valid(input.ExtractionData) {
		return nil, domain.ErrInvalidExtraction
	}

	extraction.ExtractionData = input.ExtractionData
	extraction.FieldsForReview = input.FieldsForReview
	extraction.IsManuallyCorrected = true
	if err := s.extractionRepo.UpdateData(ctx, extraction); err != nil {
		return nil, err
	}
	return extraction, nil
}
