package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"snapdoc/internal/domain"
	"snapdoc/internal/service"
	"snapdoc/mocks"
)

type documentFixture struct {
	docRepo        *mocks.MockDocumentRepo
	fileRepo       *mocks.MockDocumentFileRepo
	templateRepo   *mocks.MockTemplateRepo
	extractionRepo *mocks.MockExtractionRepo
	errorRepo      *mocks.MockProcessingErrorRepo
	storage        *mocks.MockObjectStorage
	processor      *mocks.MockProcessorService
	svc            service.DocumentService
}

func newDocumentFixture() *documentFixture {
	f := &documentFixture{
		docRepo:        new(mocks.MockDocumentRepo),
		fileRepo:       new(mocks.MockDocumentFileRepo),
		templateRepo:   new(mocks.MockTemplateRepo),
		extractionRepo: new(mocks.MockExtractionRepo),
		errorRepo:      new(mocks.MockProcessingErrorRepo),
		storage:        new(mocks.MockObjectStorage),
		processor:      new(mocks.MockProcessorService),
	}
	f.svc = service.NewDocumentService(
		f.docRepo, f.fileRepo, f.templateRepo, f.extractionRepo, f.errorRepo, f.storage, f.processor)
	return f
}

func TestDocumentCreate_RejectsUnknownType(t *testing.T) {
	f := newDocumentFixture()

	_, err := f.svc.Create(context.Background(), uuid.New(), service.CreateDocumentInput{
		DocumentType: "tax_return",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentCreate_GuestFormRequiresTemplate(t *testing.T) {
	f := newDocumentFixture()

	_, err := f.svc.Create(context.Background(), uuid.New(), service.CreateDocumentInput{
		DocumentType: domain.DocumentTypeGuestForm,
	})

	assert.ErrorIs(t, err, domain.ErrTemplateRequired)
}

func TestDocumentCreate_GuestFormRejectsInactiveTemplate(t *testing.T) {
	f := newDocumentFixture()
	templateID := uuid.New()

	f.templateRepo.On("GetByID", mock.Anything, templateID).Return(&domain.FormTemplate{
		ID: templateID, IsActive: false,
	}, nil)

	_, err := f.svc.Create(context.Background(), uuid.New(), service.CreateDocumentInput{
		DocumentType: domain.DocumentTypeGuestForm,
		TemplateID:   &templateID,
	})

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestDocumentCreate_StartsUploaded(t *testing.T) {
	f := newDocumentFixture()
	userID := uuid.New()

	f.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := f.svc.Create(context.Background(), userID, service.CreateDocumentInput{
		DocumentType: domain.DocumentTypePassport,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusUploaded, doc.Status)
	assert.Equal(t, userID, doc.UserID)
}

func TestDocumentProcess_CompletedIsFinal(t *testing.T) {
	f := newDocumentFixture()
	userID, docID := uuid.New(), uuid.New()

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, Status: domain.DocumentStatusCompleted,
	}, nil)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: docID})

	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	f.processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestDocumentProcess_FailedCanBeRetried(t *testing.T) {
	f := newDocumentFixture()
	userID, docID := uuid.New(), uuid.New()
	input := &service.ProcessInput{UserID: userID, DocumentID: docID}

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, Status: domain.DocumentStatusFailed,
	}, nil)
	f.docRepo.On("UpdateStatus", mock.Anything, docID, domain.DocumentStatusProcessing).Return(nil)
	f.processor.On("Process", mock.Anything, input).Return(&service.ProcessResult{
		ExtractionID: uuid.New(), ConfidenceScore: 0.8,
	}, nil)

	result, err := f.svc.Process(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, 0.8, result.ConfidenceScore)
	f.docRepo.AssertExpectations(t)
}

func TestDocumentStatus_FailedIncludesErrors(t *testing.T) {
	f := newDocumentFixture()
	userID, docID := uuid.New(), uuid.New()

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, Status: domain.DocumentStatusFailed,
	}, nil)
	f.errorRepo.On("ListByDocument", mock.Anything, docID).Return([]domain.ProcessingError{
		{DocumentID: docID, ErrorType: "processing_failed", StepFailed: "ai_extraction"},
	}, nil)

	status, err := f.svc.Status(context.Background(), userID, docID)

	assert.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusFailed, status.Status)
	assert.Len(t, status.Errors, 1)
	assert.Nil(t, status.LatestExtraction)
}

func TestDocumentStatus_CompletedIncludesLatestExtraction(t *testing.T) {
	f := newDocumentFixture()
	userID, docID := uuid.New(), uuid.New()
	extraction := &domain.Extraction{ID: uuid.New(), DocumentID: docID, ConfidenceScore: 0.8}

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, Status: domain.DocumentStatusCompleted,
	}, nil)
	f.extractionRepo.On("GetLatestByDocument", mock.Anything, docID).Return(extraction, nil)

	status, err := f.svc.Status(context.Background(), userID, docID)

	assert.NoError(t, err)
	assert.Equal(t, extraction, status.LatestExtraction)
	assert.Empty(t, status.Errors)
}

func TestDocumentDelete_SurvivesStorageFailure(t *testing.T) {
	f := newDocumentFixture()
	userID, docID := uuid.New(), uuid.New()

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, Status: domain.DocumentStatusUploaded,
	}, nil)
	f.fileRepo.On("ListByDocument", mock.Anything, docID).Return([]domain.DocumentFile{
		{S3Bucket: "snapdoc-test", S3Key: "uploads/a.jpg"},
	}, nil)
	f.storage.On("Delete", mock.Anything, "snapdoc-test", "uploads/a.jpg").Return(assert.AnError)
	f.docRepo.On("Delete", mock.Anything, userID, docID).Return(nil)

	err := f.svc.Delete(context.Background(), userID, docID)

	assert.NoError(t, err)
	f.docRepo.AssertExpectations(t)
}

func TestUpdateExtraction_RejectsInvalidJSON(t *testing.T) {
	f := newDocumentFixture()
	userID, extractionID, docID := uuid.New(), uuid.New(), uuid.New()

	f.extractionRepo.On("GetByID", mock.Anything, extractionID).Return(&domain.Extraction{
		ID: extractionID, DocumentID: docID,
	}, nil)
	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID,
	}, nil)

	_, err := f.svc.UpdateExtraction(context.Background(), userID, extractionID, service.UpdateExtractionInput{
		ExtractionData: json.RawMessage(`{"firstName": `),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidExtraction)
	f.extractionRepo.AssertNotCalled(t, "UpdateData", mock.Anything, mock.Anything)
}

func TestUpdateExtraction_MarksManualCorrection(t *testing.T) {
	f := newDocumentFixture()
	userID, extractionID, docID := uuid.New(), uuid.New(), uuid.New()

	f.extractionRepo.On("GetByID", mock.Anything, extractionID).Return(&domain.Extraction{
		ID: extractionID, DocumentID: docID,
		FieldsForReview: domain.Fields{"firstName"},
	}, nil)
	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID,
	}, nil)
	f.extractionRepo.On("UpdateData", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.IsManuallyCorrected && len(e.FieldsForReview) == 0
	})).Return(nil)

	extraction, err := f.svc.UpdateExtraction(context.Background(), userID, extractionID, service.UpdateExtractionInput{
		ExtractionData: json.RawMessage(`{"firstName": "Anna"}`),
	})

	assert.NoError(t, err)
	assert.True(t, extraction.IsManuallyCorrected)
	f.extractionRepo.AssertExpectations(t)
}

func TestUpdateExtraction_OwnershipEnforced(t *testing.T) {
	f := newDocumentFixture()
	userID, extractionID, docID := uuid.New(), uuid.New(), uuid.New()

	f.extractionRepo.On("GetByID", mock.Anything, extractionID).Return(&domain.Extraction{
		ID: extractionID, DocumentID: docID,
	}, nil)
	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(nil, domain.ErrDocumentNotFound)

	_, err := f.svc.UpdateExtraction(context.Background(), userID, extractionID, service.UpdateExtractionInput{
		ExtractionData: json.RawMessage(`{}`),
	})

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
