package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"snapdoc/internal/ai"
	"snapdoc/internal/config"
	"snapdoc/internal/domain"
	"snapdoc/internal/service"
	"snapdoc/mocks"
)

type processorFixture struct {
	docRepo        *mocks.MockDocumentRepo
	templateRepo   *mocks.MockTemplateRepo
	extractionRepo *mocks.MockExtractionRepo
	errorRepo      *mocks.MockProcessingErrorRepo
	storage        *mocks.MockObjectStorage
	primary        *mocks.MockExtractor
	secondary      *mocks.MockExtractor
	alerts         *mocks.MockEmailSender
	svc            service.ProcessorService
}

func newProcessorFixture(alertsTo string) *processorFixture {
	f := &processorFixture{
		docRepo:        new(mocks.MockDocumentRepo),
		templateRepo:   new(mocks.MockTemplateRepo),
		extractionRepo: new(mocks.MockExtractionRepo),
		errorRepo:      new(mocks.MockProcessingErrorRepo),
		storage:        new(mocks.MockObjectStorage),
		primary:        new(mocks.MockExtractor),
		secondary:      new(mocks.MockExtractor),
		alerts:         new(mocks.MockEmailSender),
	}
	s3Cfg := &config.S3Config{Bucket: "snapdoc-test", PublicURL: "https://files.example.com", PresignExpiry: 900}
	retryCfg := ai.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, ExponentialBase: 2,
		RetryableKinds: []ai.ErrorKind{ai.ErrKindRateLimit, ai.ErrKindTimeout, ai.ErrKindNetwork}}
	f.svc = service.NewProcessorService(
		f.docRepo, f.templateRepo, f.extractionRepo, f.errorRepo, f.storage,
		s3Cfg, f.primary, f.secondary, retryCfg, f.alerts, alertsTo)
	return f
}

func passportDoc(userID uuid.UUID) *domain.Document {
	docID := uuid.New()
	return &domain.Document{
		ID:           docID,
		UserID:       userID,
		DocumentType: domain.DocumentTypePassport,
		Status:       domain.DocumentStatusProcessing,
		Files: []domain.DocumentFile{
			{ID: uuid.New(), DocumentID: docID, S3Bucket: "snapdoc-test", S3Key: "uploads/front.jpg", Side: domain.FileSideFront, Uploaded: true},
		},
	}
}

func extractionOf(t *testing.T, repo *mocks.MockExtractionRepo) *domain.Extraction {
	t.Helper()
	for _, call := range repo.Calls {
		if call.Method == "Create" {
			return call.Arguments.Get(1).(*domain.Extraction)
		}
	}
	t.Fatal("extraction was never created")
	return nil
}

func TestProcess_SingleProviderSuccess(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.MatchedBy(func(input ai.ExtractInput) bool {
		return input.ImageURL == "https://files.example.com/uploads/front.jpg" &&
			input.DocumentType == domain.DocumentTypePassport
	})).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Ana", "lastName": "Silva"}},
	}, nil)
	f.extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusCompleted).Return(nil)

	result, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: doc.ID})

	assert.NoError(t, err)
	assert.Empty(t, result.FieldsToReview)
	assert.Equal(t, 0.8, result.ConfidenceScore)

	extraction := extractionOf(t, f.extractionRepo)
	assert.Equal(t, "gemini", extraction.ModelName)
	var data map[string]interface{}
	assert.NoError(t, json.Unmarshal(extraction.ExtractionData, &data))
	assert.Equal(t, "Ana", data["firstName"])
	f.secondary.AssertNotCalled(t, "ExtractDataFromDocument", mock.Anything, mock.Anything)
	f.errorRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcess_DualVerificationReconciles(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Ana", "lastName": "Silva"}},
	}, nil)
	f.secondary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "openai",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Anna", "lastName": "Silva"}},
	}, nil)
	f.extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusCompleted).Return(nil)

	result, err := f.svc.Process(context.Background(), &service.ProcessInput{
		UserID: userID, DocumentID: doc.ID, EnableDualVerification: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"firstName"}, result.FieldsToReview)
	// one of two fields agrees: 0.6 + 0.5*0.4
	assert.Equal(t, 0.8, result.ConfidenceScore)

	extraction := extractionOf(t, f.extractionRepo)
	assert.Equal(t, "gemini+openai", extraction.ModelName)
	var data map[string]interface{}
	assert.NoError(t, json.Unmarshal(extraction.ExtractionData, &data))
	assert.Equal(t, "Ana", data["firstName"], "primary wins disagreements")
}

func TestProcess_SecondaryFailureSwallowed(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Ana"}},
	}, nil)
	f.secondary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(nil,
		ai.NewError("openai", ai.ErrKindValidation, "no response content"))
	f.extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusCompleted).Return(nil)

	result, err := f.svc.Process(context.Background(), &service.ProcessInput{
		UserID: userID, DocumentID: doc.ID, EnableDualVerification: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.7, result.ConfidenceScore)
	assert.Empty(t, result.FieldsToReview)

	extraction := extractionOf(t, f.extractionRepo)
	assert.Equal(t, "gemini", extraction.ModelName, "failed secondary is not credited")
	f.errorRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcess_BackSideMergedOverFront(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)
	doc.DocumentType = domain.DocumentTypeDrivingLicense
	doc.Files = append(doc.Files, domain.DocumentFile{
		ID: uuid.New(), DocumentID: doc.ID, S3Bucket: "snapdoc-test", S3Key: "uploads/back.jpg", Side: domain.FileSideBack, Uploaded: true,
	})

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.MatchedBy(func(input ai.ExtractInput) bool {
		return input.ImageURL == "https://files.example.com/uploads/front.jpg"
	})).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Ana", "documentId": "OLD"}},
	}, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.MatchedBy(func(input ai.ExtractInput) bool {
		return input.ImageURL == "https://files.example.com/uploads/back.jpg"
	})).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"documentId": "DL-99", "expiryDate": "2030-01-01"}},
	}, nil)
	f.extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusCompleted).Return(nil)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: doc.ID})

	assert.NoError(t, err)
	extraction := extractionOf(t, f.extractionRepo)
	var data map[string]interface{}
	assert.NoError(t, json.Unmarshal(extraction.ExtractionData, &data))
	assert.Equal(t, "DL-99", data["documentId"], "back side wins key collisions")
	assert.Equal(t, "Ana", data["firstName"])
	assert.Equal(t, "2030-01-01", data["expiryDate"])
}

func TestProcess_GuestFormPersistsNonEmptyGuests(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)
	doc.DocumentType = domain.DocumentTypeGuestForm
	templateID := uuid.New()
	doc.TemplateID = &templateID
	template := &domain.FormTemplate{
		ID: templateID, Name: "Basic Guest Registration",
		Fields: domain.Fields{"firstName", "lastName"}, MaxGuests: 5, IsActive: true,
	}

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.templateRepo.On("GetByID", mock.Anything, templateID).Return(template, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.MatchedBy(func(input ai.ExtractInput) bool {
		return input.Template == template && input.GuestCount == 3
	})).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data: &ai.Payload{GuestForm: &ai.GuestFormExtraction{
			Guests: []ai.ExtractedData{
				{"firstName": "Ana", "lastName": "Silva"},
				{"firstName": nil, "lastName": "  "},
				{"firstName": "Luis", "lastName": nil},
			},
			DetectedGuestCount: 3,
		}},
	}, nil)
	f.extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.extractionRepo.On("CreateGuests", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusCompleted).Return(nil)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{
		UserID: userID, DocumentID: doc.ID, GuestCount: 3,
	})

	assert.NoError(t, err)
	extraction := extractionOf(t, f.extractionRepo)
	assert.NotNil(t, extraction.DetectedGuestCount)
	assert.Equal(t, 3, *extraction.DetectedGuestCount)

	var persisted []domain.GuestExtraction
	for _, call := range f.extractionRepo.Calls {
		if call.Method == "CreateGuests" {
			persisted = call.Arguments.Get(1).([]domain.GuestExtraction)
		}
	}
	assert.Len(t, persisted, 2, "the all-empty column is dropped")
	assert.Equal(t, 1, persisted[0].Position)
	assert.Equal(t, 3, persisted[1].Position, "positions keep the original column index")
}

func TestProcess_GuestFormSingleShapedResponseFails(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)
	doc.DocumentType = domain.DocumentTypeGuestForm
	templateID := uuid.New()
	doc.TemplateID = &templateID

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.templateRepo.On("GetByID", mock.Anything, templateID).Return(&domain.FormTemplate{
		ID: templateID, Fields: domain.Fields{"firstName"}, MaxGuests: 5, IsActive: true,
	}, nil)
	// flat field map where the guests payload was expected
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Ana"}},
	}, nil)
	f.errorRepo.On("Create", mock.Anything, mock.MatchedBy(func(procErr *domain.ProcessingError) bool {
		return procErr.StepFailed == "ai_extraction"
	})).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusFailed).Return(nil)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: doc.ID})

	assert.Error(t, err)
	var aiErr *ai.Error
	assert.True(t, errors.As(err, &aiErr))
	assert.Equal(t, ai.ErrKindValidation, aiErr.Kind)
	f.errorRepo.AssertExpectations(t)
	f.docRepo.AssertExpectations(t)
	f.extractionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcess_SecondaryShapeMismatchSwallowed(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Ana"}},
	}, nil)
	f.secondary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "openai",
		Data:     &ai.Payload{GuestForm: &ai.GuestFormExtraction{DetectedGuestCount: 1}},
	}, nil)
	f.extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusCompleted).Return(nil)

	result, err := f.svc.Process(context.Background(), &service.ProcessInput{
		UserID: userID, DocumentID: doc.ID, EnableDualVerification: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.7, result.ConfidenceScore)
	extraction := extractionOf(t, f.extractionRepo)
	assert.Equal(t, "gemini", extraction.ModelName)
}

func TestProcess_GuestFormWithoutTemplateFails(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)
	doc.DocumentType = domain.DocumentTypeGuestForm
	doc.TemplateID = nil

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.errorRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusFailed).Return(nil)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: doc.ID})

	assert.ErrorIs(t, err, domain.ErrTemplateRequired)
	f.primary.AssertNotCalled(t, "ExtractDataFromDocument", mock.Anything, mock.Anything)
}

func TestProcess_ExtractionFailureRecordsErrorAndAlerts(t *testing.T) {
	f := newProcessorFixture("ops@example.com")
	userID := uuid.New()
	doc := passportDoc(userID)

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(nil,
		ai.NewError("gemini", ai.ErrKindQuotaExceeded, "provider quota exhausted"))
	f.errorRepo.On("Create", mock.Anything, mock.MatchedBy(func(procErr *domain.ProcessingError) bool {
		return procErr.DocumentID == doc.ID &&
			procErr.ErrorType == "processing_failed" &&
			procErr.StepFailed == "ai_extraction"
	})).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusFailed).Return(nil)
	f.alerts.On("SendProcessingFailureAlert", mock.Anything, "ops@example.com", doc.ID.String(), mock.Anything).Return(nil)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: doc.ID})

	assert.Error(t, err)
	var aiErr *ai.Error
	assert.True(t, errors.As(err, &aiErr))
	assert.Equal(t, ai.ErrKindQuotaExceeded, aiErr.Kind)
	f.errorRepo.AssertExpectations(t)
	f.docRepo.AssertExpectations(t)
	f.alerts.AssertExpectations(t)
	f.extractionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcess_NoUploadedFilesFails(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)
	doc.Files = nil

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.errorRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusFailed).Return(nil)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: doc.ID})

	assert.ErrorIs(t, err, domain.ErrNoFiles)
}

func TestProcess_MissingDocumentIsNotRecorded(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	docID := uuid.New()

	f.docRepo.On("GetWithFiles", mock.Anything, userID, docID).Return(nil, domain.ErrDocumentNotFound)

	_, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: docID})

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	f.errorRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.docRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_RetriesTransientPrimaryError(t *testing.T) {
	f := newProcessorFixture("")
	userID := uuid.New()
	doc := passportDoc(userID)

	f.docRepo.On("GetWithFiles", mock.Anything, userID, doc.ID).Return(doc, nil)
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(nil,
		&ai.Error{Kind: ai.ErrKindNetwork, Message: "connection reset", Provider: "gemini"}).Once()
	f.primary.On("ExtractDataFromDocument", mock.Anything, mock.Anything).Return(&ai.ProviderResponse{
		Success:  true,
		Provider: "gemini",
		Data:     &ai.Payload{Single: ai.ExtractedData{"firstName": "Ana"}},
	}, nil).Once()
	f.extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.DocumentStatusCompleted).Return(nil)

	result, err := f.svc.Process(context.Background(), &service.ProcessInput{UserID: userID, DocumentID: doc.ID})

	assert.NoError(t, err)
	assert.Equal(t, 0.8, result.ConfidenceScore)
	f.primary.AssertNumberOfCalls(t, "ExtractDataFromDocument", 2)
}
