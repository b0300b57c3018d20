package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"snapdoc/internal/ai"
	"snapdoc/internal/config"
	"snapdoc/internal/domain"
	"snapdoc/internal/port"
)

// ProcessInput is the DTO for one document processing run.
type ProcessInput struct {
	UserID                 uuid.UUID
	DocumentID             uuid.UUID
	EnableDualVerification bool
	GuestCount             int // optional hint for guest forms, 0 = absent
}

// ProcessResult summarizes a completed processing run.
type ProcessResult struct {
	ExtractionID    uuid.UUID `json:"extraction_id"`
	FieldsToReview  []string  `json:"fields_to_review"`
	ConfidenceScore float64   `json:"confidence_score"`
}

// ProcessorService runs the extraction pipeline for one document:
// prompt, provider call(s), reconciliation, scoring, persistence.
type ProcessorService interface {
	Process(ctx context.Context, input *ProcessInput) (*ProcessResult, error)
}

type processorService struct {
	docRepo        port.DocumentRepository
	templateRepo   port.FormTemplateRepository
	extractionRepo port.ExtractionRepository
	errorRepo      port.ProcessingErrorRepository
	storage        port.ObjectStorage
	s3Cfg          *config.S3Config
	primary        ai.Extractor
	secondary      ai.Extractor // nil disables dual verification
	retryCfg       ai.RetryConfig
	alerts         port.EmailSender
	alertsTo       string
}

// NewProcessorService creates a ProcessorService. secondary may be nil,
// in which case dual-verification requests run single-provider.
func NewProcessorService(
	docRepo port.DocumentRepository,
	templateRepo port.FormTemplateRepository,
	extractionRepo port.ExtractionRepository,
	errorRepo port.ProcessingErrorRepository,
	storage port.ObjectStorage,
	s3Cfg *config.S3Config,
	primary ai.Extractor,
	secondary ai.Extractor,
	retryCfg ai.RetryConfig,
	alerts port.EmailSender,
	alertsTo string,
) ProcessorService {
	return &processorService{
		docRepo:        docRepo,
		templateRepo:   templateRepo,
		extractionRepo: extractionRepo,
		errorRepo:      errorRepo,
		storage:        storage,
		s3Cfg:          s3Cfg,
		primary:        primary,
		secondary:      secondary,
		retryCfg:       retryCfg,
		alerts:         alerts,
		alertsTo:       alertsTo,
	}
}

// Process executes one run to a terminal state: the document ends up
// completed with a persisted extraction, or failed with a logged
// processing error. There is no partial-completion status.
func (s *processorService) Process(ctx context.Context, input *ProcessInput) (*ProcessResult, error) {
	started := time.Now()

	doc, err := s.docRepo.GetWithFiles(ctx, input.UserID, input.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	if len(doc.Files) == 0 {
		return nil, s.fail(ctx, doc, "load_files", domain.ErrNoFiles)
	}

	var template *domain.FormTemplate
	if doc.DocumentType == domain.DocumentTypeGuestForm {
		if doc.TemplateID == nil {
			return nil, s.fail(ctx, doc, "load_template", domain.ErrTemplateRequired)
		}
		template, err = s.templateRepo.GetByID(ctx, *doc.TemplateID)
		if err != nil {
			return nil, s.fail(ctx, doc, "load_template", err)
		}
	}

	frontFile, backFile := splitSides(doc.Files)

	frontURL, err := s.imageURL(ctx, frontFile)
	if err != nil {
		return nil, s.fail(ctx, doc, "resolve_image_url", err)
	}

	extractInput := ai.ExtractInput{
		ImageURL:     frontURL,
		DocumentType: doc.DocumentType,
		Template:     template,
		GuestCount:   input.GuestCount,
	}

	primaryResp, err := s.callExtractor(ctx, s.primary, extractInput)
	if err != nil {
		return nil, s.fail(ctx, doc, "ai_extraction", err)
	}
	if err := validatePayloadShape(doc.DocumentType, primaryResp); err != nil {
		return nil, s.fail(ctx, doc, "ai_extraction", err)
	}

	// Back side of cards: merged over the front, failures swallowed so
	// front-only data still completes the run.
	if backFile != nil && doc.DocumentType != domain.DocumentTypeGuestForm {
		s.mergeBackSide(ctx, doc.ID, primaryResp, extractInput, backFile)
	}

	var secondaryResp *ai.ProviderResponse
	if input.EnableDualVerification && primaryResp.Success && s.secondary != nil {
		resp, secErr := s.callExtractor(ctx, s.secondary, extractInput)
		if secErr == nil {
			secErr = validatePayloadShape(doc.DocumentType, resp)
		}
		if secErr != nil {
			// Swallowed: the primary result completes the run without
			// reconciliation, at a reduced confidence.
			log.Printf("service.processor: secondary verification failed for %s: %v", doc.ID, secErr)
			secondaryResp = &ai.ProviderResponse{Success: false, Provider: providerOf(secErr), Err: secErr.Error()}
		} else {
			secondaryResp = resp
		}
	}

	fieldsToReview := []string{}
	var extractionData json.RawMessage
	var detectedGuestCount *int

	if doc.DocumentType == domain.DocumentTypeGuestForm {
		// Guest forms are never field-diffed: dual verification uses the
		// primary result unchanged.
		guestForm := primaryResp.Data.GuestForm
		extractionData, err = json.Marshal(guestForm)
		if err != nil {
			return nil, s.fail(ctx, doc, "persist_extraction", err)
		}
		detectedGuestCount = &guestForm.DetectedGuestCount
	} else {
		finalData := primaryResp.Data.Single
		if secondaryResp != nil {
			reconciliation := ai.Reconcile(*primaryResp, *secondaryResp)
			finalData = reconciliation.FinalData
			fieldsToReview = reconciliation.FieldsToReview
		}
		extractionData, err = json.Marshal(finalData)
		if err != nil {
			return nil, s.fail(ctx, doc, "persist_extraction", err)
		}
	}

	confidence := ai.ConfidenceScore(*primaryResp, secondaryResp)

	extraction := &domain.Extraction{
		ID:                 uuid.New(),
		DocumentID:         doc.ID,
		ModelName:          modelName(primaryResp, secondaryResp),
		ExtractionData:     extractionData,
		FieldsForReview:    fieldsToReview,
		ConfidenceScore:    confidence,
		DetectedGuestCount: detectedGuestCount,
		ProcessingTimeMs:   time.Since(started).Milliseconds(),
	}
	if err := s.extractionRepo.Create(ctx, extraction); err != nil {
		return nil, s.fail(ctx, doc, "persist_extraction", err)
	}

	if doc.DocumentType == domain.DocumentTypeGuestForm {
		if err := s.persistGuests(ctx, extraction.ID, primaryResp.Data.GuestForm); err != nil {
			return nil, s.fail(ctx, doc, "persist_guests", err)
		}
	}

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusCompleted); err != nil {
		return nil, s.fail(ctx, doc, "update_status", err)
	}

	log.Printf("service.processor: document %s processed (model=%s, confidence=%.2f, took=%s)",
		doc.ID, extraction.ModelName, confidence, time.Since(started))

	return &ProcessResult{
		ExtractionID:    extraction.ID,
		FieldsToReview:  fieldsToReview,
		ConfidenceScore: confidence,
	}, nil
}

// callExtractor wraps one adapter invocation with the retry policy. Rate
// limiting is consulted inside the adapter before each underlying call.
func (s *processorService) callExtractor(ctx context.Context, extractor ai.Extractor, input ai.ExtractInput) (*ai.ProviderResponse, error) {
	return ai.WithRetry(ctx, s.retryCfg, func(ctx context.Context) (*ai.ProviderResponse, error) {
		return extractor.ExtractDataFromDocument(ctx, input)
	})
}

// validatePayloadShape rejects a successful provider result whose shape
// does not match the document type: guest forms need the guests payload,
// every other type a flat field map. Shape drift is a model failure, not
// a caller bug, so it goes through the normal failure path.
func validatePayloadShape(docType domain.DocumentType, resp *ai.ProviderResponse) error {
	if resp.Data == nil {
		return ai.NewError(resp.Provider, ai.ErrKindValidation, "provider returned no payload")
	}
	if docType == domain.DocumentTypeGuestForm {
		if resp.Data.GuestForm == nil {
			return ai.NewError(resp.Provider, ai.ErrKindValidation, "expected guest form payload, got single-document fields")
		}
		return nil
	}
	if resp.Data.Single == nil {
		return ai.NewError(resp.Provider, ai.ErrKindValidation, "expected single-document fields, got guest form payload")
	}
	return nil
}

// mergeBackSide extracts the back image and shallow-merges its fields
// over the front's (back wins on key collision). A back-side failure is
// logged and swallowed.
func (s *processorService) mergeBackSide(ctx context.Context, docID uuid.UUID, front *ai.ProviderResponse, input ai.ExtractInput, backFile *domain.DocumentFile) {
	backURL, err := s.imageURL(ctx, backFile)
	if err != nil {
		log.Printf("service.processor: back image URL for %s: %v", docID, err)
		return
	}
	backInput := input
	backInput.ImageURL = backURL

	backResp, err := s.callExtractor(ctx, s.primary, backInput)
	if err != nil {
		log.Printf("service.processor: back image extraction for %s failed: %v", docID, err)
		return
	}
	if backResp.Data == nil || backResp.Data.IsGuestForm() || front.Data == nil || front.Data.IsGuestForm() {
		return
	}
	for key, value := range backResp.Data.Single {
		front.Data.Single[key] = value
	}
}

// persistGuests writes one child record per guest with at least one
// non-empty field. All-null guests are false detections of table
// columns, not real guests, and are silently dropped.
func (s *processorService) persistGuests(ctx context.Context, extractionID uuid.UUID, guestForm *ai.GuestFormExtraction) error {
	var guests []domain.GuestExtraction
	for i, guest := range guestForm.Guests {
		if isEmptyGuest(guest) {
			continue
		}
		data, err := json.Marshal(guest)
		if err != nil {
			return fmt.Errorf("marshaling guest %d: %w", i+1, err)
		}
		guests = append(guests, domain.GuestExtraction{
			ID:           uuid.New(),
			ExtractionID: extractionID,
			Position:     i + 1,
			GuestData:    data,
		})
	}
	if len(guests) == 0 {
		return nil
	}
	return s.extractionRepo.CreateGuests(ctx, guests)
}

func isEmptyGuest(guest ai.ExtractedData) bool {
	for _, value := range guest {
		switch v := value.(type) {
		case nil:
		case string:
			if strings.TrimSpace(v) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// imageURL resolves a provider-fetchable URL for an uploaded file:
// either the configured public bucket domain or a presigned GET.
func (s *processorService) imageURL(ctx context.Context, file *domain.DocumentFile) (string, error) {
	if s.s3Cfg.PublicURL != "" {
		escaped := url.URL{Path: file.S3Key}
		return strings.TrimRight(s.s3Cfg.PublicURL, "/") + "/" + strings.TrimLeft(escaped.EscapedPath(), "/"), nil
	}
	return s.storage.PresignGet(ctx, file.S3Bucket, file.S3Key, s.s3Cfg.PresignExpiry)
}

// splitSides picks the primary (front-tagged, else first) and the
// optional back file.
func splitSides(files []domain.DocumentFile) (front, back *domain.DocumentFile) {
	front = &files[0]
	for i := range files {
		switch files[i].Side {
		case domain.FileSideFront:
			front = &files[i]
		case domain.FileSideBack:
			back = &files[i]
		}
	}
	return front, back
}

func modelName(primary *ai.ProviderResponse, secondary *ai.ProviderResponse) string {
	if secondary != nil && secondary.Success {
		return primary.Provider + "+" + secondary.Provider
	}
	return primary.Provider
}

func providerOf(err error) string {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		return aiErr.Provider
	}
	return "secondary"
}

// fail logs a classified processing error against the document, marks it
// failed, and optionally fires an ops alert. The original error is
// returned for the caller's response.
func (s *processorService) fail(ctx context.Context, doc *domain.Document, step string, cause error) error {
	log.Printf("service.processor: document %s failed at %s: %v", doc.ID, step, cause)

	details, _ := json.Marshal(map[string]interface{}{
		"error":     cause.Error(),
		"kind":      errorKind(cause),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	procErr := &domain.ProcessingError{
		ID:           uuid.New(),
		DocumentID:   doc.ID,
		ErrorType:    "processing_failed",
		ErrorMessage: cause.Error(),
		StepFailed:   step,
		ErrorDetails: details,
	}
	if err := s.errorRepo.Create(ctx, procErr); err != nil {
		log.Printf("service.processor: recording processing error for %s: %v", doc.ID, err)
	}

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusFailed); err != nil {
		log.Printf("service.processor: marking %s failed: %v", doc.ID, err)
	}

	if s.alerts != nil && s.alertsTo != "" {
		if err := s.alerts.SendProcessingFailureAlert(ctx, s.alertsTo, doc.ID.String(), cause.Error()); err != nil {
			log.Printf("service.processor: failure alert for %s: %v", doc.ID, err)
		}
	}

	return fmt.Errorf("%s: %w", step, cause)
}

func errorKind(err error) string {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		return string(aiErr.Kind)
	}
	return "internal"
}
