package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"snapdoc/internal/domain"
	"snapdoc/internal/export"
	"snapdoc/internal/service"
	"snapdoc/mocks"
)

type exportFixture struct {
	docRepo        *mocks.MockDocumentRepo
	templateRepo   *mocks.MockTemplateRepo
	extractionRepo *mocks.MockExtractionRepo
	svc            service.ExportService
}

func newExportFixture() *exportFixture {
	f := &exportFixture{
		docRepo:        new(mocks.MockDocumentRepo),
		templateRepo:   new(mocks.MockTemplateRepo),
		extractionRepo: new(mocks.MockExtractionRepo),
	}
	f.svc = service.NewExportService(f.docRepo, f.templateRepo, f.extractionRepo)
	return f
}

func csvRecords(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, export.BOM))).ReadAll()
	assert.NoError(t, err)
	return records
}

func TestExportDocument_GuestFormCSV(t *testing.T) {
	f := newExportFixture()
	userID, docID, templateID := uuid.New(), uuid.New(), uuid.New()
	extractionID := uuid.New()

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, DocumentType: domain.DocumentTypeGuestForm,
		TemplateID: &templateID, Status: domain.DocumentStatusCompleted,
	}, nil)
	f.extractionRepo.On("GetLatestByDocument", mock.Anything, docID).Return(&domain.Extraction{
		ID: extractionID, DocumentID: docID,
	}, nil)
	f.templateRepo.On("GetByID", mock.Anything, templateID).Return(&domain.FormTemplate{
		ID: templateID, Fields: domain.Fields{"firstName", "country"}, IsActive: true,
	}, nil)
	f.extractionRepo.On("ListGuests", mock.Anything, extractionID).Return([]domain.GuestExtraction{
		{Position: 1, GuestData: json.RawMessage(`{"firstName": "Ana", "country": "PT"}`)},
		{Position: 3, GuestData: json.RawMessage(`{"firstName": "Luis", "country": null}`)},
	}, nil)

	result, err := f.svc.ExportDocument(context.Background(), userID, docID, service.ExportFormatCSV)

	assert.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Regexp(t, `^guest_form_\d{4}-\d{2}-\d{2}\.csv$`, result.Filename)

	records := csvRecords(t, result.Data)
	assert.Equal(t, [][]string{
		{"Position", "firstName", "country"},
		{"1", "Ana", "PT"},
		{"3", "Luis", ""},
	}, records)
}

func TestExportDocument_PassportSortsFields(t *testing.T) {
	f := newExportFixture()
	userID, docID := uuid.New(), uuid.New()

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, DocumentType: domain.DocumentTypePassport,
		Status: domain.DocumentStatusCompleted,
	}, nil)
	f.extractionRepo.On("GetLatestByDocument", mock.Anything, docID).Return(&domain.Extraction{
		ID: uuid.New(), DocumentID: docID,
		ExtractionData: json.RawMessage(`{"lastName": "Silva", "firstName": "Ana", "documentId": "P123"}`),
	}, nil)

	result, err := f.svc.ExportDocument(context.Background(), userID, docID, service.ExportFormatCSV)

	assert.NoError(t, err)
	records := csvRecords(t, result.Data)
	assert.Equal(t, []string{"Position", "documentId", "firstName", "lastName"}, records[0])
	assert.Equal(t, []string{"1", "P123", "Ana", "Silva"}, records[1])
}

func TestExportDocument_XLSXContentType(t *testing.T) {
	f := newExportFixture()
	userID, docID := uuid.New(), uuid.New()

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, DocumentType: domain.DocumentTypePassport,
		Status: domain.DocumentStatusCompleted,
	}, nil)
	f.extractionRepo.On("GetLatestByDocument", mock.Anything, docID).Return(&domain.Extraction{
		ID: uuid.New(), DocumentID: docID,
		ExtractionData: json.RawMessage(`{"firstName": "Ana"}`),
	}, nil)

	result, err := f.svc.ExportDocument(context.Background(), userID, docID, service.ExportFormatXLSX)

	assert.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
	assert.Regexp(t, `\.xlsx$`, result.Filename)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("PK")))
}

func TestExportDocument_RejectsUnknownFormat(t *testing.T) {
	f := newExportFixture()

	_, err := f.svc.ExportDocument(context.Background(), uuid.New(), uuid.New(), "pdf")

	assert.Error(t, err)
	f.docRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportDocument_IncompleteDocumentHasNothingToExport(t *testing.T) {
	f := newExportFixture()
	userID, docID := uuid.New(), uuid.New()

	f.docRepo.On("GetByID", mock.Anything, userID, docID).Return(&domain.Document{
		ID: docID, UserID: userID, DocumentType: domain.DocumentTypePassport,
		Status: domain.DocumentStatusProcessing,
	}, nil)

	_, err := f.svc.ExportDocument(context.Background(), userID, docID, service.ExportFormatCSV)

	assert.ErrorIs(t, err, domain.ErrExtractionNotFound)
}
