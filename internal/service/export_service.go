package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"snapdoc/internal/domain"
	"snapdoc/internal/export"
	"snapdoc/internal/port"
)

// Export formats accepted by ExportService.
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// ExportResult is a rendered export ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders completed extractions as CSV or XLSX.
type ExportService interface {
	ExportDocument(ctx context.Context, userID, docID uuid.UUID, format string) (*ExportResult, error)
}

type exportService struct {
	docRepo        port.DocumentRepository
	templateRepo   port.FormTemplateRepository
	extractionRepo port.ExtractionRepository
}

// NewExportService creates a new ExportService implementation.
func NewExportService(
	docRepo port.DocumentRepository,
	templateRepo port.FormTemplateRepository,
	extractionRepo port.ExtractionRepository,
) ExportService {
	return &exportService{
		docRepo:        docRepo,
		templateRepo:   templateRepo,
		extractionRepo: extractionRepo,
	}
}

func (s *exportService) ExportDocument(ctx context.Context, userID, docID uuid.UUID, format string) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}

	doc, err := s.docRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusCompleted {
		return nil, domain.ErrExtractionNotFound
	}

	extraction, err := s.extractionRepo.GetLatestByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	var sheet *export.GuestSheet
	if doc.DocumentType == domain.DocumentTypeGuestForm {
		sheet, err = s.guestSheet(ctx, doc, extraction)
	} else {
		sheet, err = singleSheet(extraction)
	}
	if err != nil {
		return nil, err
	}

	return render(sheet, string(doc.DocumentType), format)
}

func (s *exportService) guestSheet(ctx context.Context, doc *domain.Document, extraction *domain.Extraction) (*export.GuestSheet, error) {
	if doc.TemplateID == nil {
		return nil, domain.ErrTemplateRequired
	}
	template, err := s.templateRepo.GetByID(ctx, *doc.TemplateID)
	if err != nil {
		return nil, err
	}

	guests, err := s.extractionRepo.ListGuests(ctx, extraction.ID)
	if err != nil {
		return nil, err
	}

	sheet := &export.GuestSheet{Fields: template.Fields}
	for _, guest := range guests {
		var values map[string]any
		if err := json.Unmarshal(guest.GuestData, &values); err != nil {
			return nil, fmt.Errorf("export: decoding guest %d: %w", guest.Position, err)
		}
		sheet.Rows = append(sheet.Rows, export.GuestRow{Position: guest.Position, Values: values})
	}
	return sheet, nil
}

// singleSheet renders a passport or license extraction as a one-row
// sheet with sorted field columns.
func singleSheet(extraction *domain.Extraction) (*export.GuestSheet, error) {
	var values map[string]any
	if err := json.Unmarshal(extraction.ExtractionData, &values); err != nil {
		return nil, fmt.Errorf("export: decoding extraction: %w", err)
	}

	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return &export.GuestSheet{
		Fields: fields,
		Rows:   []export.GuestRow{{Position: 1, Values: values}},
	}, nil
}

func render(sheet *export.GuestSheet, name, format string) (*ExportResult, error) {
	var buf bytes.Buffer
	switch format {
	case ExportFormatXLSX:
		if err := sheet.WriteXLSX(&buf); err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    export.BuildFilename(name, "xlsx"),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        buf.Bytes(),
		}, nil
	default:
		if err := sheet.WriteCSV(&buf); err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    export.BuildFilename(name, "csv"),
			ContentType: "text/csv; charset=utf-8",
			Data:        buf.Bytes(),
		}, nil
	}
}
