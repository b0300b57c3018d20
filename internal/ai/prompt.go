package ai

import (
	"fmt"
	"strings"

	"snapdoc/internal/domain"
)

const basePrompt = `You are an expert document data extraction AI. Analyze the image of the document provided. Extract the key information and return it ONLY as a valid JSON object. Do not include any other text or markdown formatting.`

// PromptForDocument returns the extraction prompt for single-subject
// documents. The required field lists are fixed per document type, not
// template-driven.
func PromptForDocument(documentType domain.DocumentType) (string, error) {
	switch documentType {
	case domain.DocumentTypePassport:
		return basePrompt + ` The required fields are: "firstName", "lastName", "documentNumber", "dateOfBirth", "expiryDate", "nationality".`, nil
	case domain.DocumentTypeDrivingLicense:
		return basePrompt + ` The required fields are: "firstName", "lastName", "documentNumber", "dateOfBirth", "expiryDate", "address", "vehicleClasses".`, nil
	default:
		return "", fmt.Errorf("no prompt for document type %q: %w", documentType, domain.ErrInvalidDocumentType)
	}
}

// BuildGuestFormPrompt interpolates a form template's field list, the
// maximum-guest ceiling, and an optional guest-count hint into the
// guest-form instruction. guestCount <= 0 omits the hint clause. The
// only failure mode is a structurally invalid template (empty field
// list), which is a configuration error, never a retryable AI error.
//
// The prompt wording is load-bearing: guest forms are tables where each
// guest occupies one COLUMN, and providers reliably transpose the data
// unless told so explicitly.
func BuildGuestFormPrompt(template *domain.FormTemplate, guestCount int) (string, error) {
	if template == nil || len(template.Fields) == 0 {
		return "", domain.ErrTemplateInvalid
	}

	countHint := ""
	if guestCount > 0 {
		countHint = fmt.Sprintf("\n- User indicated there are approximately %d guests on this form", guestCount)
	}

	fieldLines := make([]string, len(template.Fields))
	for i, f := range template.Fields {
		fieldLines[i] = fmt.Sprintf("%q: \"extracted_value_or_null\"", f)
	}

	return fmt.Sprintf(`You are analyzing a guest registration form image. This is a table format where each COLUMN represents a different guest and each ROW represents a specific piece of information.

FORM STRUCTURE:
- This is a table with guests as COLUMNS (vertical layout)
- Each guest occupies one column
- Rows contain different data fields for each guest
- Fields expected: %s
- Maximum expected guests: %d%s

EXTRACTION RULES:
1. Scan each column from left to right (Guest 1, Guest 2, Guest 3, etc.)
2. For each guest column, extract all available field values from top to bottom
3. If a field is empty, use null. Never omit the key
4. If handwriting is unclear, use your best interpretation

Return the data in this exact JSON format:
{
  "guests": [
    {
      %s
    }
  ],
  "detectedGuestCount": number_of_guests_found
}

Extract data for ALL guests visible in the image, even if some fields are empty.`,
		strings.Join(template.Fields, ", "),
		template.MaxGuests,
		countHint,
		strings.Join(fieldLines, ",\n      "),
	), nil
}

// PromptFor builds the prompt for any extract input, dispatching between
// the fixed single-document prompts and the template-driven guest-form
// builder.
func PromptFor(input ExtractInput) (string, error) {
	if input.DocumentType == domain.DocumentTypeGuestForm {
		return BuildGuestFormPrompt(input.Template, input.GuestCount)
	}
	return PromptForDocument(input.DocumentType)
}
