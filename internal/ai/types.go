package ai

import (
	"context"

	"snapdoc/internal/domain"
)

// ExtractedData maps field names to extracted values. Values are scalars
// only: string, float64, bool, or nil (nil means "not found").
type ExtractedData map[string]any

// GuestFormExtraction is the result shape for guest-form documents.
// DetectedGuestCount is the provider's own estimate and may differ from
// len(Guests); Guests is authoritative for persistence.
type GuestFormExtraction struct {
	Guests             []ExtractedData `json:"guests"`
	DetectedGuestCount int             `json:"detectedGuestCount"`
}

// Payload is the parsed provider output: exactly one of Single or
// GuestForm is set, discriminated by the presence of a "guests" key in
// the raw response.
type Payload struct {
	Single    ExtractedData        `json:"single,omitempty"`
	GuestForm *GuestFormExtraction `json:"guestForm,omitempty"`
}

// IsGuestForm reports whether the payload holds a guest-form extraction.
func (p *Payload) IsGuestForm() bool {
	return p != nil && p.GuestForm != nil
}

// ProviderResponse is the common currency between adapters and the
// reconciliation and scoring components. It lives for the duration of
// one processing run.
type ProviderResponse struct {
	Success  bool
	Data     *Payload
	Provider string
	Err      string
}

// ReconciliationResult is the outcome of merging two extraction results.
type ReconciliationResult struct {
	FinalData      ExtractedData
	FieldsToReview []string
}

// ExtractInput carries the arguments for one adapter call. Template must
// be set when DocumentType is guest_form; that is the caller's contract.
// GuestCount is an optional hint (0 = absent) forwarded into the prompt,
// never enforced against the result.
type ExtractInput struct {
	ImageURL     string
	DocumentType domain.DocumentType
	Template     *domain.FormTemplate
	GuestCount   int
}

// Extractor abstracts one vision-capable AI provider. Implementations
// never return raw provider errors; failures are classified as *Error
// before escaping.
type Extractor interface {
	ExtractDataFromDocument(ctx context.Context, input ExtractInput) (*ProviderResponse, error)
}
