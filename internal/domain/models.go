package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user of the capture app.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents one captured document awaiting or holding extraction results.
type Document struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	UserID       uuid.UUID      `db:"user_id" json:"user_id"`
	DocumentType DocumentType   `db:"document_type" json:"document_type"`
	TemplateID   *uuid.UUID     `db:"template_id" json:"template_id"`
	Status       DocumentStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`

	// Populated by joins, not a column.
	Files []DocumentFile `db:"-" json:"files,omitempty"`
}

// DocumentFile represents one uploaded image belonging to a document.
type DocumentFile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DocumentID  uuid.UUID `db:"document_id" json:"document_id"`
	S3Bucket    string    `db:"s3_bucket" json:"s3_bucket"`
	S3Key       string    `db:"s3_key" json:"s3_key"`
	Side        FileSide  `db:"side" json:"side"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	Uploaded    bool      `db:"uploaded" json:"uploaded"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FormTemplate describes the shape of a multi-guest registration form.
// Fields is an ordered list of field names; order matters for prompt
// construction. Templates are read-only to the extraction core.
type FormTemplate struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Fields      Fields    `db:"fields" json:"fields"`
	MaxGuests   int       `db:"max_guests" json:"max_guests"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Fields is a JSON-encoded ordered string list stored in a jsonb column.
type Fields []string

// Value implements driver.Valuer for jsonb storage.
func (f Fields) Value() (interface{}, error) {
	return json.Marshal([]string(f))
}

// Scan implements sql.Scanner for jsonb storage.
func (f *Fields) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(f))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(f))
	case nil:
		*f = nil
		return nil
	}
	return ErrInvalidFieldList
}

// Extraction holds the persisted result of one processing run.
type Extraction struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	DocumentID          uuid.UUID       `db:"document_id" json:"document_id"`
	ModelName           string          `db:"model_name" json:"model_name"`
	ExtractionData      json.RawMessage `db:"extraction_data" json:"extraction_data"`
	FieldsForReview     Fields          `db:"fields_for_review" json:"fields_for_review"`
	ConfidenceScore     float64         `db:"confidence_score" json:"confidence_score"`
	DetectedGuestCount  *int            `db:"detected_guest_count" json:"detected_guest_count,omitempty"`
	ProcessingTimeMs    int64           `db:"processing_time_ms" json:"processing_time_ms"`
	IsManuallyCorrected bool            `db:"is_manually_corrected" json:"is_manually_corrected"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// GuestExtraction is one guest row extracted from a guest-form document.
// Position is the 1-based column index on the form.
type GuestExtraction struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ExtractionID uuid.UUID       `db:"extraction_id" json:"extraction_id"`
	Position     int             `db:"position" json:"position"`
	GuestData    json.RawMessage `db:"guest_data" json:"guest_data"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// ProcessingError records a failed processing run attached to a document.
type ProcessingError struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	DocumentID   uuid.UUID       `db:"document_id" json:"document_id"`
	ErrorType    string          `db:"error_type" json:"error_type"`
	ErrorMessage string          `db:"error_message" json:"error_message"`
	StepFailed   string          `db:"step_failed" json:"step_failed"`
	ErrorDetails json.RawMessage `db:"error_details" json:"error_details"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
