package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrNoFiles             = errors.New("document has no uploaded files")
	ErrAlreadyProcessed    = errors.New("document already processed")
	ErrTemplateNotFound    = errors.New("form template not found")
	ErrTemplateRequired    = errors.New("guest form documents require a template")
	ErrTemplateInvalid     = errors.New("form template has no fields")
	ErrInvalidFieldList    = errors.New("invalid field list encoding")
	ErrExtractionNotFound  = errors.New("extraction not found")
	ErrInvalidExtraction   = errors.New("extraction data is not valid JSON")
	ErrInvalidDocumentType = errors.New("invalid document type")
)
