package port

import (
	"context"

	"github.com/google/uuid"

	"snapdoc/internal/domain"
)

// FormTemplateRepository defines the contract for form template persistence.
// Templates are managed by an external flow and read-only to the
// extraction core.
type FormTemplateRepository interface {
	Create(ctx context.Context, template *domain.FormTemplate) error
	GetByID(ctx context.Context, templateID uuid.UUID) (*domain.FormTemplate, error)
	ListActive(ctx context.Context) ([]domain.FormTemplate, error)
	Update(ctx context.Context, template *domain.FormTemplate) error
	Deactivate(ctx context.Context, templateID uuid.UUID) error
	Count(ctx context.Context) (int, error)
}
