package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"snapdoc/internal/domain"
	"snapdoc/internal/port"
)

// TemplateInput is the DTO for creating or updating a form template.
type TemplateInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Fields      []string `json:"fields" binding:"required,min=1"`
	MaxGuests   int      `json:"max_guests" binding:"required,min=1"`
}

// TemplateService defines the form template management contract.
type TemplateService interface {
	List(ctx context.Context) ([]domain.FormTemplate, error)
	Get(ctx context.Context, templateID uuid.UUID) (*domain.FormTemplate, error)
	Create(ctx context.Context, input TemplateInput) (*domain.FormTemplate, error)
	Update(ctx context.Context, templateID uuid.UUID, input TemplateInput) (*domain.FormTemplate, error)
	Deactivate(ctx context.Context, templateID uuid.UUID) error
	SeedDefaults(ctx context.Context) (int, error)
}

type templateService struct {
	templateRepo port.FormTemplateRepository
}

// NewTemplateService creates a new TemplateService implementation.
func NewTemplateService(templateRepo port.FormTemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) List(ctx context.Context) ([]domain.FormTemplate, error) {
	return s.templateRepo.ListActive(ctx)
}

func (s *templateService) Get(ctx context.Context, templateID uuid.UUID) (*domain.FormTemplate, error) {
	return s.templateRepo.GetByID(ctx, templateID)
}

func (s *templateService) Create(ctx context.Context, input TemplateInput) (*domain.FormTemplate, error) {
	fields, err := normalizeFields(input.Fields)
	if err != nil {
		return nil, err
	}

	template := &domain.FormTemplate{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Fields:      fields,
		MaxGuests:   input.MaxGuests,
		IsActive:    true,
	}
	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("template.Create: %w", err)
	}
	return template, nil
}

func (s *templateService) Update(ctx context.Context, templateID uuid.UUID, input TemplateInput) (*domain.FormTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	fields, err := normalizeFields(input.Fields)
	if err != nil {
		return nil, err
	}

	template.Name = strings.TrimSpace(input.Name)
	template.Description = strings.TrimSpace(input.Description)
	template.Fields = fields
	template.MaxGuests = input.MaxGuests
	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) Deactivate(ctx context.Context, templateID uuid.UUID) error {
	return s.templateRepo.Deactivate(ctx, templateID)
}

// SeedDefaults installs the built-in templates on an empty table and
// returns how many were created. Idempotent: a non-empty table is left
// untouched.
func (s *templateService) SeedDefaults(ctx context.Context) (int, error) {
	total, err := s.templateRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		log.Printf("service.template: %d templates present, skipping seed", total)
		return 0, nil
	}

	defaults := DefaultTemplates()
	for i := range defaults {
		if err := s.templateRepo.Create(ctx, &defaults[i]); err != nil {
			return i, fmt.Errorf("template.SeedDefaults: %w", err)
		}
	}
	return len(defaults), nil
}

// DefaultTemplates returns the built-in guest form templates.
func DefaultTemplates() []domain.FormTemplate {
	return []domain.FormTemplate{
		{
			ID:          uuid.New(),
			Name:        "Basic Guest Registration",
			Description: "Standard guest registration form with columns for personal details",
			Fields:      domain.Fields{"firstName", "lastName", "birthDate", "country", "documentType", "documentId"},
			MaxGuests:   5,
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Hotel Check-in Form",
			Description: "Hotel check-in form with room assignment",
			Fields:      domain.Fields{"firstName", "lastName", "documentId", "country", "roomNumber"},
			MaxGuests:   5,
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Event Registration",
			Description: "Simple event registration with contact details",
			Fields:      domain.Fields{"fullName", "email", "phoneNumber"},
			MaxGuests:   3,
			IsActive:    true,
		},
	}
}

func normalizeFields(raw []string) (domain.Fields, error) {
	fields := make(domain.Fields, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, field := range raw {
		field = strings.TrimSpace(field)
		if field == "" || seen[field] {
			continue
		}
		seen[field] = true
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, domain.ErrTemplateInvalid
	}
	return fields, nil
}
