package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"snapdoc/internal/domain"
	"snapdoc/internal/port"
)

type templateRepo struct {
	db *sqlx.DB
}

// NewTemplateRepo creates a new PostgreSQL-backed FormTemplateRepository.
func NewTemplateRepo(db *sqlx.DB) port.FormTemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, template *domain.FormTemplate) error {
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO form_templates (id, name, description, fields, max_guests, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		template.ID, template.Name, template.Description, template.Fields,
		template.MaxGuests, template.IsActive, template.CreatedAt, template.UpdatedAt)
	if err != nil {
		return fmt.Errorf("templateRepo.Create: %w", err)
	}
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, templateID uuid.UUID) (*domain.FormTemplate, error) {
	var template domain.FormTemplate
	err := r.db.GetContext(ctx, &template,
		"SELECT * FROM form_templates WHERE id = $1", templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("templateRepo.GetByID: %w", err)
	}
	return &template, nil
}

func (r *templateRepo) ListActive(ctx context.Context) ([]domain.FormTemplate, error) {
	var templates []domain.FormTemplate
	err := r.db.SelectContext(ctx, &templates,
		"SELECT * FROM form_templates WHERE is_active = true ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("templateRepo.ListActive: %w", err)
	}
	return templates, nil
}

func (r *templateRepo) Update(ctx context.Context, template *domain.FormTemplate) error {
	template.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE form_templates SET name = $1, description = $2, fields = $3,
			max_guests = $4, is_active = $5, updated_at = $6
		 WHERE id = $7`,
		template.Name, template.Description, template.Fields,
		template.MaxGuests, template.IsActive, template.UpdatedAt, template.ID)
	if err != nil {
		return fmt.Errorf("templateRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepo) Deactivate(ctx context.Context, templateID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE form_templates SET is_active = false, updated_at = $1 WHERE id = $2",
		time.Now().UTC(), templateID)
	if err != nil {
		return fmt.Errorf("templateRepo.Deactivate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepo) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM form_templates")
	if err != nil {
		return 0, fmt.Errorf("templateRepo.Count: %w", err)
	}
	return total, nil
}
