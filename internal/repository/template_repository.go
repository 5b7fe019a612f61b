package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
)

// TemplateRepositoryInterface covers both template kinds. Templates are
// treated as immutable once a sent campaign references them, so there is no
// update path.
type TemplateRepositoryInterface interface {
	CreateEmail(ctx context.Context, t *model.EmailTemplate) error
	GetEmailByID(ctx context.Context, id string) (*model.EmailTemplate, error)
	ListEmail(ctx context.Context) ([]model.EmailTemplate, error)
	DeleteEmail(ctx context.Context, id string) error

	CreateWhatsApp(ctx context.Context, t *model.WhatsAppTemplate) error
	GetWhatsAppByID(ctx context.Context, id string) (*model.WhatsAppTemplate, error)
	ListWhatsApp(ctx context.Context) ([]model.WhatsAppTemplate, error)
	DeleteWhatsApp(ctx context.Context, id string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) CreateEmail(ctx context.Context, t *model.EmailTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO email_templates (id, name, subject, content, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.Name, t.Subject, t.Content, t.CreatedBy, t.CreatedAt)
	return err
}

func (r *TemplateRepository) GetEmailByID(ctx context.Context, id string) (*model.EmailTemplate, error) {
	query := `
        SELECT id, name, subject, content, created_by, created_at, updated_at
        FROM email_templates WHERE id = $1
    `
	var t model.EmailTemplate
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Subject, &t.Content, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("email template", id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) ListEmail(ctx context.Context) ([]model.EmailTemplate, error) {
	query := `
        SELECT id, name, subject, content, created_by, created_at, updated_at
        FROM email_templates ORDER BY created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.EmailTemplate{}
	for rows.Next() {
		var t model.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Content, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) DeleteEmail(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound("email template", id)
	}
	return nil
}

func (r *TemplateRepository) CreateWhatsApp(ctx context.Context, t *model.WhatsAppTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO whatsapp_templates (id, name, content, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.Name, t.Content, t.CreatedBy, t.CreatedAt)
	return err
}

func (r *TemplateRepository) GetWhatsAppByID(ctx context.Context, id string) (*model.WhatsAppTemplate, error) {
	query := `
        SELECT id, name, content, created_by, created_at, updated_at
        FROM whatsapp_templates WHERE id = $1
    `
	var t model.WhatsAppTemplate
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Content, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("whatsapp template", id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) ListWhatsApp(ctx context.Context) ([]model.WhatsAppTemplate, error) {
	query := `
        SELECT id, name, content, created_by, created_at, updated_at
        FROM whatsapp_templates ORDER BY created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.WhatsAppTemplate{}
	for rows.Next() {
		var t model.WhatsAppTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Content, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) DeleteWhatsApp(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM whatsapp_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound("whatsapp template", id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
