// internal/adapter/storage/template_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neighborly/internal/domain/template"
)

const templateColumns = `id, name, slug, description, image, category, is_active, created_by, created_at, updated_at`

// TemplateStore implements the template store interface using PostgreSQL
type TemplateStore struct {
	db *pgxpool.Pool
}

// NewTemplateStore creates a new PostgreSQL-backed template store
func NewTemplateStore(db *pgxpool.Pool) *TemplateStore {
	return &TemplateStore{db: db}
}

func (s *TemplateStore) CreateTemplate(ctx context.Context, t template.Template) error {
	query := `
		INSERT INTO templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(ctx, query,
		t.ID, t.Name, t.Slug, t.Description, t.Image, t.Category, t.IsActive, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting template: %w", err)
	}
	return nil
}

func (s *TemplateStore) GetTemplate(ctx context.Context, id string) (*template.Template, error) {
	t, err := scanTemplate(s.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, template.ErrNotFound
		}
		return nil, fmt.Errorf("error getting template: %w", err)
	}
	return t, nil
}

// FindTemplates returns one page of templates, newest first
func (s *TemplateStore) FindTemplates(ctx context.Context, filter template.Filter) ([]template.Template, int64, error) {
	w := &where{}
	if filter.IsActive != nil {
		w.add("is_active = %s", *filter.IsActive)
	}
	if filter.Search != "" {
		w.addSame("(name ILIKE ? OR description ILIKE ?)", like(filter.Search))
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM templates`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting templates: %w", err)
	}

	clause, args := w.page(filter.Page.Normalize().Limit, filter.Page.Offset())
	templates, err := s.query(ctx, `SELECT `+templateColumns+` FROM templates`+w.String()+` ORDER BY created_at DESC`+clause, args...)
	if err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// ActiveTemplates returns every active template sorted by name
func (s *TemplateStore) ActiveTemplates(ctx context.Context) ([]template.Template, error) {
	return s.query(ctx, `SELECT `+templateColumns+` FROM templates WHERE is_active ORDER BY name ASC`)
}

func (s *TemplateStore) query(ctx context.Context, query string, args ...any) ([]template.Template, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var templates []template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateStore) UpdateTemplate(ctx context.Context, t template.Template) error {
	query := `
		UPDATE templates SET
			name = $2, slug = $3, description = $4, image = $5, category = $6,
			is_active = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query, t.ID, t.Name, t.Slug, t.Description, t.Image, t.Category, t.IsActive, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return template.ErrNotFound
	}
	return nil
}

func (s *TemplateStore) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return template.ErrNotFound
	}
	return nil
}

// SlugOwner returns the ID of the template using slug, empty when free
func (s *TemplateStore) SlugOwner(ctx context.Context, slug string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM templates WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("error looking up slug: %w", err)
	}
	return id, nil
}

func (s *TemplateStore) TemplateStats(ctx context.Context) (*template.Stats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE is_active),
			count(*) FILTER (WHERE NOT is_active)
		FROM templates
	`

	var stats template.Stats
	if err := s.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Inactive); err != nil {
		return nil, fmt.Errorf("error getting template stats: %w", err)
	}
	return &stats, nil
}

func scanTemplate(row scanner) (*template.Template, error) {
	var t template.Template
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.Image, &t.Category, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
