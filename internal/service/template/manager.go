// internal/service/template/manager.go

package template

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"neighborly/internal/apperror"
	"neighborly/internal/clock"
	"neighborly/internal/domain/event"
	"neighborly/internal/domain/paging"
	"neighborly/internal/domain/template"
)

const maxSlugAttempts = 10

// TemplateStore defines the storage interface for templates
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t template.Template) error

	// GetTemplate retrieves a template, template.ErrNotFound when missing
	GetTemplate(ctx context.Context, id string) (*template.Template, error)

	// FindTemplates returns templates newest first
	FindTemplates(ctx context.Context, filter template.Filter) ([]template.Template, int64, error)

	// ActiveTemplates returns every active template sorted by name
	ActiveTemplates(ctx context.Context) ([]template.Template, error)

	UpdateTemplate(ctx context.Context, t template.Template) error
	DeleteTemplate(ctx context.Context, id string) error

	// SlugOwner returns the ID of the template using s, empty when free
	SlugOwner(ctx context.Context, s string) (string, error)

	TemplateStats(ctx context.Context) (*template.Stats, error)
}

// TemplateManager implements the template.Manager interface
type TemplateManager struct {
	store  TemplateStore
	events event.Publisher
	clock  clock.Clock
	logger *zap.Logger
}

// NewTemplateManager creates a new template manager
func NewTemplateManager(store TemplateStore, events event.Publisher, clk clock.Clock, logger *zap.Logger) *TemplateManager {
	return &TemplateManager{
		store:  store,
		events: events,
		clock:  clk,
		logger: logger.Named("template"),
	}
}

// CreateTemplate stores a new active template with a unique slug
func (tm *TemplateManager) CreateTemplate(ctx context.Context, adminID string, draft template.Template) (*template.Template, error) {
	if err := validate(&draft); err != nil {
		return nil, err
	}

	now := tm.clock.Now()
	t := draft
	t.ID = uuid.New().String()
	t.CreatedBy = adminID
	t.IsActive = true
	t.CreatedAt = now
	t.UpdatedAt = now

	s, err := tm.uniqueSlug(ctx, t.Name, t.ID)
	if err != nil {
		return nil, err
	}
	t.Slug = s

	if err := tm.store.CreateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("error saving template: %w", err)
	}

	tm.publish(ctx, event.TypeCreated, t.ID, adminID)
	return &t, nil
}

// GetTemplate returns a template by ID
func (tm *TemplateManager) GetTemplate(ctx context.Context, id string) (*template.Template, error) {
	t, err := tm.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting template: %w", err)
	}
	return t, nil
}

// ListTemplates returns templates newest first
func (tm *TemplateManager) ListTemplates(ctx context.Context, filter template.Filter) (paging.Result[template.Template], error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := tm.store.FindTemplates(ctx, filter)
	if err != nil {
		return paging.Result[template.Template]{}, fmt.Errorf("error finding templates: %w", err)
	}
	return paging.NewResult(items, total, filter.Page), nil
}

// ActiveTemplates returns every active template sorted by name
func (tm *TemplateManager) ActiveTemplates(ctx context.Context) ([]template.Template, error) {
	items, err := tm.store.ActiveTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("error finding active templates: %w", err)
	}
	if items == nil {
		items = []template.Template{}
	}
	return items, nil
}

// SearchTemplates matches active templates by name or description
func (tm *TemplateManager) SearchTemplates(ctx context.Context, query string, page paging.Request) (paging.Result[template.Template], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return paging.Result[template.Template]{}, apperror.Validation(apperror.CodeValidation, "Search query is required")
	}
	active := true
	return tm.ListTemplates(ctx, template.Filter{IsActive: &active, Search: query, Page: page})
}

// UpdateTemplate applies a patch and regenerates the slug on rename
func (tm *TemplateManager) UpdateTemplate(ctx context.Context, id string, patch template.Patch) (*template.Template, error) {
	t, err := tm.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting template: %w", err)
	}

	renamed := patch.Apply(t)
	if err := validate(t); err != nil {
		return nil, err
	}
	if renamed {
		s, err := tm.uniqueSlug(ctx, t.Name, t.ID)
		if err != nil {
			return nil, err
		}
		t.Slug = s
	}
	t.UpdatedAt = tm.clock.Now()

	if err := tm.store.UpdateTemplate(ctx, *t); err != nil {
		return nil, fmt.Errorf("error updating template: %w", err)
	}

	tm.publish(ctx, event.TypeUpdated, t.ID, "")
	return t, nil
}

// ToggleTemplate flips the active flag
func (tm *TemplateManager) ToggleTemplate(ctx context.Context, id string) (*template.Template, error) {
	t, err := tm.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting template: %w", err)
	}
	active := !t.IsActive
	return tm.UpdateTemplate(ctx, id, template.Patch{IsActive: &active})
}

// DeleteTemplate removes a template
func (tm *TemplateManager) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := tm.store.GetTemplate(ctx, id); err != nil {
		return fmt.Errorf("error getting template: %w", err)
	}
	if err := tm.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("error deleting template: %w", err)
	}
	tm.publish(ctx, event.TypeDeleted, id, "")
	return nil
}

// GetStats returns template counters
func (tm *TemplateManager) GetStats(ctx context.Context) (*template.Stats, error) {
	stats, err := tm.store.TemplateStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting template stats: %w", err)
	}
	return stats, nil
}

// uniqueSlug derives a slug from name, suffixing a counter on collision.
// A slug already owned by selfID is reused.
func (tm *TemplateManager) uniqueSlug(ctx context.Context, name, selfID string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "template"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		owner, err := tm.store.SlugOwner(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("error checking slug: %w", err)
		}
		if owner == "" || owner == selfID {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return base + "-" + uuid.New().String()[:8], nil
}

func (tm *TemplateManager) publish(ctx context.Context, eventType, id, userID string) {
	err := tm.events.Publish(ctx, event.Event{
		Entity:     event.EntityTemplate,
		Type:       eventType,
		EntityID:   id,
		UserID:     userID,
		OccurredAt: tm.clock.Now(),
	})
	if err != nil {
		tm.logger.Warn("failed to publish template event", zap.String("template_id", id), zap.Error(err))
	}
}

func validate(t *template.Template) error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return invalid("name", "Template name is required")
	case len(t.Name) > template.MaxName:
		return invalid("name", "Template name cannot exceed 100 characters")
	case len(t.Description) > template.MaxDescription:
		return invalid("description", "Description cannot exceed 500 characters")
	case strings.TrimSpace(t.Image) == "":
		return invalid("image", "Template image is required")
	}
	return nil
}

func invalid(field, msg string) *apperror.Error {
	err := apperror.Validation(apperror.CodeValidation, "Validation failed")
	err.Fields = []map[string]string{{field: msg}}
	return err
}
