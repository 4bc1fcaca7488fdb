// internal/domain/template/manager.go

package template

import (
	"context"

	"neighborly/internal/apperror"
	"neighborly/internal/domain/paging"
)

var ErrNotFound = apperror.ErrTemplateNotFound

// Filter defines criteria for listing templates. Search matches name or
// description case-insensitively.
type Filter struct {
	IsActive *bool
	Search   string
	Page     paging.Request
}

// Patch carries the fields an update may change. Nil means unchanged.
type Patch struct {
	Name        *string
	Description *string
	Image       *string
	Category    *string
	IsActive    *bool
}

// Apply copies the set fields of p onto t and reports whether the name changed
func (p Patch) Apply(t *Template) (renamed bool) {
	if p.Name != nil && *p.Name != t.Name {
		t.Name = *p.Name
		renamed = true
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Image != nil {
		t.Image = *p.Image
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	return renamed
}

// Stats summarizes templates for the admin dashboard
type Stats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// Manager defines the interface for template management
type Manager interface {
	CreateTemplate(ctx context.Context, adminID string, draft Template) (*Template, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context, filter Filter) (paging.Result[Template], error)
	ActiveTemplates(ctx context.Context) ([]Template, error)
	SearchTemplates(ctx context.Context, query string, page paging.Request) (paging.Result[Template], error)
	UpdateTemplate(ctx context.Context, id string, patch Patch) (*Template, error)
	ToggleTemplate(ctx context.Context, id string) (*Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*Stats, error)
}
