// internal/server/handlers/template.go

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"neighborly/internal/domain/identity"
	"neighborly/internal/domain/template"
	"neighborly/internal/server/respond"
)

// CreateTemplateRequest is the body of POST /templates
type CreateTemplateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Image       string `json:"image" validate:"required"`
	Category    string `json:"category"`
}

// UpdateTemplateRequest is the body of PUT /templates/{id}
type UpdateTemplateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Image       *string `json:"image"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

// TemplateHandler handles template-related HTTP requests
type TemplateHandler struct {
	manager  template.Manager
	validate *validator.Validate
	logger   *zap.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(manager template.Manager, validate *validator.Validate, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		manager:  manager,
		validate: validate,
		logger:   logger.Named("template_handler"),
	}
}

func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.ListTemplates(r.Context(), template.Filter{
		IsActive: queryBool(r, "isActive"),
		Page:     pageFrom(r),
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

func (h *TemplateHandler) ActiveTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.manager.ActiveTemplates(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, templates)
}

// SearchTemplates matches ?q= against name and description
func (h *TemplateHandler) SearchTemplates(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.SearchTemplates(r.Context(), r.URL.Query().Get("q"), pageFrom(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.manager.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, t)
}

func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	admin, _ := identity.FromContext(r.Context())
	t, err := h.manager.CreateTemplate(r.Context(), admin.ID, template.Template{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.Created(w, t)
}

func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req UpdateTemplateRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	t, err := h.manager.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), template.Patch{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, t)
}

func (h *TemplateHandler) ToggleTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.manager.ToggleTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, t)
}

func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, map[string]string{"message": "Template deleted successfully"})
}

func (h *TemplateHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.GetStats(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, stats)
}
