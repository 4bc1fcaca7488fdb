// internal/server/handlers/notice.go

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"neighborly/internal/domain/notice"
	"neighborly/internal/server/respond"
)

// CreateNoticeRequest is the body of POST /notices
type CreateNoticeRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"required,min=10,max=2000"`
	Category    string          `json:"category" validate:"required"`
	Location    string          `json:"location" validate:"required,min=3,max=200"`
	Radius      float64         `json:"radius" validate:"omitempty,gte=1,lte=50"`
	Contact     string          `json:"contact" validate:"max=10"`
	Urgent      bool            `json:"urgent"`
	Duration    notice.Duration `json:"duration" validate:"required"`
}

// UpdateNoticeRequest is the body of PUT /notices/{id}
type UpdateNoticeRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string          `json:"description" validate:"omitempty,min=10,max=2000"`
	Category    *string          `json:"category"`
	Location    *string          `json:"location" validate:"omitempty,min=3,max=200"`
	Radius      *float64         `json:"radius" validate:"omitempty,gte=1,lte=50"`
	Contact     *string          `json:"contact" validate:"omitempty,max=10"`
	Urgent      *bool            `json:"urgent"`
	Duration    *notice.Duration `json:"duration"`
}

// NoticeHandler handles notice-related HTTP requests
type NoticeHandler struct {
	manager  notice.Manager
	validate *validator.Validate
	logger   *zap.Logger
}

// NewNoticeHandler creates a new notice handler
func NewNoticeHandler(manager notice.Manager, validate *validator.Validate, logger *zap.Logger) *NoticeHandler {
	return &NoticeHandler{
		manager:  manager,
		validate: validate,
		logger:   logger.Named("notice_handler"),
	}
}

func (h *NoticeHandler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	var req CreateNoticeRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	n, err := h.manager.CreateNotice(r.Context(), currentUser(r), notice.Notice{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Radius:      req.Radius,
		Contact:     req.Contact,
		Urgent:      req.Urgent,
		Duration:    req.Duration,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.Created(w, n)
}

func (h *NoticeHandler) ListNotices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.manager.ListNotices(r.Context(), notice.Filter{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Status:   notice.Status(q.Get("status")),
		Urgent:   queryBool(r, "urgent"),
		Page:     pageFrom(r),
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

// MyNotices returns the caller's notices
func (h *NoticeHandler) MyNotices(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.ListUserNotices(r.Context(), currentUser(r), pageFrom(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

// SearchByLocation returns active notices whose location contains ?location=
func (h *NoticeHandler) SearchByLocation(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.SearchByLocation(r.Context(), r.URL.Query().Get("location"), pageFrom(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

// UrgentCount returns the caller's urgent quota for the current month
func (h *NoticeHandler) UrgentCount(w http.ResponseWriter, r *http.Request) {
	quota, err := h.manager.GetUrgentQuota(r.Context(), currentUser(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, quota)
}

func (h *NoticeHandler) GetNotice(w http.ResponseWriter, r *http.Request) {
	n, err := h.manager.GetNotice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, n)
}

func (h *NoticeHandler) UpdateNotice(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoticeRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	n, err := h.manager.UpdateNotice(r.Context(), chi.URLParam(r, "id"), currentUser(r), notice.Patch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Radius:      req.Radius,
		Contact:     req.Contact,
		Urgent:      req.Urgent,
		Duration:    req.Duration,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, n)
}

func (h *NoticeHandler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteNotice(r.Context(), chi.URLParam(r, "id"), currentUser(r)); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, map[string]string{"message": "Notice deleted successfully"})
}

func (h *NoticeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.GetStats(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, stats)
}
