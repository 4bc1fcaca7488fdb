// internal/server/handlers/advert.go

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"neighborly/internal/domain/advert"
	"neighborly/internal/server/respond"
)

// CreateAdvertRequest is the body of POST /advertisements
type CreateAdvertRequest struct {
	TemplateID          string          `json:"templateId" validate:"required"`
	Category            string          `json:"category" validate:"omitempty,oneof=services products events housing jobs other"`
	Heading             string          `json:"heading" validate:"required,max=50"`
	BriefDescription    string          `json:"briefDescription" validate:"required,max=100"`
	ContactInfo         string          `json:"contactInfo" validate:"required,max=30"`
	Location            string          `json:"location" validate:"required,max=50"`
	Website             string          `json:"website" validate:"omitempty,url"`
	Icon                string          `json:"icon" validate:"required"`
	DetailedHeading     string          `json:"detailedHeading" validate:"required,max=100"`
	DetailedDescription string          `json:"detailedDescription" validate:"required,max=500"`
	SpecialOffers       string          `json:"specialOffers" validate:"max=200"`
	DetailedLocation    string          `json:"detailedLocation" validate:"max=100"`
	DetailedWebsite     string          `json:"detailedWebsite" validate:"omitempty,url"`
	DetailedContactInfo string          `json:"detailedContactInfo" validate:"max=30"`
	AdditionalDetails   string          `json:"additionalDetails" validate:"max=300"`
	State               string          `json:"state" validate:"required"`
	City                string          `json:"city" validate:"required"`
	Localities          []string        `json:"localities" validate:"required"`
	Duration            advert.Duration `json:"duration"`
	UploadedFiles       []string        `json:"uploadedFiles" validate:"max=5"`
}

// UpdateAdvertRequest is the body of PUT /advertisements/{id}
type UpdateAdvertRequest struct {
	TemplateID          *string          `json:"templateId"`
	Category            *string          `json:"category" validate:"omitempty,oneof=services products events housing jobs other"`
	Heading             *string          `json:"heading" validate:"omitempty,max=50"`
	BriefDescription    *string          `json:"briefDescription" validate:"omitempty,max=100"`
	ContactInfo         *string          `json:"contactInfo" validate:"omitempty,max=30"`
	Location            *string          `json:"location" validate:"omitempty,max=50"`
	Website             *string          `json:"website" validate:"omitempty,url"`
	Icon                *string          `json:"icon"`
	DetailedHeading     *string          `json:"detailedHeading" validate:"omitempty,max=100"`
	DetailedDescription *string          `json:"detailedDescription" validate:"omitempty,max=500"`
	SpecialOffers       *string          `json:"specialOffers" validate:"omitempty,max=200"`
	DetailedLocation    *string          `json:"detailedLocation" validate:"omitempty,max=100"`
	DetailedWebsite     *string          `json:"detailedWebsite" validate:"omitempty,url"`
	DetailedContactInfo *string          `json:"detailedContactInfo" validate:"omitempty,max=30"`
	AdditionalDetails   *string          `json:"additionalDetails" validate:"omitempty,max=300"`
	State               *string          `json:"state"`
	City                *string          `json:"city"`
	Localities          []string         `json:"localities"`
	Duration            *advert.Duration `json:"duration"`
	UploadedFiles       []string         `json:"uploadedFiles" validate:"omitempty,max=5"`
}

// PricingRequest is the body of POST /advertisements/calculate-pricing
type PricingRequest struct {
	Localities []string        `json:"localities"`
	Duration   advert.Duration `json:"duration"`
}

// AdvertHandler handles advertisement-related HTTP requests
type AdvertHandler struct {
	manager  advert.Manager
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAdvertHandler creates a new advertisement handler
func NewAdvertHandler(manager advert.Manager, validate *validator.Validate, logger *zap.Logger) *AdvertHandler {
	return &AdvertHandler{
		manager:  manager,
		validate: validate,
		logger:   logger.Named("advert_handler"),
	}
}

// CreateAdvertisement prices and stores a draft advertisement
func (h *AdvertHandler) CreateAdvertisement(w http.ResponseWriter, r *http.Request) {
	var req CreateAdvertRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	a, err := h.manager.CreateAdvertisement(r.Context(), currentUser(r), advert.Advertisement{
		TemplateID:          req.TemplateID,
		Category:            req.Category,
		Heading:             req.Heading,
		BriefDescription:    req.BriefDescription,
		ContactInfo:         req.ContactInfo,
		Location:            req.Location,
		Website:             req.Website,
		Icon:                req.Icon,
		DetailedHeading:     req.DetailedHeading,
		DetailedDescription: req.DetailedDescription,
		SpecialOffers:       req.SpecialOffers,
		DetailedLocation:    req.DetailedLocation,
		DetailedWebsite:     req.DetailedWebsite,
		DetailedContactInfo: req.DetailedContactInfo,
		AdditionalDetails:   req.AdditionalDetails,
		State:               req.State,
		City:                req.City,
		Localities:          req.Localities,
		Duration:            req.Duration,
		UploadedFiles:       req.UploadedFiles,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.Created(w, a)
}

func (h *AdvertHandler) ListAdvertisements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.manager.ListAdvertisements(r.Context(), advert.Filter{
		State:  q.Get("state"),
		City:   q.Get("city"),
		Status: advert.Status(q.Get("status")),
		Page:   pageFrom(r),
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

// MyAdvertisements returns the caller's advertisements
func (h *AdvertHandler) MyAdvertisements(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.ListUserAdvertisements(r.Context(), currentUser(r), pageFrom(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

// SearchByLocation returns active advertisements targeting the location.
// localities is comma-separated and matches any.
func (h *AdvertHandler) SearchByLocation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.manager.SearchByLocation(r.Context(), q.Get("state"), q.Get("city"), queryList(r, "localities"), pageFrom(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

// CalculatePricing previews the price of a run without storing anything
func (h *AdvertHandler) CalculatePricing(w http.ResponseWriter, r *http.Request) {
	var req PricingRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	pricing, err := h.manager.CalculatePricing(req.Localities, req.Duration.Hours, req.Duration.Days)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, pricing)
}

func (h *AdvertHandler) States(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, advert.States())
}

func (h *AdvertHandler) Cities(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, advert.Cities(chi.URLParam(r, "state")))
}

func (h *AdvertHandler) Localities(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, advert.Localities(chi.URLParam(r, "city")))
}

func (h *AdvertHandler) GetAdvertisement(w http.ResponseWriter, r *http.Request) {
	a, err := h.manager.GetAdvertisement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, a)
}

func (h *AdvertHandler) UpdateAdvertisement(w http.ResponseWriter, r *http.Request) {
	var req UpdateAdvertRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	a, err := h.manager.UpdateAdvertisement(r.Context(), chi.URLParam(r, "id"), currentUser(r), advert.Patch{
		TemplateID:          req.TemplateID,
		Category:            req.Category,
		Heading:             req.Heading,
		BriefDescription:    req.BriefDescription,
		ContactInfo:         req.ContactInfo,
		Location:            req.Location,
		Website:             req.Website,
		Icon:                req.Icon,
		DetailedHeading:     req.DetailedHeading,
		DetailedDescription: req.DetailedDescription,
		SpecialOffers:       req.SpecialOffers,
		DetailedLocation:    req.DetailedLocation,
		DetailedWebsite:     req.DetailedWebsite,
		DetailedContactInfo: req.DetailedContactInfo,
		AdditionalDetails:   req.AdditionalDetails,
		State:               req.State,
		City:                req.City,
		Localities:          req.Localities,
		Duration:            req.Duration,
		UploadedFiles:       req.UploadedFiles,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, a)
}

func (h *AdvertHandler) DeleteAdvertisement(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteAdvertisement(r.Context(), chi.URLParam(r, "id"), currentUser(r)); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, map[string]string{"message": "Advertisement deleted successfully"})
}

// Checkout opens a payment for a draft advertisement
func (h *AdvertHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.manager.Checkout(r.Context(), chi.URLParam(r, "id"), currentUser(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, checkout)
}

// Activate moves a paid draft to active
func (h *AdvertHandler) Activate(w http.ResponseWriter, r *http.Request) {
	a, err := h.manager.Activate(r.Context(), chi.URLParam(r, "id"), currentUser(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, a)
}

func (h *AdvertHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.GetStats(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, stats)
}
