// internal/server/handlers/meetup.go

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"neighborly/internal/domain/geo"
	"neighborly/internal/domain/meetup"
	"neighborly/internal/server/respond"
)

// CreateMeetupRequest is the body of POST /meetups
type CreateMeetupRequest struct {
	Title                 string           `json:"title" validate:"required,min=3,max=100"`
	Description           string           `json:"description" validate:"required,min=10,max=2000"`
	Category              string           `json:"category" validate:"required"`
	Type                  meetup.Type      `json:"type" validate:"required,oneof=free paid invite-only"`
	MeetupFormat          meetup.Format    `json:"meetupFormat" validate:"required,oneof=physical virtual"`
	MeetupLocation        string           `json:"meetupLocation" validate:"max=200"`
	VisibilityLocation    string           `json:"visibilityLocation" validate:"max=200"`
	VisibilityRadius      float64          `json:"visibilityRadius" validate:"required,gte=1,lte=50"`
	Location              *meetup.Location `json:"location"`
	VirtualLink           string           `json:"virtualLink" validate:"omitempty,url"`
	MeetingCode           string           `json:"meetingCode"`
	MeetingPassword       string           `json:"meetingPassword"`
	Date                  string           `json:"date" validate:"required"`
	StartTime             string           `json:"startTime" validate:"required,hhmm"`
	EndTime               string           `json:"endTime" validate:"required,hhmm"`
	MaxAttendees          int              `json:"maxAttendees" validate:"gte=0,lte=1000"`
	HasNoLimit            bool             `json:"hasNoLimit"`
	GenderSpecific        bool             `json:"genderSpecific"`
	MaxMale               int              `json:"maxMale" validate:"gte=0"`
	MaxFemale             int              `json:"maxFemale" validate:"gte=0"`
	MaxTransgender        int              `json:"maxTransgender" validate:"gte=0"`
	Tags                  []string         `json:"tags" validate:"max=10,dive,max=30"`
	Image                 string           `json:"image"`
	Price                 float64          `json:"price" validate:"gte=0"`
	PaymentMethod         string           `json:"paymentMethod"`
	AllowChatContinuation bool             `json:"allowChatContinuation"`
}

// UpdateMeetupRequest is the body of PUT /meetups/{id}
type UpdateMeetupRequest struct {
	Title                 *string          `json:"title" validate:"omitempty,min=3,max=100"`
	Description           *string          `json:"description" validate:"omitempty,min=10,max=2000"`
	Category              *string          `json:"category"`
	Type                  *meetup.Type     `json:"type" validate:"omitempty,oneof=free paid invite-only"`
	MeetupFormat          *meetup.Format   `json:"meetupFormat" validate:"omitempty,oneof=physical virtual"`
	MeetupLocation        *string          `json:"meetupLocation" validate:"omitempty,max=200"`
	VisibilityLocation    *string          `json:"visibilityLocation" validate:"omitempty,max=200"`
	VisibilityRadius      *float64         `json:"visibilityRadius" validate:"omitempty,gte=1,lte=50"`
	Location              *meetup.Location `json:"location"`
	VirtualLink           *string          `json:"virtualLink" validate:"omitempty,url"`
	MeetingCode           *string          `json:"meetingCode"`
	MeetingPassword       *string          `json:"meetingPassword"`
	Date                  *string          `json:"date"`
	StartTime             *string          `json:"startTime" validate:"omitempty,hhmm"`
	EndTime               *string          `json:"endTime" validate:"omitempty,hhmm"`
	MaxAttendees          *int             `json:"maxAttendees" validate:"omitempty,gte=0,lte=1000"`
	HasNoLimit            *bool            `json:"hasNoLimit"`
	GenderSpecific        *bool            `json:"genderSpecific"`
	MaxMale               *int             `json:"maxMale" validate:"omitempty,gte=0"`
	MaxFemale             *int             `json:"maxFemale" validate:"omitempty,gte=0"`
	MaxTransgender        *int             `json:"maxTransgender" validate:"omitempty,gte=0"`
	Tags                  []string         `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	Image                 *string          `json:"image"`
	Price                 *float64         `json:"price" validate:"omitempty,gte=0"`
	PaymentMethod         *string          `json:"paymentMethod"`
	AllowChatContinuation *bool            `json:"allowChatContinuation"`
	Status                *meetup.Status   `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

// MeetupHandler handles meetup-related HTTP requests
type MeetupHandler struct {
	manager  meetup.Manager
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMeetupHandler creates a new meetup handler
func NewMeetupHandler(manager meetup.Manager, validate *validator.Validate, logger *zap.Logger) *MeetupHandler {
	return &MeetupHandler{
		manager:  manager,
		validate: validate,
		logger:   logger.Named("meetup_handler"),
	}
}

// CreateMeetup creates a meetup owned by the caller
func (h *MeetupHandler) CreateMeetup(w http.ResponseWriter, r *http.Request) {
	var req CreateMeetupRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	m, err := h.manager.CreateMeetup(r.Context(), currentUser(r), meetup.Meetup{
		Title:                 req.Title,
		Description:           req.Description,
		Category:              req.Category,
		Type:                  req.Type,
		Format:                req.MeetupFormat,
		MeetupLocation:        req.MeetupLocation,
		VisibilityLocation:    req.VisibilityLocation,
		VisibilityRadius:      req.VisibilityRadius,
		Location:              req.Location,
		VirtualLink:           req.VirtualLink,
		MeetingCode:           req.MeetingCode,
		MeetingPassword:       req.MeetingPassword,
		Date:                  date,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		MaxAttendees:          req.MaxAttendees,
		HasNoLimit:            req.HasNoLimit,
		GenderSpecific:        req.GenderSpecific,
		MaxMale:               req.MaxMale,
		MaxFemale:             req.MaxFemale,
		MaxTransgender:        req.MaxTransgender,
		Tags:                  req.Tags,
		Image:                 req.Image,
		Price:                 req.Price,
		PaymentMethod:         req.PaymentMethod,
		AllowChatContinuation: req.AllowChatContinuation,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.Created(w, m)
}

// ListMeetups returns meetups sorted by date. lat and lon together switch
// on the radius filter.
func (h *MeetupHandler) ListMeetups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := meetup.Filter{
		Category:           q.Get("category"),
		Type:               meetup.Type(q.Get("type")),
		Format:             meetup.Format(q.Get("format")),
		Status:             meetup.Status(q.Get("status")),
		Creator:            q.Get("creator"),
		Location:           q.Get("location"),
		VisibilityLocation: q.Get("visibilityLocation"),
		Tags:               queryList(r, "tags"),
		Search:             q.Get("search"),
		Page:               pageFrom(r),
	}
	if radius, ok := queryFloat(r, "visibilityRadius"); ok {
		filter.VisibilityRadius = radius
	}

	lat, hasLat := queryFloat(r, "lat")
	lon, hasLon := queryFloat(r, "lon")
	if hasLat && hasLon {
		radius, _ := queryFloat(r, "radius")
		filter.Area = &geo.Area{
			Center:   geo.Point{Latitude: lat, Longitude: lon},
			RadiusKm: radius,
		}
	}

	result, err := h.manager.ListMeetups(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, result)
}

// GetMeetup returns a meetup by ID
func (h *MeetupHandler) GetMeetup(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager.GetMeetup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, m)
}

// UpdateMeetup applies a partial update from the creator
func (h *MeetupHandler) UpdateMeetup(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeetupRequest
	if err := decode(r, h.validate, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	var date *time.Time
	if req.Date != nil {
		d, err := parseDate("date", *req.Date)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		date = &d
	}

	m, err := h.manager.UpdateMeetup(r.Context(), chi.URLParam(r, "id"), currentUser(r), meetup.Patch{
		Title:                 req.Title,
		Description:           req.Description,
		Category:              req.Category,
		Type:                  req.Type,
		Format:                req.MeetupFormat,
		MeetupLocation:        req.MeetupLocation,
		VisibilityLocation:    req.VisibilityLocation,
		VisibilityRadius:      req.VisibilityRadius,
		Location:              req.Location,
		VirtualLink:           req.VirtualLink,
		MeetingCode:           req.MeetingCode,
		MeetingPassword:       req.MeetingPassword,
		Date:                  date,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		MaxAttendees:          req.MaxAttendees,
		HasNoLimit:            req.HasNoLimit,
		GenderSpecific:        req.GenderSpecific,
		MaxMale:               req.MaxMale,
		MaxFemale:             req.MaxFemale,
		MaxTransgender:        req.MaxTransgender,
		Tags:                  req.Tags,
		Image:                 req.Image,
		Price:                 req.Price,
		PaymentMethod:         req.PaymentMethod,
		AllowChatContinuation: req.AllowChatContinuation,
		Status:                req.Status,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, m)
}

// DeleteMeetup removes a meetup owned by the caller
func (h *MeetupHandler) DeleteMeetup(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteMeetup(r.Context(), chi.URLParam(r, "id"), currentUser(r)); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, map[string]string{"message": "Meetup deleted successfully"})
}

// JoinMeetup adds the caller to the attendees
func (h *MeetupHandler) JoinMeetup(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager.JoinMeetup(r.Context(), chi.URLParam(r, "id"), currentUser(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, m)
}

// LeaveMeetup removes the caller from the attendees
func (h *MeetupHandler) LeaveMeetup(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager.LeaveMeetup(r.Context(), chi.URLParam(r, "id"), currentUser(r))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, m)
}

// GetStats returns meetup counters
func (h *MeetupHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.GetStats(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.OK(w, stats)
}
