// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"neighborly/internal/config"
	"neighborly/internal/domain/advert"
	"neighborly/internal/domain/meetup"
	"neighborly/internal/domain/notice"
	"neighborly/internal/domain/template"
	"neighborly/internal/server/handlers"
	"neighborly/internal/server/middleware"
	"neighborly/internal/telemetry"
)

// Dependencies are the services the HTTP layer routes to
type Dependencies struct {
	Meetups   meetup.Manager
	Notices   notice.Manager
	Adverts   advert.Manager
	Templates template.Manager
	Sweeper   handlers.Sweeper
	Feed      handlers.MeetupFeed
	DB        handlers.Pinger
	NATS      handlers.ConnStatus
	Verifier  middleware.TokenVerifier
	Validate  *validator.Validate
	Logger    *zap.Logger
	Version   string
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	router := chi.NewRouter()
	logger := deps.Logger.Named("http")

	// Middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(telemetry.Middleware)
	router.Use(middleware.Logger(logger))
	router.Use(chimiddleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	auth := middleware.NewAuth(deps.Verifier)

	meetupHandler := handlers.NewMeetupHandler(deps.Meetups, deps.Validate, logger)
	noticeHandler := handlers.NewNoticeHandler(deps.Notices, deps.Validate, logger)
	advertHandler := handlers.NewAdvertHandler(deps.Adverts, deps.Validate, logger)
	templateHandler := handlers.NewTemplateHandler(deps.Templates, deps.Validate, logger)
	adminHandler := handlers.NewAdminHandler(deps.Sweeper, logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.NATS, deps.Version)

	router.Get("/api/health", healthHandler.Health)

	// Live meetup feed. Kept outside the request timeout.
	router.Get("/ws/meetups/{id}", handlers.MeetupWebSocketHandler(
		deps.Feed, deps.Meetups, handlers.DefaultWebSocketConfig(), logger,
	))

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}

		r.Route("/meetups", func(r chi.Router) {
			r.With(auth.Optional).Get("/", meetupHandler.ListMeetups)
			r.With(auth.Required).Post("/", meetupHandler.CreateMeetup)
			r.With(auth.Admin).Get("/stats", meetupHandler.GetStats)
			r.With(auth.Optional).Get("/{id}", meetupHandler.GetMeetup)

			r.Group(func(r chi.Router) {
				r.Use(auth.Required)
				r.Put("/{id}", meetupHandler.UpdateMeetup)
				r.Delete("/{id}", meetupHandler.DeleteMeetup)
				r.Post("/{id}/join", meetupHandler.JoinMeetup)
				r.Post("/{id}/leave", meetupHandler.LeaveMeetup)
			})
		})

		r.Route("/notices", func(r chi.Router) {
			r.Get("/", noticeHandler.ListNotices)
			r.Get("/location", noticeHandler.SearchByLocation)
			r.With(auth.Admin).Get("/stats", noticeHandler.GetStats)
			r.Get("/{id}", noticeHandler.GetNotice)

			r.Group(func(r chi.Router) {
				r.Use(auth.Required)
				r.Post("/", noticeHandler.CreateNotice)
				r.Get("/my", noticeHandler.MyNotices)
				r.Get("/urgent-count", noticeHandler.UrgentCount)
				r.Put("/{id}", noticeHandler.UpdateNotice)
				r.Delete("/{id}", noticeHandler.DeleteNotice)
			})
		})

		r.Route("/advertisements", func(r chi.Router) {
			r.Get("/", advertHandler.ListAdvertisements)
			r.Get("/location", advertHandler.SearchByLocation)
			r.Post("/calculate-pricing", advertHandler.CalculatePricing)
			r.Get("/locations/states", advertHandler.States)
			r.Get("/locations/cities/{state}", advertHandler.Cities)
			r.Get("/locations/localities/{city}", advertHandler.Localities)
			r.With(auth.Admin).Get("/stats", advertHandler.GetStats)
			r.Get("/{id}", advertHandler.GetAdvertisement)

			r.Group(func(r chi.Router) {
				r.Use(auth.Required)
				r.Post("/", advertHandler.CreateAdvertisement)
				r.Get("/my", advertHandler.MyAdvertisements)
				r.Put("/{id}", advertHandler.UpdateAdvertisement)
				r.Delete("/{id}", advertHandler.DeleteAdvertisement)
				r.Post("/{id}/checkout", advertHandler.Checkout)
				r.Post("/{id}/activate", advertHandler.Activate)
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", templateHandler.ListTemplates)
			r.Get("/active", templateHandler.ActiveTemplates)
			r.Get("/search", templateHandler.SearchTemplates)
			r.Get("/{id}", templateHandler.GetTemplate)

			r.Group(func(r chi.Router) {
				r.Use(auth.Admin)
				r.Get("/stats", templateHandler.GetStats)
				r.Post("/", templateHandler.CreateTemplate)
				r.Put("/{id}", templateHandler.UpdateTemplate)
				r.Patch("/{id}/toggle", templateHandler.ToggleTemplate)
				r.Delete("/{id}", templateHandler.DeleteTemplate)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Admin)
			r.Post("/sweep", adminHandler.Sweep)
			r.Get("/sweep/stats", adminHandler.SweepStats)
		})
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
