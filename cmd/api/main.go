// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"neighborly/internal/adapter/events"
	"neighborly/internal/adapter/lock"
	"neighborly/internal/adapter/payment"
	"neighborly/internal/adapter/storage"
	"neighborly/internal/auth"
	"neighborly/internal/clock"
	"neighborly/internal/config"
	"neighborly/internal/domain/advert"
	"neighborly/internal/logger"
	"neighborly/internal/server"
	"neighborly/internal/server/handlers"
	advertService "neighborly/internal/service/advert"
	geoService "neighborly/internal/service/geo"
	meetupService "neighborly/internal/service/meetup"
	noticeService "neighborly/internal/service/notice"
	"neighborly/internal/service/sweep"
	templateService "neighborly/internal/service/template"
	"neighborly/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.Environment, cfg.Name)
	defer func() { _ = log.Sync() }()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	tel, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		CollectorAddr:  cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		log.Fatal("failed to initialize telemetry", zap.Error(err))
	}

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	natsConn, err := events.Connect(events.Config{
		URL:           cfg.NATS.URL,
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWait,
		SubjectPrefix: cfg.NATS.SubjectPrefix,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Close()

	publisher := events.NewPublisher(natsConn, cfg.NATS.SubjectPrefix, log)

	var locker sweep.Locker
	if cfg.Redis.Enabled {
		redisClient, err := lock.NewClient(ctx, lock.Config{
			Addr:          cfg.Redis.Addr(),
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			MaxRetries:    3,
			RetryInterval: cfg.Database.RetryInterval,
		})
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient)
	}

	var gateway advert.PaymentGateway
	if cfg.Advert.PaymentsEnabled {
		stripeGateway, err := payment.NewStripeGateway(cfg.Stripe.SecretKey)
		if err != nil {
			log.Fatal("failed to initialize payments", zap.Error(err))
		}
		gateway = stripeGateway
	}

	noticeLocation, err := cfg.Notice.Location()
	if err != nil {
		log.Fatal("invalid notice quota timezone", zap.Error(err))
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; every authenticated request will be rejected")
	}

	// Initialize services
	clk := clock.System{}
	geoSpatialService := geoService.NewGeoSpatialService(geoService.GeoSpatialConfig{
		DefaultRadius: cfg.Geo.DefaultRadius,
		MaxRadius:     cfg.Geo.MaxRadius,
	})

	meetupManager := meetupService.NewMeetupManager(
		storage.NewMeetupStore(db),
		geoSpatialService,
		publisher,
		clk,
		log,
	)

	noticeManager := noticeService.NewNoticeManager(
		storage.NewNoticeStore(db),
		publisher,
		clk,
		noticeService.Config{
			UrgentMonthlyLimit: cfg.Notice.UrgentMonthlyLimit,
			QuotaLocation:      noticeLocation,
		},
		log,
	)

	advertManager := advertService.NewAdvertManager(
		storage.NewAdvertStore(db),
		gateway,
		publisher,
		clk,
		advertService.Config{
			UnitRate:        cfg.Advert.UnitRate,
			Currency:        cfg.Advert.Currency,
			PaymentsEnabled: cfg.Advert.PaymentsEnabled,
		},
		log,
	)

	templateManager := templateService.NewTemplateManager(
		storage.NewTemplateStore(db),
		publisher,
		clk,
		log,
	)

	sweeper := sweep.NewSweeper(
		storage.NewExpiryStore(db),
		locker,
		publisher,
		clk,
		sweep.Config{
			Interval: cfg.Sweep.Interval,
			Timeout:  cfg.Sweep.Timeout,
			LockKey:  cfg.Sweep.LockKey,
			LockTTL:  cfg.Sweep.LockTTL,
		},
		log,
	)

	if cfg.Sweep.Enabled {
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("failed to start sweeper", zap.Error(err))
		}
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, server.Dependencies{
		Meetups:   meetupManager,
		Notices:   noticeManager,
		Adverts:   advertManager,
		Templates: templateManager,
		Sweeper:   sweeper,
		Feed:      publisher,
		DB:        db,
		NATS:      natsConn,
		Verifier:  auth.NewVerifier(cfg.Auth.JWTSecret),
		Validate:  handlers.NewValidator(),
		Logger:    log,
		Version:   cfg.Version,
	})

	// Start HTTP server
	go func() {
		log.Info("starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	sweeper.Stop()
	cancel()

	if err := natsConn.Drain(); err != nil {
		log.Warn("NATS drain error", zap.Error(err))
	}

	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("telemetry shutdown error", zap.Error(err))
	}

	log.Info("shutdown complete")
}

// initDatabase opens the pool and applies the schema when enabled
func initDatabase(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	db, err := storage.NewPostgres(ctx, storage.PostgresConfig{
		DSN:           cfg.DSN(),
		MaxConns:      int32(cfg.MaxConns),
		MinConns:      int32(cfg.MinConns),
		MaxLifetime:   cfg.MaxLifetime,
		MaxIdleTime:   cfg.MaxIdleTime,
		MaxRetries:    cfg.MaxRetries,
		RetryInterval: cfg.RetryInterval,
		EnableTracing: cfg.EnableTracing,
	}, log.Named("postgres"))
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := storage.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database schema applied")
	}

	return db, nil
}
