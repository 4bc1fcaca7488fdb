// internal/service/sweep/sweeper.go

package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"neighborly/internal/clock"
	"neighborly/internal/domain/event"
	"neighborly/internal/telemetry"
)

// Store transitions expired rows. Both calls must be idempotent: only active
// rows with a non-null expiry before now are touched.
type Store interface {
	ExpireNotices(ctx context.Context, now time.Time) (int64, error)
	ExpireAdvertisements(ctx context.Context, now time.Time) (int64, error)
}

// Locker grants a time-bounded lease so one replica sweeps per interval
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Result counts the rows moved to expired by one run
type Result struct {
	Notices        int64 `json:"notices"`
	Advertisements int64 `json:"advertisements"`
	Total          int64 `json:"total"`
}

// Config contains configuration for the sweeper
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	LockKey  string
	LockTTL  time.Duration
}

// Stats describes the background worker
type Stats struct {
	IsRunning           bool      `json:"isRunning"`
	Runs                int64     `json:"runs"`
	SkippedRuns         int64     `json:"skippedRuns"`
	TotalNotices        int64     `json:"totalNotices"`
	TotalAdvertisements int64     `json:"totalAdvertisements"`
	LastRunAt           time.Time `json:"lastRunAt"`
	LastResult          Result    `json:"lastResult"`
	LastError           string    `json:"lastError,omitempty"`
}

// Sweeper expires notices and advertisements on demand and on a ticker
type Sweeper struct {
	store  Store
	locker Locker
	events event.Publisher
	clock  clock.Clock
	config Config
	logger *zap.Logger
	group  singleflight.Group

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	stats   Stats
}

// NewSweeper creates a sweeper. locker may be nil, in which case every
// replica sweeps on its own ticker.
func NewSweeper(store Store, locker Locker, events event.Publisher, clk clock.Clock, config Config, logger *zap.Logger) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.LockKey == "" {
		config.LockKey = "neighborly:sweep:lock"
	}
	if config.LockTTL <= 0 {
		config.LockTTL = config.Interval - config.Interval/6
	}
	return &Sweeper{
		store:  store,
		locker: locker,
		events: events,
		clock:  clk,
		config: config,
		logger: logger.Named("sweeper"),
	}
}

// SweepExpired marks every active notice and advertisement whose expiry has
// passed as expired. Concurrent callers share one execution.
func (s *Sweeper) SweepExpired(ctx context.Context) (Result, error) {
	v, err, shared := s.group.Do("sweep", func() (any, error) {
		return s.run(ctx)
	})
	if shared {
		s.logger.Debug("sweep shared with concurrent caller")
	}
	res, _ := v.(Result)
	return res, err
}

func (s *Sweeper) run(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "sweep.Run")
	defer span.End()

	now := s.clock.Now()
	var res Result
	var errs []error

	n, err := s.store.ExpireNotices(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("error expiring notices: %w", err))
	}
	res.Notices = n

	a, err := s.store.ExpireAdvertisements(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("error expiring advertisements: %w", err))
	}
	res.Advertisements = a
	res.Total = res.Notices + res.Advertisements

	span.SetAttributes(
		attribute.Int64("sweep.notices", res.Notices),
		attribute.Int64("sweep.advertisements", res.Advertisements),
	)

	err = errors.Join(errs...)
	telemetry.RecordError(span, err)
	s.record(now, res, err)

	if res.Total > 0 {
		s.logger.Info("expired resources",
			zap.Int64("notices", res.Notices),
			zap.Int64("advertisements", res.Advertisements),
		)
		if perr := s.events.Publish(ctx, event.Event{
			Entity:     event.EntitySweep,
			Type:       event.TypeCompleted,
			OccurredAt: now,
			Data:       res,
		}); perr != nil {
			s.logger.Warn("failed to publish sweep event", zap.Error(perr))
		}
	}

	return res, err
}

// Start runs the sweeper on its interval until Stop or ctx cancellation
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("starting sweeper", zap.Duration("interval", s.config.Interval))

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop stops the background worker and waits for the current run
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick sweeps once if this replica holds the lease for the interval. The
// lease is left to expire so other replicas skip the same interval.
func (s *Sweeper) tick(ctx context.Context) {
	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx, s.config.LockKey, s.config.LockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire sweep lease", zap.Error(err))
			return
		}
		if !ok {
			s.mu.Lock()
			s.stats.SkippedRuns++
			s.mu.Unlock()
			return
		}
	}

	if _, err := s.SweepExpired(ctx); err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
	}
}

func (s *Sweeper) record(at time.Time, res Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Runs++
	s.stats.TotalNotices += res.Notices
	s.stats.TotalAdvertisements += res.Advertisements
	s.stats.LastRunAt = at
	s.stats.LastResult = res
	s.stats.LastError = ""
	if err != nil {
		s.stats.LastError = err.Error()
	}
}

// GetStats returns a snapshot of the worker statistics
func (s *Sweeper) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.IsRunning = s.running
	return stats
}
