// internal/service/notice/manager.go

package notice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"neighborly/internal/apperror"
	"neighborly/internal/clock"
	"neighborly/internal/domain/event"
	"neighborly/internal/domain/notice"
	"neighborly/internal/domain/paging"
	"neighborly/internal/telemetry"
)

// NoticeStore defines the storage interface for notices
type NoticeStore interface {
	// CreateNotice inserts a non-urgent notice
	CreateNotice(ctx context.Context, n notice.Notice) error

	// CreateUrgentNotice inserts an urgent notice if the creator has fewer
	// than limit urgent notices created since windowStart. The count and the
	// insert are atomic per user; notice.ErrUrgentQuotaExceeded otherwise.
	CreateUrgentNotice(ctx context.Context, n notice.Notice, windowStart time.Time, limit int) error

	// GetNotice retrieves a notice by ID, notice.ErrNotFound when missing
	GetNotice(ctx context.Context, id string) (*notice.Notice, error)

	// FindNotices returns notices sorted urgent first then newest first
	FindNotices(ctx context.Context, filter notice.Filter) ([]notice.Notice, int64, error)

	// UpdateNotice writes the mutable fields of n
	UpdateNotice(ctx context.Context, n notice.Notice) error

	// UpdateUrgentNotice writes a notice that is turning urgent, with the
	// same atomic quota check as CreateUrgentNotice
	UpdateUrgentNotice(ctx context.Context, n notice.Notice, windowStart time.Time, limit int) error

	// DeleteNotice removes a notice
	DeleteNotice(ctx context.Context, id string) error

	// CountUrgentSince counts notices of userID that became urgent at or
	// after since
	CountUrgentSince(ctx context.Context, userID string, since time.Time) (int, error)

	// NoticeStats returns the dashboard counters
	NoticeStats(ctx context.Context) (*notice.Stats, error)
}

// Config contains configuration for the notice manager
type Config struct {
	UrgentMonthlyLimit int
	QuotaLocation      *time.Location
}

// NoticeManager implements the notice.Manager interface
type NoticeManager struct {
	store  NoticeStore
	events event.Publisher
	clock  clock.Clock
	config Config
	logger *zap.Logger
}

// NewNoticeManager creates a new notice manager
func NewNoticeManager(
	store NoticeStore,
	events event.Publisher,
	clk clock.Clock,
	config Config,
	logger *zap.Logger,
) *NoticeManager {
	if config.UrgentMonthlyLimit <= 0 {
		config.UrgentMonthlyLimit = 3
	}
	if config.QuotaLocation == nil {
		config.QuotaLocation = time.UTC
	}
	return &NoticeManager{
		store:  store,
		events: events,
		clock:  clk,
		config: config,
		logger: logger.Named("notice"),
	}
}

// CreateNotice validates, derives expiresAt and enforces the urgent quota
func (nm *NoticeManager) CreateNotice(ctx context.Context, userID string, draft notice.Notice) (*notice.Notice, error) {
	ctx, span := telemetry.StartSpan(ctx, "notice.Create")
	defer span.End()

	now := nm.clock.Now()

	n := draft
	if n.Radius == 0 {
		n.Radius = notice.DefaultRadius
	}
	if err := notice.Validate(&n); err != nil {
		return nil, err
	}

	expiresAt, err := notice.ResolveExpiry(n.Duration, now)
	if err != nil {
		return nil, err
	}

	n.ID = uuid.New().String()
	n.CreatedBy = userID
	n.Status = notice.StatusActive
	n.ExpiresAt = expiresAt
	n.CreatedAt = now
	n.UpdatedAt = now
	n.UrgentSince = nil

	if n.Urgent {
		n.UrgentSince = &now
		err = nm.store.CreateUrgentNotice(ctx, n, nm.windowStart(), nm.config.UrgentMonthlyLimit)
	} else {
		err = nm.store.CreateNotice(ctx, n)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("error saving notice: %w", err)
	}

	nm.publish(ctx, event.TypeCreated, n.ID, userID, n)
	return &n, nil
}

// GetNotice returns a notice by ID
func (nm *NoticeManager) GetNotice(ctx context.Context, id string) (*notice.Notice, error) {
	n, err := nm.store.GetNotice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting notice: %w", err)
	}
	return n, nil
}

// ListNotices returns notices sorted urgent first, newest first
func (nm *NoticeManager) ListNotices(ctx context.Context, filter notice.Filter) (paging.Result[notice.Notice], error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := nm.store.FindNotices(ctx, filter)
	if err != nil {
		return paging.Result[notice.Notice]{}, fmt.Errorf("error finding notices: %w", err)
	}
	return paging.NewResult(items, total, filter.Page), nil
}

// ListUserNotices returns the notices created by userID, newest first
func (nm *NoticeManager) ListUserNotices(ctx context.Context, userID string, page paging.Request) (paging.Result[notice.Notice], error) {
	return nm.ListNotices(ctx, notice.Filter{CreatedBy: userID, NewestFirst: true, Page: page})
}

// SearchByLocation returns active notices whose location contains the query
func (nm *NoticeManager) SearchByLocation(ctx context.Context, location string, page paging.Request) (paging.Result[notice.Notice], error) {
	if location == "" {
		return paging.Result[notice.Notice]{}, apperror.Validation(apperror.CodeValidation, "Location is required")
	}
	return nm.ListNotices(ctx, notice.Filter{Location: location, Status: notice.StatusActive, Page: page})
}

// UpdateNotice applies a patch; only the owner may update. The expiry is
// recomputed from the current time only when the duration changes. Turning a
// notice urgent counts against the quota of the current month.
func (nm *NoticeManager) UpdateNotice(ctx context.Context, id, userID string, patch notice.Patch) (*notice.Notice, error) {
	n, err := nm.ownedNotice(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	now := nm.clock.Now()
	wasUrgent := n.Urgent

	if patch.Apply(n) {
		expiresAt, err := notice.ResolveExpiry(n.Duration, now)
		if err != nil {
			return nil, err
		}
		n.ExpiresAt = expiresAt
	}
	if err := notice.Validate(n); err != nil {
		return nil, err
	}

	n.UpdatedAt = now
	switch {
	case n.Urgent && !wasUrgent:
		n.UrgentSince = &now
		err = nm.store.UpdateUrgentNotice(ctx, *n, nm.windowStart(), nm.config.UrgentMonthlyLimit)
	case !n.Urgent:
		n.UrgentSince = nil
		err = nm.store.UpdateNotice(ctx, *n)
	default:
		err = nm.store.UpdateNotice(ctx, *n)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating notice: %w", err)
	}

	nm.publish(ctx, event.TypeUpdated, n.ID, userID, n)
	return n, nil
}

// DeleteNotice removes a notice; only the owner may delete
func (nm *NoticeManager) DeleteNotice(ctx context.Context, id, userID string) error {
	if _, err := nm.ownedNotice(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := nm.store.DeleteNotice(ctx, id); err != nil {
		return fmt.Errorf("error deleting notice: %w", err)
	}
	nm.publish(ctx, event.TypeDeleted, id, userID, nil)
	return nil
}

// UrgentCount returns the urgent notices userID created this month
func (nm *NoticeManager) UrgentCount(ctx context.Context, userID string) (int, error) {
	count, err := nm.store.CountUrgentSince(ctx, userID, nm.windowStart())
	if err != nil {
		return 0, fmt.Errorf("error counting urgent notices: %w", err)
	}
	return count, nil
}

// CanCreateUrgent reports whether userID is below the monthly limit
func (nm *NoticeManager) CanCreateUrgent(ctx context.Context, userID string) (bool, error) {
	count, err := nm.UrgentCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < nm.config.UrgentMonthlyLimit, nil
}

// GetUrgentQuota returns count, limit and availability in one call
func (nm *NoticeManager) GetUrgentQuota(ctx context.Context, userID string) (*notice.UrgentQuota, error) {
	count, err := nm.UrgentCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &notice.UrgentQuota{
		Count:           count,
		Limit:           nm.config.UrgentMonthlyLimit,
		CanCreateUrgent: count < nm.config.UrgentMonthlyLimit,
	}, nil
}

// GetStats returns notice counters
func (nm *NoticeManager) GetStats(ctx context.Context) (*notice.Stats, error) {
	stats, err := nm.store.NoticeStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting notice stats: %w", err)
	}
	return stats, nil
}

func (nm *NoticeManager) windowStart() time.Time {
	return notice.WindowStart(nm.clock.Now(), nm.config.QuotaLocation)
}

// ownedNotice loads a live notice and checks that userID owns it. Removed
// notices are reported as missing.
func (nm *NoticeManager) ownedNotice(ctx context.Context, id, userID, action string) (*notice.Notice, error) {
	n, err := nm.store.GetNotice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting notice: %w", err)
	}
	if n.Status == notice.StatusRemoved {
		return nil, notice.ErrNotFound
	}
	if n.CreatedBy != userID {
		return nil, apperror.Forbidden(fmt.Sprintf("Not authorized to %s this notice", action))
	}
	return n, nil
}

func (nm *NoticeManager) publish(ctx context.Context, eventType, id, userID string, data any) {
	err := nm.events.Publish(ctx, event.Event{
		Entity:     event.EntityNotice,
		Type:       eventType,
		EntityID:   id,
		UserID:     userID,
		OccurredAt: nm.clock.Now(),
		Data:       data,
	})
	if err != nil {
		nm.logger.Warn("failed to publish notice event",
			zap.String("type", eventType),
			zap.String("notice_id", id),
			zap.Error(err),
		)
	}
}
