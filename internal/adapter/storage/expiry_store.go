package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// An expiry instant still belongs to the run, so only strictly earlier rows
// are swept.
const (
	expireNoticesQuery = `
		UPDATE notices SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < $1
	`
	expireAdvertisementsQuery = `
		UPDATE advertisements SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND expires_at < $1
	`
)

// ExpiryStore moves timed-out notices and advertisements to expired.
// Both statements only touch active rows, so reruns are no-ops.
type ExpiryStore struct {
	db *pgxpool.Pool
}

// NewExpiryStore creates a new PostgreSQL-backed expiry store
func NewExpiryStore(db *pgxpool.Pool) *ExpiryStore {
	return &ExpiryStore{db: db}
}

// ExpireNotices expires active notices whose expiry is before now
func (s *ExpiryStore) ExpireNotices(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, expireNoticesQuery, now)
	if err != nil {
		return 0, fmt.Errorf("error expiring notices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExpireAdvertisements expires active advertisements whose expiry is before now
func (s *ExpiryStore) ExpireAdvertisements(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, expireAdvertisementsQuery, now)
	if err != nil {
		return 0, fmt.Errorf("error expiring advertisements: %w", err)
	}
	return tag.RowsAffected(), nil
}
