// internal/adapter/storage/notice_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neighborly/internal/domain/notice"
)

const noticeColumns = `id, title, description, category, location, radius, contact,
	urgent, duration, status, expires_at, created_by, created_at, updated_at, urgent_since`

// A notice counts against the urgent quota of the month it became urgent in.
const countUrgentQuery = `SELECT count(*) FROM notices WHERE created_by = $1 AND urgent AND urgent_since >= $2`

// NoticeStore implements the notice store interface using PostgreSQL
type NoticeStore struct {
	db *pgxpool.Pool
}

// NewNoticeStore creates a new PostgreSQL-backed notice store
func NewNoticeStore(db *pgxpool.Pool) *NoticeStore {
	return &NoticeStore{db: db}
}

// CreateNotice inserts a notice
func (s *NoticeStore) CreateNotice(ctx context.Context, n notice.Notice) error {
	if err := insertNotice(ctx, s.db, n); err != nil {
		return err
	}
	return nil
}

// CreateUrgentNotice counts and inserts under a per-user advisory lock held
// for the length of the transaction
func (s *NoticeStore) CreateUrgentNotice(ctx context.Context, n notice.Notice, windowStart time.Time, limit int) error {
	return s.withUrgentQuota(ctx, n.CreatedBy, windowStart, limit, func(tx pgx.Tx) error {
		return insertNotice(ctx, tx, n)
	})
}

// UpdateUrgentNotice writes a notice that is turning urgent, under the same
// lock and count as CreateUrgentNotice
func (s *NoticeStore) UpdateUrgentNotice(ctx context.Context, n notice.Notice, windowStart time.Time, limit int) error {
	return s.withUrgentQuota(ctx, n.CreatedBy, windowStart, limit, func(tx pgx.Tx) error {
		return updateNotice(ctx, tx, n)
	})
}

func (s *NoticeStore) withUrgentQuota(ctx context.Context, userID string, windowStart time.Time, limit int, write func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("error locking urgent quota: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, countUrgentQuery, userID, windowStart).Scan(&count); err != nil {
		return fmt.Errorf("error counting urgent notices: %w", err)
	}
	if count >= limit {
		return notice.ErrUrgentQuotaExceeded
	}

	if err := write(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing notice: %w", err)
	}
	return nil
}

func insertNotice(ctx context.Context, db execer, n notice.Notice) error {
	query := `
		INSERT INTO notices (` + noticeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := db.Exec(ctx, query,
		n.ID, n.Title, n.Description, n.Category, n.Location, n.Radius, n.Contact,
		n.Urgent, n.Duration, n.Status, n.ExpiresAt, n.CreatedBy, n.CreatedAt, n.UpdatedAt,
		n.UrgentSince,
	)
	if err != nil {
		return fmt.Errorf("error inserting notice: %w", err)
	}
	return nil
}

// GetNotice retrieves a notice by ID
func (s *NoticeStore) GetNotice(ctx context.Context, id string) (*notice.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE id = $1`

	n, err := scanNotice(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notice.ErrNotFound
		}
		return nil, fmt.Errorf("error getting notice: %w", err)
	}
	return n, nil
}

// FindNotices returns one page of notices, urgent first then newest first
// unless the filter asks for creation order only
func (s *NoticeStore) FindNotices(ctx context.Context, filter notice.Filter) ([]notice.Notice, int64, error) {
	w := &where{}
	if filter.Category != "" {
		w.add("category = %s", filter.Category)
	}
	if filter.Location != "" {
		w.add("location ILIKE %s", like(filter.Location))
	}
	if filter.Status != "" {
		w.add("status = %s", filter.Status)
	}
	if filter.Urgent != nil {
		w.add("urgent = %s", *filter.Urgent)
	}
	if filter.CreatedBy != "" {
		w.add("created_by = %s", filter.CreatedBy)
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM notices`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting notices: %w", err)
	}

	order := ` ORDER BY urgent DESC, created_at DESC`
	if filter.NewestFirst {
		order = ` ORDER BY created_at DESC`
	}

	clause, args := w.page(filter.Page.Normalize().Limit, filter.Page.Offset())
	query := `SELECT ` + noticeColumns + ` FROM notices` + w.String() + order + clause

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var notices []notice.Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notice: %w", err)
		}
		notices = append(notices, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notices: %w", err)
	}

	return notices, total, nil
}

// UpdateNotice writes the mutable fields of n
func (s *NoticeStore) UpdateNotice(ctx context.Context, n notice.Notice) error {
	return updateNotice(ctx, s.db, n)
}

func updateNotice(ctx context.Context, db execer, n notice.Notice) error {
	query := `
		UPDATE notices SET
			title = $2, description = $3, category = $4, location = $5, radius = $6,
			contact = $7, urgent = $8, duration = $9, status = $10, expires_at = $11,
			updated_at = $12, urgent_since = $13
		WHERE id = $1
	`

	tag, err := db.Exec(ctx, query,
		n.ID, n.Title, n.Description, n.Category, n.Location, n.Radius,
		n.Contact, n.Urgent, n.Duration, n.Status, n.ExpiresAt,
		n.UpdatedAt, n.UrgentSince,
	)
	if err != nil {
		return fmt.Errorf("error updating notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notice.ErrNotFound
	}
	return nil
}

// DeleteNotice removes a notice
func (s *NoticeStore) DeleteNotice(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notice.ErrNotFound
	}
	return nil
}

// CountUrgentSince counts notices of userID that became urgent at or after since
func (s *NoticeStore) CountUrgentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, countUrgentQuery, userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting urgent notices: %w", err)
	}
	return count, nil
}

// NoticeStats returns the dashboard counters
func (s *NoticeStore) NoticeStats(ctx context.Context) (*notice.Stats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'active'),
			count(*) FILTER (WHERE status = 'expired'),
			count(*) FILTER (WHERE urgent AND status = 'active')
		FROM notices
	`

	var stats notice.Stats
	if err := s.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Expired, &stats.Urgent); err != nil {
		return nil, fmt.Errorf("error getting notice stats: %w", err)
	}
	return &stats, nil
}

func scanNotice(row scanner) (*notice.Notice, error) {
	var n notice.Notice
	err := row.Scan(
		&n.ID, &n.Title, &n.Description, &n.Category, &n.Location, &n.Radius, &n.Contact,
		&n.Urgent, &n.Duration, &n.Status, &n.ExpiresAt, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
		&n.UrgentSince,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
