// internal/adapter/storage/advert_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neighborly/internal/domain/advert"
)

const advertColumns = `id, template_id, category, heading, brief_description, contact_info,
	location, website, icon, detailed_heading, detailed_description, special_offers,
	detailed_location, detailed_website, detailed_contact_info, additional_details,
	state, city, localities, duration_hours, duration_days,
	base_price, discount, final_price, discount_reason,
	status, payment_intent_id, uploaded_files, created_by, created_at, updated_at, expires_at`

// AdvertStore implements the advertisement store interface using PostgreSQL
type AdvertStore struct {
	db *pgxpool.Pool
}

// NewAdvertStore creates a new PostgreSQL-backed advertisement store
func NewAdvertStore(db *pgxpool.Pool) *AdvertStore {
	return &AdvertStore{db: db}
}

// CreateAdvertisement inserts a new advertisement
func (s *AdvertStore) CreateAdvertisement(ctx context.Context, a advert.Advertisement) error {
	query := `
		INSERT INTO advertisements (` + advertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	_, err := s.db.Exec(ctx, query,
		a.ID, a.TemplateID, a.Category, a.Heading, a.BriefDescription, a.ContactInfo,
		a.Location, a.Website, a.Icon, a.DetailedHeading, a.DetailedDescription, a.SpecialOffers,
		a.DetailedLocation, a.DetailedWebsite, a.DetailedContactInfo, a.AdditionalDetails,
		a.State, a.City, nonNil(a.Localities), a.Duration.Hours, a.Duration.Days,
		a.Pricing.BasePrice, a.Pricing.Discount, a.Pricing.FinalPrice, a.Pricing.DiscountReason,
		a.Status, a.PaymentIntentID, nonNil(a.UploadedFiles), a.CreatedBy, a.CreatedAt, a.UpdatedAt, a.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting advertisement: %w", err)
	}
	return nil
}

// GetAdvertisement retrieves an advertisement by ID
func (s *AdvertStore) GetAdvertisement(ctx context.Context, id string) (*advert.Advertisement, error) {
	query := `SELECT ` + advertColumns + ` FROM advertisements WHERE id = $1`

	a, err := scanAdvert(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, advert.ErrNotFound
		}
		return nil, fmt.Errorf("error getting advertisement: %w", err)
	}
	return a, nil
}

// FindAdvertisements returns one page of advertisements, newest first
func (s *AdvertStore) FindAdvertisements(ctx context.Context, filter advert.Filter) ([]advert.Advertisement, int64, error) {
	w := &where{}
	if filter.State != "" {
		w.add("state = %s", filter.State)
	}
	if filter.City != "" {
		w.add("city = %s", filter.City)
	}
	if len(filter.Localities) > 0 {
		w.add("localities && %s", filter.Localities)
	}
	if filter.Status != "" {
		w.add("status = %s", filter.Status)
	}
	if filter.CreatedBy != "" {
		w.add("created_by = %s", filter.CreatedBy)
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM advertisements`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting advertisements: %w", err)
	}

	clause, args := w.page(filter.Page.Normalize().Limit, filter.Page.Offset())
	query := `SELECT ` + advertColumns + ` FROM advertisements` + w.String() +
		` ORDER BY created_at DESC` + clause

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ads []advert.Advertisement
	for rows.Next() {
		a, err := scanAdvert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning advertisement: %w", err)
		}
		ads = append(ads, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating advertisements: %w", err)
	}

	return ads, total, nil
}

// UpdateAdvertisement writes the content, targeting and pricing of a.
// Localities and duration may only differ from the stored row while it is a
// draft; otherwise advert.ErrTargetingLocked is returned.
func (s *AdvertStore) UpdateAdvertisement(ctx context.Context, a advert.Advertisement) error {
	query := `
		UPDATE advertisements SET
			template_id = $2, category = $3, heading = $4, brief_description = $5, contact_info = $6,
			location = $7, website = $8, icon = $9, detailed_heading = $10, detailed_description = $11,
			special_offers = $12, detailed_location = $13, detailed_website = $14,
			detailed_contact_info = $15, additional_details = $16,
			state = $17, city = $18, localities = $19, duration_hours = $20, duration_days = $21,
			base_price = $22, discount = $23, final_price = $24, discount_reason = $25,
			uploaded_files = $26, updated_at = $27, expires_at = $28, payment_intent_id = $29
		WHERE id = $1
		  AND (status = 'draft'
		       OR (localities = $19 AND duration_hours = $20 AND duration_days = $21))
	`

	tag, err := s.db.Exec(ctx, query,
		a.ID, a.TemplateID, a.Category, a.Heading, a.BriefDescription, a.ContactInfo,
		a.Location, a.Website, a.Icon, a.DetailedHeading, a.DetailedDescription,
		a.SpecialOffers, a.DetailedLocation, a.DetailedWebsite,
		a.DetailedContactInfo, a.AdditionalDetails,
		a.State, a.City, nonNil(a.Localities), a.Duration.Hours, a.Duration.Days,
		a.Pricing.BasePrice, a.Pricing.Discount, a.Pricing.FinalPrice, a.Pricing.DiscountReason,
		nonNil(a.UploadedFiles), a.UpdatedAt, a.ExpiresAt, a.PaymentIntentID,
	)
	if err != nil {
		return fmt.Errorf("error updating advertisement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetAdvertisement(ctx, a.ID); err != nil {
			return err
		}
		return advert.ErrTargetingLocked
	}
	return nil
}

// DeleteAdvertisement removes an advertisement
func (s *AdvertStore) DeleteAdvertisement(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM advertisements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting advertisement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advert.ErrNotFound
	}
	return nil
}

// SetPaymentIntent records the payment opened for a draft advertisement
func (s *AdvertStore) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE advertisements SET payment_intent_id = $2, updated_at = now() WHERE id = $1 AND status = 'draft'`,
		id, intentID,
	)
	if err != nil {
		return fmt.Errorf("error setting payment intent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetAdvertisement(ctx, id); err != nil {
			return err
		}
		return advert.ErrInvalidStatus
	}
	return nil
}

// ActivateAdvertisement moves a draft to active as long as it still carries
// intentID. A concurrent activation loses the race and sees ErrInvalidStatus;
// a reprice in between clears the intent and yields ErrPaymentRequired.
func (s *AdvertStore) ActivateAdvertisement(ctx context.Context, id, intentID string) (*advert.Advertisement, error) {
	query := `
		UPDATE advertisements SET status = 'active', updated_at = now()
		WHERE id = $1 AND status = 'draft' AND payment_intent_id = $2
		RETURNING ` + advertColumns

	a, err := scanAdvert(s.db.QueryRow(ctx, query, id, intentID))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error activating advertisement: %w", err)
	}

	current, err := s.GetAdvertisement(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != advert.StatusDraft {
		return nil, advert.ErrInvalidStatus
	}
	return nil, advert.ErrPaymentRequired
}

// AdvertisementStats returns the dashboard counters. Revenue counts every
// advertisement that was paid for, whether still running or expired.
func (s *AdvertStore) AdvertisementStats(ctx context.Context) (*advert.Stats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'active'),
			count(*) FILTER (WHERE status = 'expired'),
			count(*) FILTER (WHERE status = 'draft'),
			COALESCE(sum(final_price) FILTER (WHERE status IN ('active', 'expired')), 0)
		FROM advertisements
	`

	var stats advert.Stats
	err := s.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Expired, &stats.Draft, &stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("error getting advertisement stats: %w", err)
	}
	return &stats, nil
}

func scanAdvert(row scanner) (*advert.Advertisement, error) {
	var a advert.Advertisement
	err := row.Scan(
		&a.ID, &a.TemplateID, &a.Category, &a.Heading, &a.BriefDescription, &a.ContactInfo,
		&a.Location, &a.Website, &a.Icon, &a.DetailedHeading, &a.DetailedDescription, &a.SpecialOffers,
		&a.DetailedLocation, &a.DetailedWebsite, &a.DetailedContactInfo, &a.AdditionalDetails,
		&a.State, &a.City, &a.Localities, &a.Duration.Hours, &a.Duration.Days,
		&a.Pricing.BasePrice, &a.Pricing.Discount, &a.Pricing.FinalPrice, &a.Pricing.DiscountReason,
		&a.Status, &a.PaymentIntentID, &a.UploadedFiles, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt, &a.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
