// internal/service/advert/manager.go

package advert

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"neighborly/internal/apperror"
	"neighborly/internal/clock"
	"neighborly/internal/domain/advert"
	"neighborly/internal/domain/event"
	"neighborly/internal/domain/paging"
	"neighborly/internal/telemetry"
)

// AdvertStore defines the storage interface for advertisements
type AdvertStore interface {
	// CreateAdvertisement inserts a new advertisement
	CreateAdvertisement(ctx context.Context, a advert.Advertisement) error

	// GetAdvertisement retrieves an advertisement, advert.ErrNotFound when missing
	GetAdvertisement(ctx context.Context, id string) (*advert.Advertisement, error)

	// FindAdvertisements returns advertisements newest first
	FindAdvertisements(ctx context.Context, filter advert.Filter) ([]advert.Advertisement, int64, error)

	// UpdateAdvertisement writes the content, targeting and pricing of a,
	// advert.ErrTargetingLocked when localities or duration change on a
	// non-draft
	UpdateAdvertisement(ctx context.Context, a advert.Advertisement) error

	// DeleteAdvertisement removes an advertisement
	DeleteAdvertisement(ctx context.Context, id string) error

	// SetPaymentIntent records the payment opened for a draft
	SetPaymentIntent(ctx context.Context, id, intentID string) error

	// ActivateAdvertisement moves a draft still carrying intentID to active,
	// advert.ErrInvalidStatus when it is no longer a draft
	ActivateAdvertisement(ctx context.Context, id, intentID string) (*advert.Advertisement, error)

	// AdvertisementStats returns the dashboard counters
	AdvertisementStats(ctx context.Context) (*advert.Stats, error)
}

// Config contains configuration for the advertisement manager
type Config struct {
	UnitRate        float64
	Currency        string
	PaymentsEnabled bool
}

// AdvertManager implements the advert.Manager interface
type AdvertManager struct {
	store   AdvertStore
	gateway advert.PaymentGateway
	events  event.Publisher
	clock   clock.Clock
	config  Config
	logger  *zap.Logger
}

// NewAdvertManager creates a new advertisement manager. gateway may be nil
// when payments are disabled.
func NewAdvertManager(
	store AdvertStore,
	gateway advert.PaymentGateway,
	events event.Publisher,
	clk clock.Clock,
	config Config,
	logger *zap.Logger,
) *AdvertManager {
	if config.UnitRate <= 0 {
		config.UnitRate = advert.UnitRate
	}
	if config.Currency == "" {
		config.Currency = "inr"
	}
	return &AdvertManager{
		store:   store,
		gateway: gateway,
		events:  events,
		clock:   clk,
		config:  config,
		logger:  logger.Named("advert"),
	}
}

// CreateAdvertisement prices the draft and stores it with status draft
func (am *AdvertManager) CreateAdvertisement(ctx context.Context, userID string, draft advert.Advertisement) (*advert.Advertisement, error) {
	ctx, span := telemetry.StartSpan(ctx, "advert.Create")
	defer span.End()

	now := am.clock.Now()

	a := draft
	if err := advert.Validate(&a); err != nil {
		return nil, err
	}
	if err := am.price(&a, now); err != nil {
		return nil, err
	}

	a.ID = uuid.New().String()
	a.CreatedBy = userID
	a.Status = advert.StatusDraft
	a.PaymentIntentID = ""
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.UploadedFiles == nil {
		a.UploadedFiles = []string{}
	}

	if err := am.store.CreateAdvertisement(ctx, a); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("error saving advertisement: %w", err)
	}

	am.publish(ctx, event.TypeCreated, a.ID, userID, a.Pricing)
	return &a, nil
}

// GetAdvertisement returns an advertisement by ID
func (am *AdvertManager) GetAdvertisement(ctx context.Context, id string) (*advert.Advertisement, error) {
	a, err := am.store.GetAdvertisement(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting advertisement: %w", err)
	}
	return a, nil
}

// ListAdvertisements returns advertisements newest first
func (am *AdvertManager) ListAdvertisements(ctx context.Context, filter advert.Filter) (paging.Result[advert.Advertisement], error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := am.store.FindAdvertisements(ctx, filter)
	if err != nil {
		return paging.Result[advert.Advertisement]{}, fmt.Errorf("error finding advertisements: %w", err)
	}
	return paging.NewResult(items, total, filter.Page), nil
}

// ListUserAdvertisements returns the advertisements created by userID
func (am *AdvertManager) ListUserAdvertisements(ctx context.Context, userID string, page paging.Request) (paging.Result[advert.Advertisement], error) {
	return am.ListAdvertisements(ctx, advert.Filter{CreatedBy: userID, Page: page})
}

// SearchByLocation returns active advertisements targeting the location
func (am *AdvertManager) SearchByLocation(ctx context.Context, state, city string, localities []string, page paging.Request) (paging.Result[advert.Advertisement], error) {
	if state == "" || city == "" {
		return paging.Result[advert.Advertisement]{}, apperror.Validation(apperror.CodeValidation, "State and city are required")
	}
	return am.ListAdvertisements(ctx, advert.Filter{
		State:      state,
		City:       city,
		Localities: advert.UniqueLocalities(localities),
		Status:     advert.StatusActive,
		Page:       page,
	})
}

// UpdateAdvertisement applies a patch; only the owner may update. Pricing and
// expiry are recomputed only when localities or duration change, which is
// allowed on drafts alone and drops any payment opened for the old price.
func (am *AdvertManager) UpdateAdvertisement(ctx context.Context, id, userID string, patch advert.Patch) (*advert.Advertisement, error) {
	a, err := am.owned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	now := am.clock.Now()
	localities := slices.Clone(a.Localities)
	duration := a.Duration

	patch.Apply(a)
	if err := advert.Validate(a); err != nil {
		return nil, err
	}

	if !slices.Equal(localities, a.Localities) || duration != a.Duration {
		if a.Status != advert.StatusDraft {
			return nil, advert.ErrTargetingLocked
		}
		if err := am.price(a, now); err != nil {
			return nil, err
		}
		a.PaymentIntentID = ""
	}
	a.UpdatedAt = now

	if err := am.store.UpdateAdvertisement(ctx, *a); err != nil {
		return nil, fmt.Errorf("error updating advertisement: %w", err)
	}
	return a, nil
}

// DeleteAdvertisement removes an advertisement; only the owner may delete
func (am *AdvertManager) DeleteAdvertisement(ctx context.Context, id, userID string) error {
	if _, err := am.owned(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := am.store.DeleteAdvertisement(ctx, id); err != nil {
		return fmt.Errorf("error deleting advertisement: %w", err)
	}
	return nil
}

// CalculatePricing previews the price of a run
func (am *AdvertManager) CalculatePricing(localities []string, hours, days int) (advert.Pricing, error) {
	return advert.CalculatePricingAt(am.config.UnitRate, localities, hours, days)
}

// Checkout opens a payment for a draft advertisement
func (am *AdvertManager) Checkout(ctx context.Context, id, userID string) (*advert.Checkout, error) {
	ctx, span := telemetry.StartSpan(ctx, "advert.Checkout")
	defer span.End()

	if !am.config.PaymentsEnabled || am.gateway == nil {
		return nil, apperror.Validation(apperror.CodeValidation, "Payments are not enabled")
	}

	a, err := am.owned(ctx, id, userID, "pay for")
	if err != nil {
		return nil, err
	}
	if a.Status != advert.StatusDraft {
		return nil, advert.ErrInvalidStatus
	}

	amount := toMinorUnits(a.Pricing.FinalPrice)
	intent, err := am.gateway.CreateIntent(ctx, amount, am.config.Currency, map[string]string{
		"advertisement_id": a.ID,
		"user_id":          userID,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("error creating payment intent: %w", err)
	}

	if err := am.store.SetPaymentIntent(ctx, a.ID, intent.ID); err != nil {
		return nil, fmt.Errorf("error saving payment intent: %w", err)
	}

	am.logger.Info("checkout opened",
		zap.String("advertisement_id", a.ID),
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount", amount),
	)

	return &advert.Checkout{
		AdvertisementID: a.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          a.Pricing.FinalPrice,
		Currency:        am.config.Currency,
	}, nil
}

// Activate moves a draft to active. With payments enabled the recorded
// intent must have succeeded.
func (am *AdvertManager) Activate(ctx context.Context, id, userID string) (*advert.Advertisement, error) {
	ctx, span := telemetry.StartSpan(ctx, "advert.Activate")
	defer span.End()

	a, err := am.owned(ctx, id, userID, "activate")
	if err != nil {
		return nil, err
	}
	if a.Status != advert.StatusDraft {
		return nil, advert.ErrInvalidStatus
	}

	if am.config.PaymentsEnabled {
		if a.PaymentIntentID == "" || am.gateway == nil {
			return nil, advert.ErrPaymentRequired
		}
		intent, err := am.gateway.GetIntent(ctx, a.PaymentIntentID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("error fetching payment intent: %w", err)
		}
		if intent.Status != advert.PaymentSucceeded {
			return nil, advert.ErrPaymentRequired
		}
		if intent.Amount != toMinorUnits(a.Pricing.FinalPrice) {
			am.logger.Warn("payment amount does not match price",
				zap.String("advertisement_id", a.ID),
				zap.Int64("paid", intent.Amount),
				zap.Int64("price", toMinorUnits(a.Pricing.FinalPrice)),
			)
			return nil, advert.ErrPaymentMismatch
		}
	}

	activated, err := am.store.ActivateAdvertisement(ctx, id, a.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("error activating advertisement: %w", err)
	}

	am.publish(ctx, event.TypeActivated, id, userID, activated.Pricing)
	return activated, nil
}

// GetStats returns counters and revenue
func (am *AdvertManager) GetStats(ctx context.Context) (*advert.Stats, error) {
	stats, err := am.store.AdvertisementStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting advertisement stats: %w", err)
	}
	return stats, nil
}

// price fills pricing and expiry from the localities and duration of a
func (am *AdvertManager) price(a *advert.Advertisement, now time.Time) error {
	a.Localities = advert.UniqueLocalities(a.Localities)
	pricing, err := advert.CalculatePricingAt(am.config.UnitRate, a.Localities, a.Duration.Hours, a.Duration.Days)
	if err != nil {
		return err
	}
	a.Pricing = pricing
	a.ExpiresAt = a.Duration.ExpiresAt(now)
	return nil
}

func (am *AdvertManager) owned(ctx context.Context, id, userID, action string) (*advert.Advertisement, error) {
	a, err := am.store.GetAdvertisement(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting advertisement: %w", err)
	}
	if a.Status == advert.StatusRemoved {
		return nil, advert.ErrNotFound
	}
	if a.CreatedBy != userID {
		return nil, apperror.Forbidden(fmt.Sprintf("Not authorized to %s this advertisement", action))
	}
	return a, nil
}

func (am *AdvertManager) publish(ctx context.Context, eventType, id, userID string, data any) {
	err := am.events.Publish(ctx, event.Event{
		Entity:     event.EntityAdvertisement,
		Type:       eventType,
		EntityID:   id,
		UserID:     userID,
		OccurredAt: am.clock.Now(),
		Data:       data,
	})
	if err != nil {
		am.logger.Warn("failed to publish advertisement event",
			zap.String("type", eventType),
			zap.String("advertisement_id", id),
			zap.Error(err),
		)
	}
}

// toMinorUnits converts a price to the currency's smallest unit
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
