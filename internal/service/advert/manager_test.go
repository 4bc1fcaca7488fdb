package advert

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neighborly/internal/apperror"
	"neighborly/internal/clock"
	"neighborly/internal/domain/advert"
	"neighborly/internal/domain/event"
	"neighborly/internal/domain/paging"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type mockAdvertStore struct {
	mu  sync.Mutex
	ads map[string]advert.Advertisement
}

func newMockAdvertStore() *mockAdvertStore {
	return &mockAdvertStore{ads: make(map[string]advert.Advertisement)}
}

func (s *mockAdvertStore) CreateAdvertisement(_ context.Context, a advert.Advertisement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads[a.ID] = a
	return nil
}

func (s *mockAdvertStore) GetAdvertisement(_ context.Context, id string) (*advert.Advertisement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.ads[id]
	if !ok {
		return nil, advert.ErrNotFound
	}
	return &a, nil
}

func (s *mockAdvertStore) FindAdvertisements(_ context.Context, filter advert.Filter) ([]advert.Advertisement, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []advert.Advertisement
	for _, a := range s.ads {
		if filter.CreatedBy != "" && a.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.State != "" && a.State != filter.State {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *mockAdvertStore) UpdateAdvertisement(_ context.Context, a advert.Advertisement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.ads[a.ID]
	if !ok {
		return advert.ErrNotFound
	}
	if stored.Status != advert.StatusDraft &&
		(!slices.Equal(stored.Localities, a.Localities) || stored.Duration != a.Duration) {
		return advert.ErrTargetingLocked
	}
	s.ads[a.ID] = a
	return nil
}

func (s *mockAdvertStore) DeleteAdvertisement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ads, id)
	return nil
}

func (s *mockAdvertStore) SetPaymentIntent(_ context.Context, id, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.ads[id]
	if a.Status != advert.StatusDraft {
		return advert.ErrInvalidStatus
	}
	a.PaymentIntentID = intentID
	s.ads[id] = a
	return nil
}

func (s *mockAdvertStore) ActivateAdvertisement(_ context.Context, id, intentID string) (*advert.Advertisement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.ads[id]
	if !ok {
		return nil, advert.ErrNotFound
	}
	if a.Status != advert.StatusDraft {
		return nil, advert.ErrInvalidStatus
	}
	if a.PaymentIntentID != intentID {
		return nil, advert.ErrPaymentRequired
	}
	a.Status = advert.StatusActive
	s.ads[id] = a
	return &a, nil
}

func (s *mockAdvertStore) AdvertisementStats(_ context.Context) (*advert.Stats, error) {
	return &advert.Stats{}, nil
}

// mockGateway numbers intents pi_1, pi_2, ... and remembers their amounts
type mockGateway struct {
	created []int64
	amounts map[string]int64
	status  string
	err     error
}

func (g *mockGateway) CreateIntent(_ context.Context, amountMinor int64, _ string, _ map[string]string) (*advert.PaymentIntent, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, amountMinor)
	id := "pi_" + strconv.Itoa(len(g.created))
	if g.amounts == nil {
		g.amounts = make(map[string]int64)
	}
	g.amounts[id] = amountMinor
	return &advert.PaymentIntent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method", Amount: amountMinor}, nil
}

func (g *mockGateway) GetIntent(_ context.Context, id string) (*advert.PaymentIntent, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &advert.PaymentIntent{ID: id, Status: g.status, Amount: g.amounts[id]}, nil
}

func setup(payments bool) (*AdvertManager, *mockAdvertStore, *mockGateway, *clock.Mock) {
	store := newMockAdvertStore()
	gw := &mockGateway{}
	clk := clock.NewMock(now)
	am := NewAdvertManager(store, gw, event.Nop{}, clk, Config{PaymentsEnabled: payments}, zap.NewNop())
	return am, store, gw, clk
}

func draft() advert.Advertisement {
	return advert.Advertisement{
		TemplateID:          "tpl-1",
		Category:            "services",
		Heading:             "Home tutoring",
		BriefDescription:    "Maths and science",
		ContactInfo:         "98765 43210",
		Location:            "Bandra West",
		Icon:                "book",
		DetailedHeading:     "Experienced tutor",
		DetailedDescription: "Ten years of classroom experience",
		State:               "Mumbai",
		City:                "Mumbai",
		Localities:          []string{"Bandra", "Andheri", "Bandra"},
		Duration:            advert.Duration{Days: 3},
	}
}

func TestCreateAdvertisement(t *testing.T) {
	am, store, _, _ := setup(false)

	a, err := am.CreateAdvertisement(context.Background(), "u1", draft())
	require.NoError(t, err)

	assert.Equal(t, advert.StatusDraft, a.Status)
	assert.Equal(t, []string{"Bandra", "Andheri"}, a.Localities)
	assert.Equal(t, now.Add(72*time.Hour), a.ExpiresAt)
	assert.InDelta(t, 360.0, a.Pricing.BasePrice, 1e-9)
	assert.InDelta(t, 252.0, a.Pricing.FinalPrice, 1e-9)
	assert.Equal(t, "2+ day duration", a.Pricing.DiscountReason)
	assert.NotNil(t, a.UploadedFiles)
	assert.Len(t, store.ads, 1)
}

func TestCreateAdvertisement_InvalidDuration(t *testing.T) {
	am, store, _, _ := setup(false)

	d := draft()
	d.Duration = advert.Duration{}
	_, err := am.CreateAdvertisement(context.Background(), "u1", d)
	assert.Equal(t, apperror.CodeInvalidPricingInput, apperror.CodeOf(err))
	assert.Empty(t, store.ads)
}

func TestUpdateAdvertisement_RepricesOnlyWhenTargetingChanges(t *testing.T) {
	am, _, _, clk := setup(false)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)

	clk.Advance(time.Hour)
	heading := "Evening tutoring"
	updated, err := am.UpdateAdvertisement(ctx, a.ID, "u1", advert.Patch{Heading: &heading})
	require.NoError(t, err)
	assert.Equal(t, a.Pricing, updated.Pricing)
	assert.Equal(t, a.ExpiresAt, updated.ExpiresAt)

	updated, err = am.UpdateAdvertisement(ctx, a.ID, "u1", advert.Patch{
		Localities: []string{"Bandra", "Andheri", "Powai", "Malad", "Goregaon"},
	})
	require.NoError(t, err)
	assert.Equal(t, "5+ locations", updated.Pricing.DiscountReason)
	assert.Equal(t, clk.Now().Add(72*time.Hour), updated.ExpiresAt)

	_, err = am.UpdateAdvertisement(ctx, a.ID, "u2", advert.Patch{Heading: &heading})
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))
}

func TestCheckoutAndActivate(t *testing.T) {
	am, store, gw, _ := setup(true)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)

	_, err = am.Activate(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, advert.ErrPaymentRequired)

	checkout, err := am.Checkout(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", checkout.PaymentIntentID)
	assert.Equal(t, []int64{25200}, gw.created)
	assert.Equal(t, "pi_1", store.ads[a.ID].PaymentIntentID)

	gw.status = "processing"
	_, err = am.Activate(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, advert.ErrPaymentRequired)

	gw.status = advert.PaymentSucceeded
	activated, err := am.Activate(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, advert.StatusActive, activated.Status)

	_, err = am.Activate(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, advert.ErrInvalidStatus)
	_, err = am.Checkout(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, advert.ErrInvalidStatus)
}

func TestActivate_RepricedAfterCheckoutNeedsNewPayment(t *testing.T) {
	am, store, gw, _ := setup(true)
	ctx := context.Background()

	d := draft()
	d.Localities = []string{"Bandra"}
	d.Duration = advert.Duration{Hours: 1}
	a, err := am.CreateAdvertisement(ctx, "u1", d)
	require.NoError(t, err)

	_, err = am.Checkout(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{250}, gw.created)
	gw.status = advert.PaymentSucceeded

	updated, err := am.UpdateAdvertisement(ctx, a.ID, "u1", advert.Patch{
		Localities: []string{"Bandra", "Andheri", "Powai", "Malad", "Goregaon", "Juhu", "Worli", "Dadar"},
		Duration:   &advert.Duration{Days: 30},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.PaymentIntentID)
	assert.Empty(t, store.ads[a.ID].PaymentIntentID)

	_, err = am.Activate(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, advert.ErrPaymentRequired)
	assert.Equal(t, advert.StatusDraft, store.ads[a.ID].Status)

	checkout, err := am.Checkout(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "pi_2", checkout.PaymentIntentID)
	assert.Equal(t, toMinorUnits(updated.Pricing.FinalPrice), gw.created[1])

	activated, err := am.Activate(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, advert.StatusActive, activated.Status)
}

func TestActivate_AmountMismatch(t *testing.T) {
	am, store, gw, _ := setup(true)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)
	checkout, err := am.Checkout(ctx, a.ID, "u1")
	require.NoError(t, err)

	gw.status = advert.PaymentSucceeded
	gw.amounts[checkout.PaymentIntentID] = 250

	_, err = am.Activate(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, advert.ErrPaymentMismatch)
	assert.Equal(t, advert.StatusDraft, store.ads[a.ID].Status)
}

func TestUpdateAdvertisement_TargetingLockedOnceActive(t *testing.T) {
	am, store, _, clk := setup(false)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)
	_, err = am.Activate(ctx, a.ID, "u1")
	require.NoError(t, err)

	clk.Advance(time.Hour)
	tests := []struct {
		name  string
		patch advert.Patch
	}{
		{name: "more localities", patch: advert.Patch{Localities: []string{"Bandra", "Andheri", "Powai"}}},
		{name: "longer run", patch: advert.Patch{Duration: &advert.Duration{Days: 30}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := am.UpdateAdvertisement(ctx, a.ID, "u1", tt.patch)
			assert.ErrorIs(t, err, advert.ErrTargetingLocked)
			assert.Equal(t, a.Pricing, store.ads[a.ID].Pricing)
			assert.Equal(t, a.ExpiresAt, store.ads[a.ID].ExpiresAt)
		})
	}

	heading := "Evening tutoring"
	updated, err := am.UpdateAdvertisement(ctx, a.ID, "u1", advert.Patch{
		Heading:    &heading,
		Localities: []string{"Bandra", "Andheri"},
		Duration:   &advert.Duration{Days: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "Evening tutoring", updated.Heading)
	assert.Equal(t, a.ExpiresAt, updated.ExpiresAt)
}

func TestCheckout_GatewayFailure(t *testing.T) {
	am, _, gw, _ := setup(true)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)

	gw.err = errors.New("card network down")
	_, err = am.Checkout(ctx, a.ID, "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestActivate_PaymentsDisabled(t *testing.T) {
	am, _, _, _ := setup(false)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)

	_, err = am.Checkout(ctx, a.ID, "u1")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	activated, err := am.Activate(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, advert.StatusActive, activated.Status)
}

func TestSearchByLocation(t *testing.T) {
	am, _, _, _ := setup(false)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)
	_, err = am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)
	_, err = am.Activate(ctx, a.ID, "u1")
	require.NoError(t, err)

	res, err := am.SearchByLocation(ctx, "Mumbai", "Mumbai", nil, paging.Request{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, a.ID, res.Items[0].ID)

	_, err = am.SearchByLocation(ctx, "", "Mumbai", nil, paging.Request{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestDeleteAdvertisement(t *testing.T) {
	am, store, _, _ := setup(false)
	ctx := context.Background()

	a, err := am.CreateAdvertisement(ctx, "u1", draft())
	require.NoError(t, err)

	assert.Equal(t, apperror.CodeNotAuthorized, apperror.CodeOf(am.DeleteAdvertisement(ctx, a.ID, "u2")))
	require.NoError(t, am.DeleteAdvertisement(ctx, a.ID, "u1"))
	assert.Empty(t, store.ads)
	assert.ErrorIs(t, am.DeleteAdvertisement(ctx, a.ID, "u1"), advert.ErrNotFound)
}
