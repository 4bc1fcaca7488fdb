package notice

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neighborly/internal/apperror"
	"neighborly/internal/clock"
	"neighborly/internal/domain/event"
	"neighborly/internal/domain/notice"
	"neighborly/internal/domain/paging"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type mockNoticeStore struct {
	mu      sync.Mutex
	notices map[string]notice.Notice
}

func newMockNoticeStore() *mockNoticeStore {
	return &mockNoticeStore{notices: make(map[string]notice.Notice)}
}

func (s *mockNoticeStore) CreateNotice(_ context.Context, n notice.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[n.ID] = n
	return nil
}

func (s *mockNoticeStore) CreateUrgentNotice(_ context.Context, n notice.Notice, windowStart time.Time, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countUrgent(n.CreatedBy, windowStart) >= limit {
		return notice.ErrUrgentQuotaExceeded
	}
	s.notices[n.ID] = n
	return nil
}

func (s *mockNoticeStore) GetNotice(_ context.Context, id string) (*notice.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notices[id]
	if !ok {
		return nil, notice.ErrNotFound
	}
	return &n, nil
}

func (s *mockNoticeStore) FindNotices(_ context.Context, filter notice.Filter) ([]notice.Notice, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notice.Notice
	for _, n := range s.notices {
		if filter.CreatedBy != "" && n.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(n.Location), strings.ToLower(filter.Location)) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !filter.NewestFirst && out[i].Urgent != out[j].Urgent {
			return out[i].Urgent
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, int64(len(out)), nil
}

func (s *mockNoticeStore) UpdateNotice(_ context.Context, n notice.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[n.ID] = n
	return nil
}

func (s *mockNoticeStore) UpdateUrgentNotice(_ context.Context, n notice.Notice, windowStart time.Time, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countUrgent(n.CreatedBy, windowStart) >= limit {
		return notice.ErrUrgentQuotaExceeded
	}
	s.notices[n.ID] = n
	return nil
}

func (s *mockNoticeStore) DeleteNotice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notices, id)
	return nil
}

func (s *mockNoticeStore) CountUrgentSince(_ context.Context, userID string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countUrgent(userID, since), nil
}

func (s *mockNoticeStore) countUrgent(userID string, since time.Time) int {
	count := 0
	for _, n := range s.notices {
		if n.CreatedBy == userID && n.Urgent && n.UrgentSince != nil && !n.UrgentSince.Before(since) {
			count++
		}
	}
	return count
}

func (s *mockNoticeStore) NoticeStats(_ context.Context) (*notice.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &notice.Stats{Total: int64(len(s.notices))}
	for _, n := range s.notices {
		switch n.Status {
		case notice.StatusActive:
			stats.Active++
			if n.Urgent {
				stats.Urgent++
			}
		case notice.StatusExpired:
			stats.Expired++
		}
	}
	return stats, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *mockPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func setup() (*NoticeManager, *mockNoticeStore, *mockPublisher, *clock.Mock) {
	store := newMockNoticeStore()
	pub := &mockPublisher{}
	clk := clock.NewMock(now)
	nm := NewNoticeManager(store, pub, clk, Config{UrgentMonthlyLimit: 3, QuotaLocation: time.UTC}, zap.NewNop())
	return nm, store, pub, clk
}

func draft(urgent bool, d notice.Duration) notice.Notice {
	return notice.Notice{
		Title:       "Water supply cut",
		Description: "No water on Sunday morning",
		Category:    "Services",
		Location:    "Indiranagar, Bangalore",
		Urgent:      urgent,
		Duration:    d,
	}
}

func TestCreateNotice(t *testing.T) {
	nm, store, pub, _ := setup()
	ctx := context.Background()

	n, err := nm.CreateNotice(ctx, "u1", draft(false, notice.DurationThreeDays))
	require.NoError(t, err)
	require.NotNil(t, n.ExpiresAt)
	assert.Equal(t, now.Add(72*time.Hour), *n.ExpiresAt)
	assert.Equal(t, notice.StatusActive, n.Status)
	assert.Equal(t, float64(notice.DefaultRadius), n.Radius)
	assert.Equal(t, "u1", n.CreatedBy)

	p, err := nm.CreateNotice(ctx, "u1", draft(false, notice.DurationPermanent))
	require.NoError(t, err)
	assert.Nil(t, p.ExpiresAt)

	assert.Len(t, store.notices, 2)
	assert.Len(t, pub.events, 2)
}

func TestCreateNotice_Rejected(t *testing.T) {
	nm, store, _, _ := setup()
	ctx := context.Background()

	_, err := nm.CreateNotice(ctx, "u1", draft(true, notice.DurationPermanent))
	assert.Equal(t, apperror.CodeUrgentPermanent, apperror.CodeOf(err))

	_, err = nm.CreateNotice(ctx, "u1", draft(false, "2 weeks"))
	assert.Equal(t, apperror.CodeInvalidDuration, apperror.CodeOf(err))

	assert.Empty(t, store.notices)
}

func TestUrgentQuota(t *testing.T) {
	nm, _, _, clk := setup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := nm.CanCreateUrgent(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneDay))
		require.NoError(t, err)
	}

	quota, err := nm.GetUrgentQuota(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, notice.UrgentQuota{Count: 3, Limit: 3, CanCreateUrgent: false}, *quota)

	_, err = nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneDay))
	assert.ErrorIs(t, err, notice.ErrUrgentQuotaExceeded)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	// Non-urgent notices and other users are unaffected.
	_, err = nm.CreateNotice(ctx, "u1", draft(false, notice.DurationOneDay))
	assert.NoError(t, err)
	_, err = nm.CreateNotice(ctx, "u2", draft(true, notice.DurationOneDay))
	assert.NoError(t, err)

	// A new calendar month resets the window.
	clk.Set(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	count, err := nm.UrgentCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneDay))
	assert.NoError(t, err)
}

func TestUrgentQuota_ConcurrentCreates(t *testing.T) {
	nm, store, _, _ := setup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneHour))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created, rejected := 0, 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, notice.ErrUrgentQuotaExceeded)
		rejected++
	}
	assert.Equal(t, 3, created)
	assert.Equal(t, 7, rejected)
	assert.Len(t, store.notices, 3)
}

func TestUpdateNotice(t *testing.T) {
	nm, store, _, clk := setup()
	ctx := context.Background()

	n, err := nm.CreateNotice(ctx, "u1", draft(false, notice.DurationOneDay))
	require.NoError(t, err)
	original := *n.ExpiresAt

	title := "Water supply restored"
	_, err = nm.UpdateNotice(ctx, n.ID, "u2", notice.Patch{Title: &title})
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	clk.Advance(time.Hour)
	updated, err := nm.UpdateNotice(ctx, n.ID, "u1", notice.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, original, *updated.ExpiresAt, "expiry only moves when the duration changes")

	week := notice.DurationOneWeek
	updated, err = nm.UpdateNotice(ctx, n.ID, "u1", notice.Patch{Duration: &week})
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(168*time.Hour), *updated.ExpiresAt)

	permanent := notice.DurationPermanent
	updated, err = nm.UpdateNotice(ctx, n.ID, "u1", notice.Patch{Duration: &permanent})
	require.NoError(t, err)
	assert.Nil(t, updated.ExpiresAt)

	urgent := true
	_, err = nm.UpdateNotice(ctx, n.ID, "u1", notice.Patch{Urgent: &urgent})
	assert.Equal(t, apperror.CodeUrgentPermanent, apperror.CodeOf(err))

	removed := store.notices[n.ID]
	removed.Status = notice.StatusRemoved
	store.notices[n.ID] = removed
	_, err = nm.UpdateNotice(ctx, n.ID, "u1", notice.Patch{Title: &title})
	assert.ErrorIs(t, err, notice.ErrNotFound)
}

func TestUpdateNotice_UrgentToggleCountsInCurrentMonth(t *testing.T) {
	nm, store, _, clk := setup()
	ctx := context.Background()

	// Created last month, long before the current quota window.
	clk.Set(time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC))
	var old []*notice.Notice
	for i := 0; i < 4; i++ {
		n, err := nm.CreateNotice(ctx, "u1", draft(false, notice.DurationPermanent))
		require.NoError(t, err)
		old = append(old, n)
	}

	clk.Set(now)
	urgent := true
	week := notice.DurationOneWeek
	toggle := notice.Patch{Urgent: &urgent, Duration: &week}
	for i := 0; i < 3; i++ {
		updated, err := nm.UpdateNotice(ctx, old[i].ID, "u1", toggle)
		require.NoError(t, err)
		require.NotNil(t, updated.UrgentSince)
		assert.Equal(t, now, *updated.UrgentSince)
	}

	count, err := nm.UrgentCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = nm.UpdateNotice(ctx, old[3].ID, "u1", toggle)
	assert.ErrorIs(t, err, notice.ErrUrgentQuotaExceeded)
	assert.False(t, store.notices[old[3].ID].Urgent)

	_, err = nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneDay))
	assert.ErrorIs(t, err, notice.ErrUrgentQuotaExceeded)

	// Dropping urgency frees the slot.
	off := false
	updated, err := nm.UpdateNotice(ctx, old[0].ID, "u1", notice.Patch{Urgent: &off})
	require.NoError(t, err)
	assert.Nil(t, updated.UrgentSince)
	_, err = nm.UpdateNotice(ctx, old[3].ID, "u1", toggle)
	assert.NoError(t, err)
}

func TestDeleteNotice(t *testing.T) {
	nm, store, pub, _ := setup()
	ctx := context.Background()

	n, err := nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneDay))
	require.NoError(t, err)

	assert.Equal(t, apperror.CodeNotAuthorized, apperror.CodeOf(nm.DeleteNotice(ctx, n.ID, "u2")))
	require.NoError(t, nm.DeleteNotice(ctx, n.ID, "u1"))
	assert.Empty(t, store.notices)
	assert.Equal(t, event.TypeDeleted, pub.events[len(pub.events)-1].Type)

	count, err := nm.UrgentCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count, "deleted notices do not count against the quota")
}

func TestListAndSearch(t *testing.T) {
	nm, _, _, clk := setup()
	ctx := context.Background()

	first, err := nm.CreateNotice(ctx, "u1", draft(false, notice.DurationOneDay))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	urgent, err := nm.CreateNotice(ctx, "u2", draft(true, notice.DurationOneDay))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	latest, err := nm.CreateNotice(ctx, "u1", draft(false, notice.DurationOneDay))
	require.NoError(t, err)

	res, err := nm.ListNotices(ctx, notice.Filter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, urgent.ID, res.Items[0].ID)
	assert.Equal(t, latest.ID, res.Items[1].ID)
	assert.Equal(t, first.ID, res.Items[2].ID)
	assert.Equal(t, 10, res.Limit)

	mine, err := nm.ListUserNotices(ctx, "u1", paging.Request{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)

	clk.Advance(time.Minute)
	mineUrgent, err := nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneDay))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	newest, err := nm.CreateNotice(ctx, "u1", draft(false, notice.DurationOneDay))
	require.NoError(t, err)

	mine, err = nm.ListUserNotices(ctx, "u1", paging.Request{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 4)
	assert.Equal(t, newest.ID, mine.Items[0].ID, "own notices ignore urgency when sorting")
	assert.Equal(t, mineUrgent.ID, mine.Items[1].ID)
	assert.Equal(t, latest.ID, mine.Items[2].ID)
	assert.Equal(t, first.ID, mine.Items[3].ID)

	found, err := nm.SearchByLocation(ctx, "indiranagar", paging.Request{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), found.Total)

	_, err = nm.SearchByLocation(ctx, "", paging.Request{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestGetStats(t *testing.T) {
	nm, store, _, _ := setup()
	ctx := context.Background()

	n, err := nm.CreateNotice(ctx, "u1", draft(true, notice.DurationOneDay))
	require.NoError(t, err)
	_, err = nm.CreateNotice(ctx, "u1", draft(false, notice.DurationOneDay))
	require.NoError(t, err)

	expired := store.notices[n.ID]
	expired.Status = notice.StatusExpired
	store.notices[n.ID] = expired

	stats, err := nm.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, notice.Stats{Total: 2, Active: 1, Expired: 1, Urgent: 0}, *stats)
}
