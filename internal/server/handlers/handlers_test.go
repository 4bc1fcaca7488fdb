package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neighborly/internal/apperror"
	"neighborly/internal/domain/advert"
	"neighborly/internal/domain/identity"
	"neighborly/internal/domain/meetup"
	"neighborly/internal/domain/notice"
	"neighborly/internal/domain/paging"
	"neighborly/internal/service/sweep"
)

// fakeMeetups overrides the meetup.Manager methods a test needs. Calling
// anything else panics on the nil embedded interface.
type fakeMeetups struct {
	meetup.Manager
	created    *meetup.Meetup
	creatorID  string
	lastFilter meetup.Filter
	getErr     error
	joinErr    error
	leaveErr   error
}

func (f *fakeMeetups) CreateMeetup(ctx context.Context, creatorID string, draft meetup.Meetup) (*meetup.Meetup, error) {
	f.creatorID = creatorID
	draft.ID = "m1"
	draft.Creator = creatorID
	f.created = &draft
	return &draft, nil
}

func (f *fakeMeetups) GetMeetup(ctx context.Context, id string) (*meetup.Meetup, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &meetup.Meetup{ID: id, CurrentAttendees: 3}, nil
}

func (f *fakeMeetups) ListMeetups(ctx context.Context, filter meetup.Filter) (paging.Result[meetup.Meetup], error) {
	f.lastFilter = filter
	return paging.NewResult([]meetup.Meetup{{ID: "m1"}}, 1, filter.Page), nil
}

func (f *fakeMeetups) JoinMeetup(ctx context.Context, id, userID string) (*meetup.Meetup, error) {
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return &meetup.Meetup{ID: id, Attendees: []string{userID}}, nil
}

func (f *fakeMeetups) LeaveMeetup(ctx context.Context, id, userID string) (*meetup.Meetup, error) {
	if f.leaveErr != nil {
		return nil, f.leaveErr
	}
	return &meetup.Meetup{ID: id}, nil
}

type fakeNotices struct {
	notice.Manager
	created *notice.Notice
}

func (f *fakeNotices) CreateNotice(ctx context.Context, userID string, draft notice.Notice) (*notice.Notice, error) {
	draft.CreatedBy = userID
	f.created = &draft
	return &draft, nil
}

func (f *fakeNotices) GetUrgentQuota(ctx context.Context, userID string) (*notice.UrgentQuota, error) {
	return &notice.UrgentQuota{Count: 2, Limit: 3, CanCreateUrgent: true}, nil
}

type fakeAdverts struct {
	advert.Manager
}

func (f *fakeAdverts) CalculatePricing(localities []string, hours, days int) (advert.Pricing, error) {
	return advert.CalculatePricing(localities, hours, days)
}

type fakeSweeper struct {
	res sweep.Result
	err error
}

func (f *fakeSweeper) SweepExpired(ctx context.Context) (sweep.Result, error) { return f.res, f.err }
func (f *fakeSweeper) GetStats() sweep.Stats                                  { return sweep.Stats{Runs: 4} }

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

// asUser injects an authenticated user the way the auth middleware does
func asUser(id string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), identity.User{ID: id, Role: identity.RoleUser})))
		})
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Fields  []map[string]string `json:"fields"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func meetupRouter(f *fakeMeetups) http.Handler {
	h := NewMeetupHandler(f, NewValidator(), zap.NewNop())
	r := chi.NewRouter()
	r.Use(asUser("u1"))
	r.Post("/meetups", h.CreateMeetup)
	r.Get("/meetups", h.ListMeetups)
	r.Post("/meetups/{id}/join", h.JoinMeetup)
	r.Post("/meetups/{id}/leave", h.LeaveMeetup)
	return r
}

const validMeetupBody = `{
	"title": "Sunday photo walk",
	"description": "Walk around the old town with cameras",
	"category": "Photography",
	"type": "free",
	"meetupFormat": "physical",
	"meetupLocation": "Old town square",
	"visibilityRadius": 10,
	"location": {"address": "Main St 1", "coordinates": {"latitude": 12.97, "longitude": 77.59}},
	"date": "2030-05-01",
	"startTime": "09:00",
	"endTime": "11:30",
	"maxAttendees": 10,
	"tags": ["photo"]
}`

func TestCreateMeetup(t *testing.T) {
	f := &fakeMeetups{}
	rec, env := do(t, meetupRouter(f), http.MethodPost, "/meetups", validMeetupBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "u1", f.creatorID)
	require.NotNil(t, f.created)
	assert.Equal(t, time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), f.created.Date)
	assert.Equal(t, meetup.FormatPhysical, f.created.Format)
	assert.Equal(t, 77.59, f.created.Location.Coordinates.Longitude)
}

func TestCreateMeetup_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing title",
			body:      strings.Replace(validMeetupBody, `"title": "Sunday photo walk",`, ``, 1),
			wantField: "title",
			wantMsg:   "is required",
		},
		{
			name:      "malformed start time",
			body:      strings.Replace(validMeetupBody, `"startTime": "09:00"`, `"startTime": "9am"`, 1),
			wantField: "startTime",
			wantMsg:   "must be a valid time in HH:MM format",
		},
		{
			name:      "unknown type",
			body:      strings.Replace(validMeetupBody, `"type": "free"`, `"type": "vip"`, 1),
			wantField: "type",
			wantMsg:   "is not an allowed value",
		},
		{
			name:      "bad date",
			body:      strings.Replace(validMeetupBody, `"date": "2030-05-01"`, `"date": "tomorrow"`, 1),
			wantField: "date",
			wantMsg:   "must be a valid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeMeetups{}
			rec, env := do(t, meetupRouter(f), http.MethodPost, "/meetups", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, apperror.CodeValidation, env.Error.Code)
			require.Len(t, env.Error.Fields, 1)
			assert.Equal(t, tt.wantMsg, env.Error.Fields[0][tt.wantField])
			assert.Nil(t, f.created)
		})
	}
}

func TestCreateMeetup_MalformedJSON(t *testing.T) {
	rec, env := do(t, meetupRouter(&fakeMeetups{}), http.MethodPost, "/meetups", `{"title":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", env.Error.Message)
}

func TestListMeetups_Query(t *testing.T) {
	f := &fakeMeetups{}
	rec, env := do(t, meetupRouter(f), http.MethodGet,
		"/meetups?category=Gaming&tags=go,+chess,&lat=12.9&lon=77.5&radius=5&page=0&limit=500", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Gaming", f.lastFilter.Category)
	assert.Equal(t, []string{"go", "chess"}, f.lastFilter.Tags)
	require.NotNil(t, f.lastFilter.Area)
	assert.Equal(t, 12.9, f.lastFilter.Area.Center.Latitude)
	assert.Equal(t, 5.0, f.lastFilter.Area.RadiusKm)
	assert.Equal(t, paging.Request{Page: 1, Limit: 100}, f.lastFilter.Page)

	var page paging.Result[meetup.Meetup]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 100, page.Limit)
}

func TestListMeetups_NoAreaWithoutBothCoordinates(t *testing.T) {
	f := &fakeMeetups{}
	do(t, meetupRouter(f), http.MethodGet, "/meetups?lat=12.9", "")
	assert.Nil(t, f.lastFilter.Area)
}

func TestJoinLeave_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		fake     *fakeMeetups
		target   string
		wantCode int
		wantErr  string
	}{
		{name: "join ok", fake: &fakeMeetups{}, target: "/meetups/m1/join", wantCode: http.StatusOK},
		{name: "join full", fake: &fakeMeetups{joinErr: meetup.ErrMeetupFull}, target: "/meetups/m1/join", wantCode: http.StatusConflict, wantErr: apperror.CodeMeetupFull},
		{name: "join twice", fake: &fakeMeetups{joinErr: meetup.ErrAlreadyJoined}, target: "/meetups/m1/join", wantCode: http.StatusConflict, wantErr: apperror.CodeAlreadyJoined},
		{name: "join missing", fake: &fakeMeetups{joinErr: meetup.ErrNotFound}, target: "/meetups/m1/join", wantCode: http.StatusNotFound, wantErr: apperror.CodeMeetupNotFound},
		{name: "leave not joined", fake: &fakeMeetups{leaveErr: meetup.ErrNotJoined}, target: "/meetups/m1/leave", wantCode: http.StatusBadRequest, wantErr: apperror.CodeNotJoined},
		{name: "store failure", fake: &fakeMeetups{leaveErr: errors.New("db down")}, target: "/meetups/m1/leave", wantCode: http.StatusInternalServerError, wantErr: apperror.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, meetupRouter(tt.fake), http.MethodPost, tt.target, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr == "" {
				assert.True(t, env.Success)
				return
			}
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
		})
	}
}

func noticeRouter(f *fakeNotices) http.Handler {
	h := NewNoticeHandler(f, NewValidator(), zap.NewNop())
	r := chi.NewRouter()
	r.Use(asUser("u7"))
	r.Post("/notices", h.CreateNotice)
	r.Get("/notices/urgent-count", h.UrgentCount)
	return r
}

func TestCreateNotice(t *testing.T) {
	f := &fakeNotices{}
	body := `{"title":"Lost cat","description":"Grey cat missing near the park","category":"Lost & Found",
		"location":"Indiranagar","contact":"98450","urgent":true,"duration":"1 day"}`

	rec, _ := do(t, noticeRouter(f), http.MethodPost, "/notices", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.created)
	assert.Equal(t, "u7", f.created.CreatedBy)
	assert.Equal(t, notice.DurationOneDay, f.created.Duration)
	assert.True(t, f.created.Urgent)
}

func TestCreateNotice_ContactTooLong(t *testing.T) {
	body := `{"title":"Lost cat","description":"Grey cat missing near the park","category":"Lost & Found",
		"location":"Indiranagar","contact":"+91 98450 12345","duration":"1 day"}`

	rec, env := do(t, noticeRouter(&fakeNotices{}), http.MethodPost, "/notices", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, env.Error.Fields, 1)
	assert.Equal(t, "cannot exceed 10 characters", env.Error.Fields[0]["contact"])
}

func TestUrgentCount(t *testing.T) {
	rec, env := do(t, noticeRouter(&fakeNotices{}), http.MethodGet, "/notices/urgent-count", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2,"limit":3,"canCreateUrgent":true}`, string(env.Data))
}

func TestCalculatePricing(t *testing.T) {
	h := NewAdvertHandler(&fakeAdverts{}, NewValidator(), zap.NewNop())

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{
			name:     "locality discount",
			body:     `{"localities":["a","b","c","d","e"],"duration":{"hours":10,"days":0}}`,
			wantCode: http.StatusOK,
			wantBody: `{"basePrice":125,"discount":25,"finalPrice":100,"discountReason":"5+ locations"}`,
		},
		{
			name:     "hours out of range",
			body:     `{"localities":["a"],"duration":{"hours":25,"days":0}}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, http.HandlerFunc(h.CalculatePricing), http.MethodPost, "/", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, string(env.Data))
			} else {
				assert.Equal(t, apperror.CodeInvalidPricingInput, env.Error.Code)
			}
		})
	}
}

func TestLocationCatalog(t *testing.T) {
	h := NewAdvertHandler(&fakeAdverts{}, NewValidator(), zap.NewNop())
	r := chi.NewRouter()
	r.Get("/cities/{state}", h.Cities)

	rec, env := do(t, r, http.MethodGet, "/cities/Nowhere", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestAdminSweep(t *testing.T) {
	h := NewAdminHandler(&fakeSweeper{res: sweep.Result{Notices: 2, Advertisements: 1, Total: 3}}, zap.NewNop())

	rec, env := do(t, http.HandlerFunc(h.Sweep), http.MethodPost, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notices":2,"advertisements":1,"total":3}`, string(env.Data))

	failing := NewAdminHandler(&fakeSweeper{err: errors.New("timeout")}, zap.NewNop())
	rec, _ = do(t, http.HandlerFunc(failing.Sweep), http.MethodPost, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		wantCode int
		wantDB   string
	}{
		{name: "up", db: fakePinger{}, wantCode: http.StatusOK, wantDB: "up"},
		{name: "down", db: fakePinger{err: errors.New("refused")}, wantCode: http.StatusServiceUnavailable, wantDB: "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, nil, "test")
			rec, env := do(t, http.HandlerFunc(h.Health), http.MethodGet, "/api/health", "")

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(env.Data, &body))
			assert.Equal(t, tt.wantDB, body["database"])
			assert.Equal(t, "disconnected", body["nats"])
		})
	}
}
