package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neighborly/internal/auth"
	"neighborly/internal/config"
	"neighborly/internal/domain/identity"
	"neighborly/internal/server/handlers"
	"neighborly/internal/service/sweep"
)

const secret = "test-secret"

type stubSweeper struct{}

func (stubSweeper) SweepExpired(ctx context.Context) (sweep.Result, error) {
	return sweep.Result{Notices: 1}, nil
}
func (stubSweeper) GetStats() sweep.Stats { return sweep.Stats{Runs: 2} }

type stubDB struct{}

func (stubDB) Ping(ctx context.Context) error { return nil }

type stubNATS struct{}

func (stubNATS) IsConnected() bool { return true }

func newTestServer() *Server {
	return NewServer(config.ServerConfig{RequestTimeout: 5 * time.Second}, Dependencies{
		Sweeper:  stubSweeper{},
		DB:       stubDB{},
		NATS:     stubNATS{},
		Verifier: auth.NewVerifier(secret),
		Validate: handlers.NewValidator(),
		Logger:   zap.NewNop(),
		Version:  "test",
	})
}

func token(t *testing.T, role identity.Role) string {
	t.Helper()
	v := auth.NewVerifier(secret)
	tok, err := v.Sign(identity.User{ID: "u1", Role: role}, time.Now(), time.Hour)
	require.NoError(t, err)
	return tok
}

func TestRoutes_Auth(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name       string
		method     string
		path       string
		role       identity.Role
		wantStatus int
		wantCode   string
	}{
		{name: "create meetup anonymous", method: http.MethodPost, path: "/api/v1/meetups", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "join anonymous", method: http.MethodPost, path: "/api/v1/meetups/m1/join", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "my notices anonymous", method: http.MethodGet, path: "/api/v1/notices/my", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "template stats anonymous", method: http.MethodGet, path: "/api/v1/templates/stats", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "template stats as user", method: http.MethodGet, path: "/api/v1/templates/stats", role: identity.RoleUser, wantStatus: http.StatusForbidden},
		{name: "sweep as user", method: http.MethodPost, path: "/api/v1/admin/sweep", role: identity.RoleUser, wantStatus: http.StatusForbidden},
		{name: "sweep stats as admin", method: http.MethodGet, path: "/api/v1/admin/sweep/stats", role: identity.RoleAdmin, wantStatus: http.StatusOK},
		{name: "sweep as admin", method: http.MethodPost, path: "/api/v1/admin/sweep", role: identity.RoleAdmin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+token(t, tt.role))
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var body struct {
				Success bool `json:"success"`
				Error   *struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus == http.StatusOK, body.Success)
			if tt.wantCode != "" {
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.wantCode, body.Error.Code)
			}
		})
	}
}

func TestRoutes_Health(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body.Data["database"])
	assert.Equal(t, "connected", body.Data["nats"])
	assert.Equal(t, "test", body.Data["version"])
}

func TestRoutes_NotFound(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
