package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/users-api/internal/api/middleware"
	"github.com/phrazzld/users-api/internal/config"
	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/mocks"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeoutSeconds: 1},
		Database: config.DatabaseConfig{
			Driver:         config.DriverMongo,
			URL:            "mongodb://localhost:27017",
			Name:           "users_api_test",
			TimeoutSeconds: 1,
		},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			TokenLifetimeMinutes: 60,
			BcryptCost:           4,
		},
	}
}

func newTestApplication(t *testing.T, users ...*domain.User) (*application, *logger.TestLogBuffer) {
	t.Helper()

	log, buf := logger.NewTestLogger(t)
	closed := false
	app, err := newApplication(testConfig(), log, mocks.NewMockUserStore(users...), func(context.Context) error {
		closed = true
		return nil
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		app.cleanup(context.Background())
		assert.True(t, closed, "store should be closed on cleanup")
	})
	return app, buf
}

func serve(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewApplicationRejectsShortSecret(t *testing.T) {
	t.Parallel()

	log, _ := logger.NewTestLogger(t)
	cfg := testConfig()
	cfg.Auth.JWTSecret = "too-short"

	app, err := newApplication(cfg, log, mocks.NewMockUserStore(), nil)
	assert.Nil(t, app)
	assert.ErrorContains(t, err, "JWT")
}

func TestHealthRoute(t *testing.T) {
	t.Parallel()

	app, _ := newTestApplication(t)
	w := serve(t, app.setupRouter(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.TraceIDHeader))
}

func TestRouterRegisterAndCurrentUser(t *testing.T) {
	t.Parallel()

	app, buf := newTestApplication(t)
	router := app.setupRouter()

	w := serve(t, router, http.MethodPost, "/api/users",
		`{"name":"Jane","email":"Jane@Example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokenResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.Token)

	w = serve(t, router, http.MethodGet, "/api/auth", "", "x-auth-token", tokenResp.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "jane@example.com", user["email"])
	assert.NotContains(t, user, "password")

	w = serve(t, router, http.MethodGet, "/api/users/"+user["_id"].(string), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, router, http.MethodPost, "/api/auth",
		`{"email":"jane@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, buf.String(), "user.registered")
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()

	app, _ := newTestApplication(t)
	router := app.setupRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"list users", http.MethodGet, "/api/users", "", http.StatusOK},
		{"unknown user", http.MethodGet, "/api/users/5d7a514b5d2c12c7449be045", "", http.StatusNotFound},
		{"malformed id", http.MethodGet, "/api/users/nope", "", http.StatusNotFound},
		{"patch unknown user", http.MethodPatch, "/api/users/5d7a514b5d2c12c7449be045", `{"name":"x"}`, http.StatusNotFound},
		{"current user needs token", http.MethodGet, "/api/auth", "", http.StatusUnauthorized},
		{"bad login", http.MethodPost, "/api/auth", `{"email":"a@example.com","password":"secret1"}`, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nothing", "", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/users/5d7a514b5d2c12c7449be045", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}
