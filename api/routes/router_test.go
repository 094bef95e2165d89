package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/venuecast/venuecast-backend/internal/playback"
	"github.com/venuecast/venuecast-backend/pkg/config"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	engine, err := playback.NewEngine(playback.EngineParams{
		Store:        playback.NewMemoryStore(),
		PauseSeconds: 15,
		Log:          logg,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start engine: %v", err)
	}

	return NewRouter(RouterParams{
		Config: &config.Config{
			App: config.AppConfig{Env: config.AppEnvDev, Port: "0"},
			JWT: config.JWTConfig{Secret: "test-secret", Issuer: "venuecast-test", ExpirationMinutes: 30},
		},
		Log:    logg,
		Engine: engine,
	})
}

func TestPublicRoutesNeedNoAuth(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/api/public/ping", "/api/public/playback", "/health/live"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, resp.Code)
		}
	}
}

func TestStaffRoutesRejectAnonymous(t *testing.T) {
	router := testRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/queue"},
		{http.MethodPost, "/api/v1/playback/skip"},
		{http.MethodDelete, "/api/v1/queue/123"},
		{http.MethodDelete, "/api/v1/history"},
		{http.MethodDelete, "/api/v1/rankings"},
		{http.MethodPut, "/api/v1/settings"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s returned %d, want 401", tc.method, tc.path, resp.Code)
		}
	}
}

func TestReadyReportsDegradedWithoutDependencies(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without db/redis, got %d", resp.Code)
	}
}
