package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vera-byte/vgo-booking/internal/config"
	"github.com/vera-byte/vgo-booking/internal/module"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/modules/resources"
	"go.uber.org/zap"
)

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "vgo-booking", Env: config.EnvProduction},
		Server:  config.ServerConfig{Mode: "test"},
		Backend: config.BackendConfig{PublicURL: backendURL},
		Session: config.SessionConfig{Store: "memory", CookieName: "session", TTL: 3600},
		CORS:    config.CORSConfig{Origins: []string{"*"}},
		Modules: map[string]interface{}{"dashboard": map[string]interface{}{"enabled": false}},
	}
}

func TestNewApp(t *testing.T) {
	a, err := newApp(context.Background(), testConfig("http://backend.local"), zap.NewNop())
	require.NoError(t, err)

	_, ok := a.manager.GetModule("dashboard")
	assert.False(t, ok)
	_, ok = a.manager.GetModule("chairs")
	assert.True(t, ok)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chairs", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewApp_UnhealthyWithoutBackend(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(""), zap.NewNop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type closingStore struct {
	session.Store
	closed int
}

func (s *closingStore) Close() error {
	s.closed++
	return nil
}

func TestApp_ShutdownClosesStore(t *testing.T) {
	// 未注册 auth 模块时存储仍需关闭
	store := &closingStore{}
	a := &app{manager: module.NewManager(zap.NewNop()), store: store}

	require.NoError(t, a.shutdown(context.Background()))
	assert.Equal(t, 1, store.closed)
}

func TestPrintDescriptorTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printDescriptorTable(&buf, resources.All()))

	out := buf.String()
	assert.Contains(t, out, "/api/appointments/:id/cancel-by-admin")
	assert.Contains(t, out, "PATCH /appointments/{id}/cancel")
	assert.Contains(t, out, "DELETE /chairs/bulk-delete")
	assert.Contains(t, out, "wrap+pagination")
}
