package resources

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vera-byte/vgo-booking/internal/config"
	"github.com/vera-byte/vgo-booking/internal/module"
	"github.com/vera-byte/vgo-booking/internal/proxy"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/pkg/client"
	"github.com/vera-byte/vgo-booking/pkg/model"
	"go.uber.org/zap"
)

func TestTables_Invariants(t *testing.T) {
	names := map[string]bool{}
	routes := map[string]bool{}

	for _, table := range All() {
		for _, d := range table.Descriptors {
			t.Run(d.Name, func(t *testing.T) {
				require.NoError(t, d.Validate())
				assert.NotEmpty(t, strings.TrimSpace(d.FallbackError))
				assert.True(t, strings.HasPrefix(d.Name, table.Name+"."), "name must be prefixed by resource")

				if d.List {
					assert.Equal(t, proxy.EnvelopeWrap, d.Envelope)
					assert.Contains(t, d.Query, proxy.Page())
					for _, q := range d.Query {
						if q.Name == "limit" {
							assert.Contains(t, []string{"6", "7", "8", "9", "10"}, q.Default)
						}
					}
				}
			})

			assert.False(t, names[d.Name], "duplicate descriptor %s", d.Name)
			names[d.Name] = true

			key := d.Method + " " + table.Name + d.Route
			assert.False(t, routes[key], "duplicate route %s", key)
			routes[key] = true
		}
	}
}

func TestTables_RoleGates(t *testing.T) {
	find := func(name string) proxy.Descriptor {
		for _, table := range All() {
			for _, d := range table.Descriptors {
				if d.Name == name {
					return d
				}
			}
		}
		t.Fatalf("descriptor %s not found", name)
		return proxy.Descriptor{}
	}

	staffOnly := []string{"appointments.confirm", "appointments.cancel_by_admin"}
	for _, name := range staffOnly {
		d := find(name)
		assert.True(t, d.Allows(model.RoleAdmin), name)
		assert.True(t, d.Allows(model.RoleAttendant), name)
		assert.False(t, d.Allows(model.RoleUser), name)
	}

	adminOnly := []string{"users.list", "users.bulk_delete", "chairs.create", "schedules.update", "approvals.update", "dashboard.get"}
	for _, name := range adminOnly {
		d := find(name)
		assert.True(t, d.Allows(model.RoleAdmin), name)
		assert.False(t, d.Allows(model.RoleAttendant), name)
	}

	open := []string{"users.me", "chairs.list", "appointments.available_times", "appointments.cancel", "roles.list"}
	for _, name := range open {
		assert.False(t, find(name).RequiresRole(), name)
	}
}

func TestSharedRoles(t *testing.T) {
	assert.Equal(t, []model.Role{model.RoleAdmin}, sharedRoles(Approvals().Descriptors))
	assert.Equal(t, []model.Role{model.RoleAdmin}, sharedRoles(Dashboard().Descriptors))
	assert.Nil(t, sharedRoles(Users().Descriptors))
	assert.Nil(t, sharedRoles(Chairs().Descriptors))
	assert.Nil(t, sharedRoles(Roles().Descriptors))
	assert.Nil(t, sharedRoles(nil))
}

type captured struct {
	mu     sync.Mutex
	method string
	path   string
	query  string
	body   string
}

func newBackend(t *testing.T, status int, payload string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got.mu.Lock()
		got.method, got.path, got.query, got.body = r.Method, r.URL.Path, r.URL.RawQuery, string(data)
		got.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newRouter(t *testing.T, baseURL string, role model.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := module.Deps{
		Config: &config.Config{App: config.AppConfig{Env: config.EnvProduction}},
		Client: client.NewBackendClient(client.BackendConfig{BaseURL: baseURL}),
		Logger: zap.NewNop(),
	}
	manager := module.NewManager(zap.NewNop())
	for _, f := range Factories() {
		m, err := f.CreateModule()
		require.NoError(t, err)
		require.NoError(t, manager.RegisterModule(m))
	}
	require.NoError(t, manager.InitializeAll(context.Background(), deps))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		session.Set(c, &session.Session{
			AccessToken: "backend-token",
			User:        model.User{ID: 9, Username: "carla", Role: role, Status: model.StatusApproved},
		})
		c.Next()
	})
	require.NoError(t, manager.RegisterRoutes(r.Group("/api")))
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes_UpstreamMapping(t *testing.T) {
	tests := []struct {
		name       string
		role       model.Role
		method     string
		target     string
		body       string
		wantMethod string
		wantPath   string
		wantQuery  string
	}{
		{"chairs list defaults", model.RoleUser, http.MethodGet, "/api/chairs?foo=bar", "",
			http.MethodGet, "/chairs", "page=1&limit=6"},
		{"users me before id", model.RoleUser, http.MethodGet, "/api/users/me", "",
			http.MethodGet, "/users/me", ""},
		{"all status renamed", model.RoleUser, http.MethodGet, "/api/appointments/all-status", "",
			http.MethodGet, "/appointments/allStatus", ""},
		{"cancel by admin", model.RoleAttendant, http.MethodPatch, "/api/appointments/12/cancel-by-admin", "",
			http.MethodPatch, "/appointments/12/cancel", ""},
		{"confirm", model.RoleAdmin, http.MethodPatch, "/api/appointments/12/confirm", `{"note":"ok"}`,
			http.MethodPatch, "/appointments/12/confirm", ""},
		{"users bulk delete", model.RoleAdmin, http.MethodPost, "/api/users/bulk-delete", `{"ids":[4,5]}`,
			http.MethodDelete, "/users/bulk-delete", ""},
		{"my appointments", model.RoleUser, http.MethodGet, "/api/appointments/my-appointments?status=pending", "",
			http.MethodGet, "/appointments/my-appointments", "status=pending&page=1&limit=6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newBackend(t, http.StatusOK, `{"data":[]}`)
			r := newRouter(t, srv.URL, tt.role)

			w := do(r, tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			got.mu.Lock()
			defer got.mu.Unlock()
			assert.Equal(t, tt.wantMethod, got.method)
			assert.Equal(t, tt.wantPath, got.path)
			assert.Equal(t, tt.wantQuery, got.query)
		})
	}
}

func TestRoutes_AttendantCannotMutateChairs(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, `{}`)
	r := newRouter(t, srv.URL, model.RoleAttendant)

	w := do(r, http.MethodPatch, "/api/chairs/3", `{"name":"Cadeira 3"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, got.path)
}

func TestRoutes_AdminOnlyResources(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, `{"data":[]}`)

	for _, target := range []string{"/api/approvals", "/api/dashboard"} {
		w := do(newRouter(t, srv.URL, model.RoleAttendant), http.MethodGet, target, "")
		assert.Equal(t, http.StatusForbidden, w.Code, target)
	}
	assert.Empty(t, got.path)

	w := do(newRouter(t, srv.URL, model.RoleAdmin), http.MethodGet, "/api/approvals", "")
	assert.Equal(t, http.StatusOK, w.Code)
	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Equal(t, "/approvals", got.path)
}

func TestModule_HealthCheck(t *testing.T) {
	m := NewModule("chairs", "", Chairs().Descriptors)
	assert.Error(t, m.HealthCheck(context.Background()))

	require.NoError(t, m.Initialize(context.Background(), module.Deps{
		Config: &config.Config{},
		Client: client.NewBackendClient(client.BackendConfig{}),
		Logger: zap.NewNop(),
	}))
	assert.Error(t, m.HealthCheck(context.Background()))

	require.NoError(t, m.Initialize(context.Background(), module.Deps{
		Config: &config.Config{},
		Client: client.NewBackendClient(client.BackendConfig{BaseURL: "http://backend.local"}),
		Logger: zap.NewNop(),
	}))
	assert.NoError(t, m.HealthCheck(context.Background()))
}
