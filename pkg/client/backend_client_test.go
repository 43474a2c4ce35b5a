package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendClient_Do(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c := NewBackendClient(BackendConfig{BaseURL: srv.URL + "/api/"})
	resp, err := c.Do(context.Background(), Request{
		Method:    http.MethodPost,
		Path:      "/chairs",
		RawQuery:  "page=2",
		Body:      []byte(`{"name":"A1"}`),
		Token:     "abc",
		RequestID: "req-1",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.True(t, resp.Success())
	assert.JSONEq(t, `{"id":1}`, string(resp.Body))
	assert.Equal(t, "/api/chairs", got.URL.Path)
	assert.Equal(t, "page=2", got.URL.RawQuery)
	assert.Equal(t, "Bearer abc", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "req-1", got.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"name":"A1"}`, string(gotBody))
}

func TestBackendClient_NotConfigured(t *testing.T) {
	c := NewBackendClient(BackendConfig{BaseURL: "  "})
	assert.Empty(t, c.BaseURL())
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBackendClient_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewBackendClient(BackendConfig{BaseURL: base})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users"})

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Contains(t, connErr.URL, "/users")
}

func TestBackendClient_Login(t *testing.T) {
	t.Run("flat response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/login", r.URL.Path)
			_, _ = w.Write([]byte(`{"accessToken":"tok","user":{"id":3,"username":"ana","role":"user","status":"approved"}}`))
		}))
		defer srv.Close()

		out, err := NewBackendClient(BackendConfig{BaseURL: srv.URL}).Login(context.Background(), "ana", "pw")
		require.NoError(t, err)
		assert.Equal(t, "tok", out.BearerToken())
		assert.Equal(t, int64(3), out.User.ID)
	})

	t.Run("wrapped response with token field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"data":{"token":"tok2","user":{"id":4,"username":"rui"}}}`))
		}))
		defer srv.Close()

		out, err := NewBackendClient(BackendConfig{BaseURL: srv.URL}).Login(context.Background(), "rui", "pw")
		require.NoError(t, err)
		assert.Equal(t, "tok2", out.BearerToken())
		assert.Equal(t, "rui", out.User.Username)
	})

	t.Run("backend rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Credenciais inválidas"}`))
		}))
		defer srv.Close()

		_, err := NewBackendClient(BackendConfig{BaseURL: srv.URL}).Login(context.Background(), "x", "y")
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
	})
}
