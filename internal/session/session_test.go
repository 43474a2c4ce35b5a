package session

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vera-byte/vgo-booking/internal/config"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

var testUser = model.User{ID: 7, Username: "maria", Role: model.RoleAdmin, Status: model.StatusApproved}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	token, created, err := store.Create(ctx, "backend-token", testUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, created.Valid())

	loaded, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", loaded.AccessToken)
	assert.Equal(t, testUser, loaded.User)
	assert.Equal(t, created.ID, loaded.ID)

	_, err = store.Get(ctx, "unknown-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJWTStore(t *testing.T) {
	store := NewJWTStore("secret", time.Hour)
	exerciseStore(t, store)

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		token, _, err := NewJWTStore("other", time.Hour).Create(context.Background(), "tok", testUser)
		require.NoError(t, err)
		_, err = store.Get(context.Background(), token)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewJWTStore("secret", time.Minute)
		token, _, err := expired.Create(context.Background(), "tok", testUser)
		require.NoError(t, err)
		expired.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err = expired.Get(context.Background(), token)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cookie does not reveal backend token", func(t *testing.T) {
		token, _, err := store.Create(context.Background(), "backend-bearer-XYZ", testUser)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		decoded, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		assert.NotContains(t, string(decoded), "backend-bearer-XYZ")
		assert.NotContains(t, string(decoded), string(testUser.Role))
		assert.NotContains(t, string(decoded), testUser.Username)

		loaded, err := store.Get(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "backend-bearer-XYZ", loaded.AccessToken)
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		token, _, err := store.Create(context.Background(), "tok", testUser)
		require.NoError(t, err)
		other, _, err := store.Create(context.Background(), "tok", testUser)
		require.NoError(t, err)

		// 交换两个令牌的密文后重新签名，会话ID与密文不匹配
		var c claims
		_, _, err = jwt.NewParser().ParseUnverified(token, &c)
		require.NoError(t, err)
		var o claims
		_, _, err = jwt.NewParser().ParseUnverified(other, &o)
		require.NoError(t, err)
		c.Sealed = o.Sealed
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = store.Get(context.Background(), forged)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	exerciseStore(t, store)

	token, _, err := store.Create(context.Background(), "tok", testUser)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), token))
	_, err = store.Get(context.Background(), token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("set REDIS_ADDR to run redis session store tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedisStore(client, time.Minute, "test-session")
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))

	exerciseStore(t, store)
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(config.SessionConfig{Store: "memory"}, time.Hour)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(config.SessionConfig{Store: "cookie", Secret: "x"}, time.Hour)
	require.NoError(t, err)
	assert.IsType(t, &JWTStore{}, store)

	_, err = NewStore(config.SessionConfig{Store: "disk"}, time.Hour)
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newContext := func(r *http.Request) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = r
		return c
	}

	t.Run("cookie wins", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-cookie", TokenFromRequest(newContext(r), "session"))
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-header", TokenFromRequest(newContext(r), "session"))
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic abc")
		assert.Empty(t, TokenFromRequest(newContext(r), "session"))
	})
}
