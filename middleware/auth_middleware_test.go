package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/cache"
	"github.com/kasuganosora/relicsave/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSec = config.SecurityConfig{JWTSecret: testSecret, JWTTTLH: time.Hour}

func newCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(config.CacheConfig{})
	require.NoError(t, err)
	return c
}

func newProtectedRouter(c cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(testSec, c, time.Hour))
	r.GET("/protected", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, GetSessionID(ctx))
	})
	return r
}

// login issues a token for sid and registers it in the cache.
func login(t *testing.T, c cache.Cache, sid string) string {
	t.Helper()
	tok, err := GenerateToken(sid, testSecret, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), cache.TokenKey(tok), sid, time.Minute))
	return tok
}

func get(r *gin.Engine, url, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_Rejections(t *testing.T) {
	c := newCache(t)
	r := newProtectedRouter(c)

	unregistered, err := GenerateToken("sess-x", testSecret, time.Hour)
	require.NoError(t, err)
	mismatched, err := GenerateToken("sess-y", testSecret, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), cache.TokenKey(mismatched), "sess-other", time.Minute))

	tests := []struct {
		name string
		auth string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc123"},
		{"garbage token", "Bearer notavalidtoken"},
		{"not in cache", "Bearer " + unregistered},
		{"session mismatch", "Bearer " + mismatched},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, get(r, "/protected", tt.auth).Code)
		})
	}
}

func TestAuth_Valid(t *testing.T) {
	c := newCache(t)
	r := newProtectedRouter(c)
	tok := login(t, c, "sess-1")

	w := get(r, "/protected", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", w.Body.String())
}

func TestAuth_QueryToken(t *testing.T) {
	c := newCache(t)
	r := newProtectedRouter(c)
	tok := login(t, c, "sess-2")

	w := get(r, "/protected?token="+tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-2", w.Body.String())
}

func TestAuth_RevokedToken(t *testing.T) {
	c := newCache(t)
	r := newProtectedRouter(c)
	tok := login(t, c, "sess-3")
	require.NoError(t, c.Del(context.Background(), cache.TokenKey(tok)))

	assert.Equal(t, http.StatusUnauthorized, get(r, "/protected", "Bearer "+tok).Code)
}

func TestGetSessionID_Missing(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetSessionID(ctx))
	assert.Empty(t, GetToken(ctx))
}
