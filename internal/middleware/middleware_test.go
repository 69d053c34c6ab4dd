package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/models"
)

type fakeResolver struct {
	sessions map[string]auth.Identity
	err      error
}

func (f fakeResolver) TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(auth.CookieName)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (f fakeResolver) Resolve(_ context.Context, token string) (auth.Identity, bool, error) {
	if f.err != nil {
		return auth.Identity{}, false, f.err
	}
	id, ok := f.sessions[token]
	return id, ok, nil
}

func identityEcho(t *testing.T, want *auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, want, auth.OptionalIdentity(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSession(t *testing.T) {
	alice := auth.Identity{UserID: 1, Role: models.RoleUser}
	resolver := fakeResolver{sessions: map[string]auth.Identity{"good": alice}}

	tests := []struct {
		name     string
		resolver fakeResolver
		cookie   string
		want     *auth.Identity
	}{
		{name: "valid session", resolver: resolver, cookie: "good", want: &alice},
		{name: "unknown session", resolver: resolver, cookie: "stale"},
		{name: "no cookie", resolver: resolver},
		{name: "store down", resolver: fakeResolver{err: errors.New("redis down")}, cookie: "good"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Session(tt.resolver, zap.NewNop())(identityEcho(t, tt.want))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusNoContent, rec.Code)
		})
	}
}

func TestRequireIdentity(t *testing.T) {
	called := false
	h := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.ErrUnauthenticated.Error())
	assert.False(t, called)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 2, Role: models.RoleUser}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("wildcard never allows credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.test")
		CORS([]string{"*"})(next).ServeHTTP(rec, req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("listed origin allows credentials alongside wildcard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		CORS([]string{"*", "http://localhost:3000"})(next).ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.test")
		CORS([]string{"http://blog.test"})(next).ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("preflight short circuits", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
		req.Header.Set("Origin", "http://blog.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		CORS([]string{"http://blog.test/"})(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://blog.test", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "/missing", entry.ContextMap()["path"])
	assert.EqualValues(t, http.StatusNotFound, entry.ContextMap()["status"])
}
