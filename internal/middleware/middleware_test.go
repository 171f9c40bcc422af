package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/httputil"
	"savesite/internal/repository/sqlite"
	"savesite/internal/service/users"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubVerifier struct {
	tokens map[string]*models.Claims
}

func (s *stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	if c, ok := s.tokens[token]; ok {
		return c, nil
	}
	return nil, domain.ErrUnauthorized
}

func (s *stubVerifier) Close() error { return nil }

func newUserService(t *testing.T) bookmarksSvc.UserService {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "mw.db"), discard)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return users.NewUserService(store.Users(), discard)
}

// whoami echoes the authenticated user's email
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user := httputil.GetUser(r)
	if user == nil {
		_, _ = io.WriteString(w, "anonymous")
		return
	}
	_, _ = io.WriteString(w, user.Email)
})

func TestAuth(t *testing.T) {
	verifier := &stubVerifier{tokens: map[string]*models.Claims{
		"good":     {Email: "Ada@Example.com", Name: "Ada", Picture: "https://img.test/a.png"},
		"bademail": {Email: "nope"},
	}}
	handler := Auth(AuthConfig{
		Verifier: verifier,
		Users:    newUserService(t),
		Logger:   discard,
		Public:   []string{"/health"},
	})(whoami)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", method: http.MethodGet, path: "/api/tree", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "ada@example.com"},
		{name: "missing header", method: http.MethodGet, path: "/api/tree", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, path: "/api/tree", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", method: http.MethodGet, path: "/api/tree", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "malformed email claim", method: http.MethodGet, path: "/api/tree", header: "Bearer bademail", wantStatus: http.StatusUnauthorized},
		{name: "public path", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "preflight", method: http.MethodOptions, path: "/api/tree", wantStatus: http.StatusOK, wantBody: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuth_DevBypass(t *testing.T) {
	handler := Auth(AuthConfig{
		Users:        newUserService(t),
		Logger:       discard,
		DevUserEmail: "dev@example.com",
	})(whoami)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tree", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev@example.com", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(discard)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRequestLog_PassesThrough(t *testing.T) {
	teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	RequestLog(discard)(teapot).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
