package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"savesite/internal/auth"
	"savesite/internal/domain"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/httputil"
)

// AuthConfig wires the auth middleware.
type AuthConfig struct {
	Verifier auth.JWTVerifier // nil only when DevUserEmail is set
	Users    bookmarksSvc.UserService
	Logger   *slog.Logger

	// DevUserEmail signs every request in as this user without a token.
	// cmd/server only sets it in dev.
	DevUserEmail string

	// Public paths skip authentication entirely
	Public []string
}

// Auth verifies the bearer token, resolves its email to a registered user
// (creating one on first sign-in) and stores the user in the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			req, err := identify(cfg, r)
			if err != nil {
				cfg.Logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := cfg.Users.EnsureUser(r.Context(), req)
			if err != nil {
				if errors.Is(err, domain.ErrValidation) {
					httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				cfg.Logger.Error("user lookup failed", "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, user))
		})
	}
}

// identify turns the request's credentials into a sign-in request
func identify(cfg AuthConfig, r *http.Request) (*bookmarksSvc.EnsureUserRequest, error) {
	if cfg.DevUserEmail != "" {
		return &bookmarksSvc.EnsureUserRequest{Email: cfg.DevUserEmail}, nil
	}
	if cfg.Verifier == nil {
		return nil, domain.ErrUnauthorized
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := cfg.Verifier.VerifyToken(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	req := &bookmarksSvc.EnsureUserRequest{Email: claims.Email, Name: claims.Name}
	if claims.Picture != "" {
		picture := claims.Picture
		req.Image = &picture
	}
	return req, nil
}
