package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
)

func TestJWKSVerifier_VerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := newVerifier(func(*jwt.Token) (any, error) { return &key.PublicKey, nil },
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	claims := func(email string, exp time.Time) *models.Claims {
		return &models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "google-123",
				ExpiresAt: jwt.NewNumericDate(exp),
			},
			Email: email,
			Name:  "Ada",
		}
	}
	sign := func(method jwt.SigningMethod, c *models.Claims, signingKey any) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(signingKey)
		require.NoError(t, err)
		return s
	}

	future := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		token     string
		wantEmail string
	}{
		{name: "valid", token: sign(jwt.SigningMethodRS256, claims("ada@example.com", future), key), wantEmail: "ada@example.com"},
		{name: "expired", token: sign(jwt.SigningMethodRS256, claims("ada@example.com", time.Now().Add(-time.Hour)), key)},
		{name: "wrong key", token: sign(jwt.SigningMethodRS256, claims("ada@example.com", future), otherKey)},
		{name: "hmac rejected", token: sign(jwt.SigningMethodHS256, claims("ada@example.com", future), []byte("secret"))},
		{name: "no email", token: sign(jwt.SigningMethodRS256, claims("", future), key)},
		{name: "garbage", token: "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.VerifyToken(tt.token)
			if tt.wantEmail == "" {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, got.Email)
			assert.Equal(t, "Ada", got.Name)
		})
	}
}
