package auth

import models "savesite/internal/domain/models/bookmarks"

// JWTVerifier defines the interface for JWT token verification.
// The middleware only depends on this, so tests can swap in a stub.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Any failure is reported as domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
