package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
)

// UserService resolves the acting user for the authentication adapter
type UserService interface {
	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// EnsureUser returns the user for email, registering it on first sign-in
	EnsureUser(ctx context.Context, req *EnsureUserRequest) (*models.User, error)
}

// EnsureUserRequest carries the identity provider's profile
type EnsureUserRequest struct {
	Email string  `json:"email"`
	Name  string  `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}
