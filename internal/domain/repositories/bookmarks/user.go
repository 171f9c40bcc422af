package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateImage(ctx context.Context, id string, image *string) error
}
