package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
)

// UserRepository implements bookmarks.UserRepository on SQLite.
type UserRepository struct {
	s *Store
}

// Users returns the user repository backed by this store.
func (s *Store) Users() bookmarksRepo.UserRepository {
	return &UserRepository{s: s}
}

// Create registers a user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt = time.Now().UTC()

	_, err := r.s.executor(ctx).ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, string(user.Role), nullableString(user.Image), formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user '%s' already exists", user.Email),
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, `SELECT id, name, email, role, image, created_at FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, `SELECT id, name, email, role, image, created_at FROM users WHERE email = ?`, email)
}

// UpdateImage replaces the profile image.
func (r *UserRepository) UpdateImage(ctx context.Context, id string, image *string) error {
	result, err := r.s.executor(ctx).ExecContext(ctx,
		`UPDATE users SET image = ? WHERE id = ?`, nullableString(image), id)
	if err != nil {
		return fmt.Errorf("update user image: %w", err)
	}
	return requireAffected(result, domain.NotFound("user", id))
}

func (r *UserRepository) get(ctx context.Context, query, key string) (*models.User, error) {
	var u models.User
	var role, createdAt string
	var image sql.NullString
	err := r.s.executor(ctx).QueryRowContext(ctx, query, key).Scan(
		&u.ID, &u.Name, &u.Email, &role, &image, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Role = models.Role(role)
	u.Image = stringPtr(image)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &u, nil
}
