package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/repository/postgres"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *postgres.RepositoryConfig) bookmarksRepo.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create registers a user; a taken email is a conflict
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, role, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, string(user.Role), user.Image, time.Now().UTC(),
	).Scan(&user.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user '%s' already exists", user.Email),
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT id, name, email, role, image, created_at FROM %s WHERE id = $1`, r.tables.Users)
	return r.get(ctx, query, id)
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT id, name, email, role, image, created_at FROM %s WHERE email = $1`, r.tables.Users)
	return r.get(ctx, query, email)
}

// UpdateImage replaces the profile image
func (r *PostgresUserRepository) UpdateImage(ctx context.Context, id string, image *string) error {
	query := fmt.Sprintf(`UPDATE %s SET image = $1 WHERE id = $2`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, image, id)
	if err != nil {
		return fmt.Errorf("update user image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}

func (r *PostgresUserRepository) get(ctx context.Context, query, key string) (*models.User, error) {
	var user models.User
	var role string
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, key).Scan(
		&user.ID, &user.Name, &user.Email, &role, &user.Image, &user.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NotFound("user", key)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Role = models.Role(role)
	return &user, nil
}
