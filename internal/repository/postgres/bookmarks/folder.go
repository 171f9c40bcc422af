package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/repository/postgres"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) bookmarksRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, user_id, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ID,
		folder.Name,
		folder.UserID,
		folder.ParentID,
		now,
	).Scan(&folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NotFound("parent folder", derefOr(folder.ParentID, ""))
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, user_id, parent_id, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.Name,
		&folder.UserID,
		&folder.ParentID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NotFound("folder", id)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update updates a folder's name and parent
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	folder.UpdatedAt = time.Now().UTC()

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folder.Name, folder.ParentID, folder.UpdatedAt, folder.ID)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("folder", folder.ID)
	}

	return nil
}

// Delete removes a folder; the store cascades to descendants
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("folder", id)
	}

	return nil
}

// ListByUser retrieves every folder of a user
func (r *PostgresFolderRepository) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, user_id, parent_id, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at ASC, name ASC
	`, r.tables.Folders)

	return r.list(ctx, query, userID)
}

// ListChildren lists the immediate children of parentID (nil = top level)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, user_id, parent_id, created_at, updated_at
		FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY name ASC
	`, r.tables.Folders)

	return r.list(ctx, query, userID, parentID)
}

// GetSubtreeIDs returns id and every descendant id
func (r *PostgresFolderRepository) GetSubtreeIDs(ctx context.Context, id string) ([]string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %s WHERE id = $1
			UNION
			SELECT f.id FROM %s f JOIN subtree s ON f.parent_id = s.id
		)
		SELECT id FROM subtree
	`, r.tables.Folders, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get folder subtree: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var folderID string
		if err := rows.Scan(&folderID); err != nil {
			return nil, fmt.Errorf("scan folder id: %w", err)
		}
		ids = append(ids, folderID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder subtree: %w", err)
	}
	if len(ids) == 0 {
		return nil, domain.NotFound("folder", id)
	}

	return ids, nil
}

func (r *PostgresFolderRepository) list(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.UserID,
			&folder.ParentID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
