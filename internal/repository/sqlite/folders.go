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

// FolderRepository implements bookmarks.FolderRepository on SQLite.
type FolderRepository struct {
	s *Store
}

// Folders returns the folder repository backed by this store.
func (s *Store) Folders() bookmarksRepo.FolderRepository {
	return &FolderRepository{s: s}
}

const folderColumns = `id, name, user_id, parent_id, created_at, updated_at`

// Create inserts a folder.
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	folder.CreatedAt, folder.UpdatedAt = now, now

	_, err := r.s.executor(ctx).ExecContext(ctx, `
		INSERT INTO folders (id, name, user_id, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.Name, folder.UserID, nullableString(folder.ParentID),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID.
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	row := r.s.executor(ctx).QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = ?`, id)
	folder, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("folder", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return folder, nil
}

// Update persists name and parent.
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	folder.UpdatedAt = time.Now().UTC()
	result, err := r.s.executor(ctx).ExecContext(ctx,
		`UPDATE folders SET name = ?, parent_id = ?, updated_at = ? WHERE id = ?`,
		folder.Name, nullableString(folder.ParentID), formatTime(folder.UpdatedAt), folder.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	return requireAffected(result, domain.NotFound("folder", folder.ID))
}

// Delete removes a folder; descendants cascade.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.s.executor(ctx).ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return requireAffected(result, domain.NotFound("folder", id))
}

// ListByUser retrieves every folder of a user.
func (r *FolderRepository) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	return r.list(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? ORDER BY created_at ASC, name ASC`,
		userID)
}

// ListChildren lists the immediate children of parentID (nil = top level).
func (r *FolderRepository) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	return r.list(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND parent_id IS ? ORDER BY name ASC`,
		userID, nullableString(parentID))
}

// GetSubtreeIDs returns id and every descendant id.
func (r *FolderRepository) GetSubtreeIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := r.s.executor(ctx).QueryContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM folders WHERE id = ?
			UNION
			SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
		)
		SELECT id FROM subtree`, id)
	if err != nil {
		return nil, fmt.Errorf("get folder subtree: %w", err)
	}
	defer rows.Close()

	var ids []string
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

func (r *FolderRepository) list(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	rows, err := r.s.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(row scanner) (*models.Folder, error) {
	var f models.Folder
	var parentID sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&f.ID, &f.Name, &f.UserID, &parentID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	f.ParentID = stringPtr(parentID)

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &f, nil
}

// requireAffected returns notFound when the statement touched no rows.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
