package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
)

// TagRepository implements bookmarks.TagRepository on SQLite.
type TagRepository struct {
	s *Store
}

// Tags returns the tag repository backed by this store.
func (s *Store) Tags() bookmarksRepo.TagRepository {
	return &TagRepository{s: s}
}

const (
	tagColumns         = `id, name, position, user_id, folder_id, created_at`
	prefixedTagColumns = `t.id, t.name, t.position, t.user_id, t.folder_id, t.created_at`
)

// Create inserts a tag.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	tag.CreatedAt = time.Now().UTC()

	_, err := r.s.executor(ctx).ExecContext(ctx, `
		INSERT INTO tags (id, name, position, user_id, folder_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.Position,
		nullableString(tag.UserID), nullableString(tag.FolderID), formatTime(tag.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("tag scope %s: %w", tag.Scope().Key(), domain.ErrNotFound)
		}
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// GetByID retrieves a tag by ID.
func (r *TagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	row := r.s.executor(ctx).QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("tag", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// GetByIDs retrieves the tags that exist among ids.
func (r *TagRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	in, args := inClause(ids)
	return r.list(ctx, `SELECT `+tagColumns+` FROM tags WHERE id IN (`+in+`) ORDER BY position ASC`, args...)
}

// Rename changes a tag's name.
func (r *TagRepository) Rename(ctx context.Context, id, name string) error {
	result, err := r.s.executor(ctx).ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename tag: %w", err)
	}
	return requireAffected(result, domain.NotFound("tag", id))
}

// Delete removes a tag; website links cascade.
func (r *TagRepository) Delete(ctx context.Context, id string) error {
	result, err := r.s.executor(ctx).ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return requireAffected(result, domain.NotFound("tag", id))
}

// FindByName returns the tag named name in scope, or nil.
func (r *TagRepository) FindByName(ctx context.Context, scope models.TagScope, name string) (*models.Tag, error) {
	where, args := scopeWhere(scope)
	tags, err := r.list(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ? AND `+where+` LIMIT 1`,
		append([]any{name}, args...)...)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &tags[0], nil
}

// List resolves the filter branches (OR-ed) ordered by position.
func (r *TagRepository) List(ctx context.Context, filter models.TagFilter) ([]models.Tag, error) {
	var branches []string
	var args []any
	if filter.UserID != nil {
		branches = append(branches, "(user_id = ? AND folder_id IS NULL)")
		args = append(args, *filter.UserID)
	}
	if filter.FolderID != nil {
		branches = append(branches, "folder_id = ?")
		args = append(args, *filter.FolderID)
	}
	if len(branches) == 0 {
		return []models.Tag{}, nil
	}
	return r.list(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE `+strings.Join(branches, " OR ")+` ORDER BY position ASC, created_at ASC`,
		args...)
}

// ShiftPositions adds delta to every position >= from in scope.
func (r *TagRepository) ShiftPositions(ctx context.Context, scope models.TagScope, from, delta int) error {
	where, args := scopeWhere(scope)
	_, err := r.s.executor(ctx).ExecContext(ctx,
		`UPDATE tags SET position = position + ? WHERE position >= ? AND `+where,
		append([]any{delta, from}, args...)...)
	if err != nil {
		return fmt.Errorf("shift tag positions: %w", err)
	}
	return nil
}

// ListPositions returns every (tag id, position) pair in scope.
func (r *TagRepository) ListPositions(ctx context.Context, scope models.TagScope) ([]models.PositionUpdate, error) {
	where, args := scopeWhere(scope)
	rows, err := r.s.executor(ctx).QueryContext(ctx,
		`SELECT id, position FROM tags WHERE `+where+` ORDER BY position ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tag positions: %w", err)
	}
	return collectPositions(rows)
}

// SetPositions writes absolute positions.
func (r *TagRepository) SetPositions(ctx context.Context, updates []models.PositionUpdate) error {
	for _, u := range updates {
		result, err := r.s.executor(ctx).ExecContext(ctx,
			`UPDATE tags SET position = ? WHERE id = ?`, u.Position, u.ID)
		if err != nil {
			return fmt.Errorf("set tag position: %w", err)
		}
		if err := requireAffected(result, domain.NotFound("tag", u.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (r *TagRepository) list(ctx context.Context, query string, args ...any) ([]models.Tag, error) {
	rows, err := r.s.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// scanTag scans the tag columns, preceded by any leading destinations.
func scanTag(row scanner, leading ...any) (*models.Tag, error) {
	var t models.Tag
	var userID, folderID sql.NullString
	var createdAt string
	dest := append(leading, &t.ID, &t.Name, &t.Position, &userID, &folderID, &createdAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t.UserID = stringPtr(userID)
	t.FolderID = stringPtr(folderID)

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &t, nil
}

// scopeWhere renders a scope as a predicate; an absent key matches NULL.
func scopeWhere(scope models.TagScope) (string, []any) {
	var parts []string
	var args []any
	if scope.UserID != nil {
		parts = append(parts, "user_id = ?")
		args = append(args, *scope.UserID)
	} else {
		parts = append(parts, "user_id IS NULL")
	}
	if scope.FolderID != nil {
		parts = append(parts, "folder_id = ?")
		args = append(args, *scope.FolderID)
	} else {
		parts = append(parts, "folder_id IS NULL")
	}
	return strings.Join(parts, " AND "), args
}
