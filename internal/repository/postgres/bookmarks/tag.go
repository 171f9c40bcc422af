package bookmarks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/repository/postgres"
)

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *postgres.RepositoryConfig) bookmarksRepo.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const tagColumns = `id, name, position, user_id, folder_id, created_at`

// Create inserts a tag
func (r *PostgresTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, position, user_id, folder_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tag.ID, tag.Name, tag.Position, tag.UserID, tag.FolderID, time.Now().UTC(),
	).Scan(&tag.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("tag scope %s: %w", tag.Scope().Key(), domain.ErrNotFound)
		}
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// GetByID retrieves a tag by ID
func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, tagColumns, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	tag, err := pgx.CollectExactlyOneRow(rows, scanTag)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NotFound("tag", id)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

// GetByIDs retrieves the tags that exist among ids
func (r *PostgresTagRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1) ORDER BY position ASC`, tagColumns, r.tables.Tags)
	return r.collect(ctx, query, ids)
}

// Rename changes a tag's name
func (r *PostgresTagRepository) Rename(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("rename tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("tag", id)
	}
	return nil
}

// Delete removes a tag
func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("tag", id)
	}
	return nil
}

// FindByName returns the tag named name in scope, or nil
func (r *PostgresTagRepository) FindByName(ctx context.Context, scope models.TagScope, name string) (*models.Tag, error) {
	where, args := scopeWhere(scope, 2)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1 AND %s LIMIT 1`, tagColumns, r.tables.Tags, where)

	tags, err := r.collect(ctx, query, append([]any{name}, args...)...)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &tags[0], nil
}

// List resolves the filter branches (OR-ed) ordered by position
func (r *PostgresTagRepository) List(ctx context.Context, filter models.TagFilter) ([]models.Tag, error) {
	var branches []string
	var args []any
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		branches = append(branches, fmt.Sprintf("(user_id = $%d AND folder_id IS NULL)", len(args)))
	}
	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		branches = append(branches, fmt.Sprintf("folder_id = $%d", len(args)))
	}
	if len(branches) == 0 {
		return []models.Tag{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY position ASC, created_at ASC
	`, tagColumns, r.tables.Tags, strings.Join(branches, " OR "))
	return r.collect(ctx, query, args...)
}

// ShiftPositions adds delta to every position >= from in scope
func (r *PostgresTagRepository) ShiftPositions(ctx context.Context, scope models.TagScope, from, delta int) error {
	where, args := scopeWhere(scope, 3)
	query := fmt.Sprintf(`UPDATE %s SET position = position + $1 WHERE position >= $2 AND %s`, r.tables.Tags, where)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, append([]any{delta, from}, args...)...); err != nil {
		return fmt.Errorf("shift tag positions: %w", err)
	}
	return nil
}

// ListPositions returns every (tag id, position) pair in scope
func (r *PostgresTagRepository) ListPositions(ctx context.Context, scope models.TagScope) ([]models.PositionUpdate, error) {
	where, args := scopeWhere(scope, 1)
	query := fmt.Sprintf(`SELECT id, position FROM %s WHERE %s ORDER BY position ASC`, r.tables.Tags, where)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tag positions: %w", err)
	}
	positions, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.PositionUpdate])
	if err != nil {
		return nil, fmt.Errorf("list tag positions: %w", err)
	}
	return positions, nil
}

// SetPositions writes absolute positions as one batch
func (r *PostgresTagRepository) SetPositions(ctx context.Context, updates []models.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE %s SET position = $1 WHERE id = $2`, r.tables.Tags)

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.Position, u.ID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	results := executor.SendBatch(ctx, batch)
	defer results.Close()
	for _, u := range updates {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("set tag position: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("tag", u.ID)
		}
	}
	return nil
}

func (r *PostgresTagRepository) collect(ctx context.Context, query string, args ...any) ([]models.Tag, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func scanTag(row pgx.CollectableRow) (models.Tag, error) {
	var t models.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Position, &t.UserID, &t.FolderID, &t.CreatedAt)
	return t, err
}

// scopeWhere renders a scope as a predicate; an absent key matches NULL.
// Placeholders are numbered from next.
func scopeWhere(scope models.TagScope, next int) (string, []any) {
	var parts []string
	var args []any
	if scope.UserID != nil {
		parts = append(parts, fmt.Sprintf("user_id = $%d", next+len(args)))
		args = append(args, *scope.UserID)
	} else {
		parts = append(parts, "user_id IS NULL")
	}
	if scope.FolderID != nil {
		parts = append(parts, fmt.Sprintf("folder_id = $%d", next+len(args)))
		args = append(args, *scope.FolderID)
	} else {
		parts = append(parts, "folder_id IS NULL")
	}
	return strings.Join(parts, " AND "), args
}
