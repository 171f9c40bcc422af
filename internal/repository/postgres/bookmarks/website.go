package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/repository/postgres"
)

// PostgresWebsiteRepository implements the WebsiteRepository interface
type PostgresWebsiteRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewWebsiteRepository creates a new website repository
func NewWebsiteRepository(config *postgres.RepositoryConfig) bookmarksRepo.WebsiteRepository {
	return &PostgresWebsiteRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const websiteColumns = `w.id, w.title, w.link, w.description, w.image, w.icon, w.color, w.starred, w.owner_id, w.created_at, w.updated_at`

// Create inserts the website row
func (r *PostgresWebsiteRepository) Create(ctx context.Context, website *models.Website) error {
	if website.ID == "" {
		website.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, link, description, image, icon, color, starred, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING created_at, updated_at
	`, r.tables.Websites)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		website.ID,
		website.Title,
		website.Link,
		website.Description,
		website.Image,
		website.Icon,
		website.Color,
		website.Starred,
		website.OwnerID,
		now,
	).Scan(&website.CreatedAt, &website.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create website: %w", err)
	}

	return nil
}

// GetByID retrieves a website with memberships and tags
func (r *PostgresWebsiteRepository) GetByID(ctx context.Context, id string) (*models.Website, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s w WHERE w.id = $1`, websiteColumns, r.tables.Websites)

	executor := postgres.GetExecutor(ctx, r.pool)
	website, err := scanWebsite(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NotFound("website", id)
		}
		return nil, fmt.Errorf("get website: %w", err)
	}

	websites := []models.Website{*website}
	if err := r.hydrate(ctx, websites); err != nil {
		return nil, err
	}
	if len(websites[0].Memberships) > 0 {
		websites[0].Position = websites[0].Memberships[0].Position
	}
	return &websites[0], nil
}

// Update persists the editable fields
func (r *PostgresWebsiteRepository) Update(ctx context.Context, website *models.Website) error {
	website.UpdatedAt = time.Now().UTC()

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, link = $2, description = $3, image = $4, icon = $5, color = $6, updated_at = $7
		WHERE id = $8
	`, r.tables.Websites)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		website.Title,
		website.Link,
		website.Description,
		website.Image,
		website.Icon,
		website.Color,
		website.UpdatedAt,
		website.ID,
	)
	if err != nil {
		return fmt.Errorf("update website: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("website", website.ID)
	}

	return nil
}

// SetStarred flips the starred flag
func (r *PostgresWebsiteRepository) SetStarred(ctx context.Context, id string, starred bool) error {
	query := fmt.Sprintf(`UPDATE %s SET starred = $1, updated_at = $2 WHERE id = $3`, r.tables.Websites)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, starred, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set starred: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("website", id)
	}
	return nil
}

// Delete removes a website row
func (r *PostgresWebsiteRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Websites)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete website: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("website", id)
	}
	return nil
}

// DeleteContainedIn deletes the owner's websites that have no membership
// outside folderIDs
func (r *PostgresWebsiteRepository) DeleteContainedIn(ctx context.Context, ownerID string, folderIDs []string) ([]string, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s w
		WHERE w.owner_id = $1
		  AND EXISTS (SELECT 1 FROM %s m WHERE m.website_id = w.id AND m.folder_id = ANY($2))
		  AND NOT EXISTS (SELECT 1 FROM %s m WHERE m.website_id = w.id AND NOT (m.folder_id = ANY($2)))
		RETURNING w.id
	`, r.tables.Websites, r.tables.WebsiteFolders, r.tables.WebsiteFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("delete contained websites: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("delete contained websites: %w", err)
	}
	return ids, nil
}

// ListByOwner retrieves every website of a user
func (r *PostgresWebsiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Website, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s w
		WHERE w.owner_id = $1
		ORDER BY w.created_at ASC
	`, websiteColumns, r.tables.Websites)

	websites, err := r.list(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return websites, r.hydrate(ctx, websites)
}

// ListByFolder retrieves the members of a folder ordered by position
func (r *PostgresWebsiteRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Website, error) {
	query := fmt.Sprintf(`
		SELECT %s, m.position FROM %s w
		JOIN %s m ON m.website_id = w.id
		WHERE m.folder_id = $1
		ORDER BY m.position ASC, w.title ASC
	`, websiteColumns, r.tables.Websites, r.tables.WebsiteFolders)

	websites, err := r.list(ctx, query, folderID)
	if err != nil {
		return nil, err
	}
	return websites, r.hydrate(ctx, websites)
}

// ListStarred retrieves starred websites ordered by their lowest membership position
func (r *PostgresWebsiteRepository) ListStarred(ctx context.Context, ownerID string) ([]models.Website, error) {
	query := fmt.Sprintf(`
		SELECT %s, COALESCE((SELECT MIN(m.position) FROM %s m WHERE m.website_id = w.id), 0) AS rank
		FROM %s w
		WHERE w.owner_id = $1 AND w.starred
		ORDER BY rank ASC, w.created_at ASC
	`, websiteColumns, r.tables.WebsiteFolders, r.tables.Websites)

	websites, err := r.list(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return websites, r.hydrate(ctx, websites)
}

// AddMembership places a website in a folder
func (r *PostgresWebsiteRepository) AddMembership(ctx context.Context, websiteID, folderID string, position int) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (website_id, folder_id, position) VALUES ($1, $2, $3)
	`, r.tables.WebsiteFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, websiteID, folderID, position); err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("website %s is already in folder %s", websiteID, folderID),
				ResourceType: "website",
				ResourceID:   websiteID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return domain.NotFound("folder", folderID)
		}
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// RemoveMembership takes a website out of a folder
func (r *PostgresWebsiteRepository) RemoveMembership(ctx context.Context, websiteID, folderID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE website_id = $1 AND folder_id = $2`, r.tables.WebsiteFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, websiteID, folderID)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("website %s in folder %s: %w", websiteID, folderID, domain.ErrNotFound)
	}
	return nil
}

// ShiftPositions adds delta to every position >= from in the folder
func (r *PostgresWebsiteRepository) ShiftPositions(ctx context.Context, folderID string, from, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET position = position + $1
		WHERE folder_id = $2 AND position >= $3
	`, r.tables.WebsiteFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, delta, folderID, from); err != nil {
		return fmt.Errorf("shift website positions: %w", err)
	}
	return nil
}

// MaxPosition returns the highest position in the folder, or -1 when empty
func (r *PostgresWebsiteRepository) MaxPosition(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(position), -1) FROM %s WHERE folder_id = $1`, r.tables.WebsiteFolders)

	var maxPos int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID).Scan(&maxPos); err != nil {
		return 0, fmt.Errorf("max website position: %w", err)
	}
	return maxPos, nil
}

// ListPositions returns every (website id, position) pair in the folder
func (r *PostgresWebsiteRepository) ListPositions(ctx context.Context, folderID string) ([]models.PositionUpdate, error) {
	query := fmt.Sprintf(`
		SELECT website_id, position FROM %s WHERE folder_id = $1 ORDER BY position ASC
	`, r.tables.WebsiteFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list website positions: %w", err)
	}
	positions, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.PositionUpdate])
	if err != nil {
		return nil, fmt.Errorf("list website positions: %w", err)
	}
	return positions, nil
}

// SetPositions writes absolute positions for members of the folder as one batch
func (r *PostgresWebsiteRepository) SetPositions(ctx context.Context, folderID string, updates []models.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s SET position = $1 WHERE folder_id = $2 AND website_id = $3
	`, r.tables.WebsiteFolders)

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.Position, folderID, u.ID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	results := executor.SendBatch(ctx, batch)
	defer results.Close()
	for _, u := range updates {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("set website position: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("website %s in folder %s: %w", u.ID, folderID, domain.ErrNotFound)
		}
	}
	return nil
}

// SetTags replaces the website's tag set
func (r *PostgresWebsiteRepository) SetTags(ctx context.Context, websiteID string, tagIDs []string) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE website_id = $1`, r.tables.WebsiteTags)
	if _, err := executor.Exec(ctx, deleteQuery, websiteID); err != nil {
		return fmt.Errorf("clear website tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (website_id, tag_id)
		SELECT $1, t FROM unnest($2::text[]) AS t
		ON CONFLICT DO NOTHING
	`, r.tables.WebsiteTags)
	if _, err := executor.Exec(ctx, insertQuery, websiteID, tagIDs); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("tag: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("set website tags: %w", err)
	}
	return nil
}

// hydrate loads memberships and tags for websites in two queries
func (r *PostgresWebsiteRepository) hydrate(ctx context.Context, websites []models.Website) error {
	if len(websites) == 0 {
		return nil
	}
	ids := make([]string, len(websites))
	index := make(map[string]int, len(websites))
	for i := range websites {
		ids[i] = websites[i].ID
		index[websites[i].ID] = i
		websites[i].Memberships = []models.Membership{}
		websites[i].Tags = []models.Tag{}
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	membershipQuery := fmt.Sprintf(`
		SELECT website_id, folder_id, position FROM %s
		WHERE website_id = ANY($1)
		ORDER BY folder_id ASC
	`, r.tables.WebsiteFolders)
	rows, err := executor.Query(ctx, membershipQuery, ids)
	if err != nil {
		return fmt.Errorf("load memberships: %w", err)
	}
	for rows.Next() {
		var websiteID string
		var m models.Membership
		if err := rows.Scan(&websiteID, &m.FolderID, &m.Position); err != nil {
			rows.Close()
			return fmt.Errorf("scan membership: %w", err)
		}
		i := index[websiteID]
		websites[i].Memberships = append(websites[i].Memberships, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate memberships: %w", err)
	}

	tagQuery := fmt.Sprintf(`
		SELECT wt.website_id, t.id, t.name, t.position, t.user_id, t.folder_id, t.created_at
		FROM %s wt JOIN %s t ON t.id = wt.tag_id
		WHERE wt.website_id = ANY($1)
		ORDER BY t.position ASC, t.name ASC
	`, r.tables.WebsiteTags, r.tables.Tags)
	rows, err = executor.Query(ctx, tagQuery, ids)
	if err != nil {
		return fmt.Errorf("load website tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var websiteID string
		var t models.Tag
		if err := rows.Scan(&websiteID, &t.ID, &t.Name, &t.Position, &t.UserID, &t.FolderID, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan website tag: %w", err)
		}
		i := index[websiteID]
		websites[i].Tags = append(websites[i].Tags, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate website tags: %w", err)
	}
	return nil
}

// list scans websites; a trailing position/rank column, when selected, fills Position
func (r *PostgresWebsiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Website, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	withPosition := len(rows.FieldDescriptions()) > 11
	websites := []models.Website{}
	for rows.Next() {
		var w models.Website
		dest := []any{
			&w.ID, &w.Title, &w.Link, &w.Description, &w.Image, &w.Icon, &w.Color,
			&w.Starred, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt,
		}
		if withPosition {
			dest = append(dest, &w.Position)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan website: %w", err)
		}
		websites = append(websites, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate websites: %w", err)
	}
	return websites, nil
}

func scanWebsite(row pgx.Row) (*models.Website, error) {
	var w models.Website
	err := row.Scan(
		&w.ID, &w.Title, &w.Link, &w.Description, &w.Image, &w.Icon, &w.Color,
		&w.Starred, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
