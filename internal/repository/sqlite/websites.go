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

// WebsiteRepository implements bookmarks.WebsiteRepository on SQLite.
type WebsiteRepository struct {
	s *Store
}

// Websites returns the website repository backed by this store.
func (s *Store) Websites() bookmarksRepo.WebsiteRepository {
	return &WebsiteRepository{s: s}
}

const websiteColumns = `w.id, w.title, w.link, w.description, w.image, w.icon, w.color, w.starred, w.owner_id, w.created_at, w.updated_at`

// Create inserts the website row.
func (r *WebsiteRepository) Create(ctx context.Context, website *models.Website) error {
	if website.ID == "" {
		website.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	website.CreatedAt, website.UpdatedAt = now, now

	_, err := r.s.executor(ctx).ExecContext(ctx, `
		INSERT INTO websites (id, title, link, description, image, icon, color, starred, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		website.ID, website.Title, website.Link,
		nullableString(website.Description), nullableString(website.Image),
		nullableString(website.Icon), nullableString(website.Color),
		website.Starred, website.OwnerID, formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("create website: %w", err)
	}
	return nil
}

// GetByID retrieves a website with memberships and tags.
func (r *WebsiteRepository) GetByID(ctx context.Context, id string) (*models.Website, error) {
	row := r.s.executor(ctx).QueryRowContext(ctx,
		`SELECT `+websiteColumns+` FROM websites w WHERE w.id = ?`, id)
	website, err := scanWebsite(row, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("website", id)
	}
	if err != nil {
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

// Update persists the editable fields.
func (r *WebsiteRepository) Update(ctx context.Context, website *models.Website) error {
	website.UpdatedAt = time.Now().UTC()
	result, err := r.s.executor(ctx).ExecContext(ctx, `
		UPDATE websites
		SET title = ?, link = ?, description = ?, image = ?, icon = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		website.Title, website.Link,
		nullableString(website.Description), nullableString(website.Image),
		nullableString(website.Icon), nullableString(website.Color),
		formatTime(website.UpdatedAt), website.ID,
	)
	if err != nil {
		return fmt.Errorf("update website: %w", err)
	}
	return requireAffected(result, domain.NotFound("website", website.ID))
}

// SetStarred flips the starred flag.
func (r *WebsiteRepository) SetStarred(ctx context.Context, id string, starred bool) error {
	result, err := r.s.executor(ctx).ExecContext(ctx,
		`UPDATE websites SET starred = ?, updated_at = ? WHERE id = ?`,
		starred, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set starred: %w", err)
	}
	return requireAffected(result, domain.NotFound("website", id))
}

// Delete removes a website row.
func (r *WebsiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.s.executor(ctx).ExecContext(ctx, `DELETE FROM websites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete website: %w", err)
	}
	return requireAffected(result, domain.NotFound("website", id))
}

// DeleteContainedIn deletes the owner's websites with no membership outside folderIDs.
func (r *WebsiteRepository) DeleteContainedIn(ctx context.Context, ownerID string, folderIDs []string) ([]string, error) {
	if len(folderIDs) == 0 {
		return []string{}, nil
	}
	in, inArgs := inClause(folderIDs)
	args := append([]any{ownerID}, inArgs...)
	args = append(args, inArgs...)

	rows, err := r.s.executor(ctx).QueryContext(ctx, `
		SELECT w.id FROM websites w
		WHERE w.owner_id = ?
		  AND EXISTS (SELECT 1 FROM website_folders m WHERE m.website_id = w.id AND m.folder_id IN (`+in+`))
		  AND NOT EXISTS (SELECT 1 FROM website_folders m WHERE m.website_id = w.id AND m.folder_id NOT IN (`+in+`))`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("find contained websites: %w", err)
	}
	ids, err := collectStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("find contained websites: %w", err)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	idIn, idArgs := inClause(ids)
	if _, err := r.s.executor(ctx).ExecContext(ctx,
		`DELETE FROM websites WHERE id IN (`+idIn+`)`, idArgs...); err != nil {
		return nil, fmt.Errorf("delete contained websites: %w", err)
	}
	return ids, nil
}

// ListByOwner retrieves every website of a user.
func (r *WebsiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Website, error) {
	websites, err := r.list(ctx, false,
		`SELECT `+websiteColumns+` FROM websites w WHERE w.owner_id = ? ORDER BY w.created_at ASC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	return websites, r.hydrate(ctx, websites)
}

// ListByFolder retrieves the members of a folder ordered by position.
func (r *WebsiteRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Website, error) {
	websites, err := r.list(ctx, true, `
		SELECT `+websiteColumns+`, m.position FROM websites w
		JOIN website_folders m ON m.website_id = w.id
		WHERE m.folder_id = ?
		ORDER BY m.position ASC, w.title ASC`,
		folderID)
	if err != nil {
		return nil, err
	}
	return websites, r.hydrate(ctx, websites)
}

// ListStarred retrieves starred websites ordered by their lowest membership position.
func (r *WebsiteRepository) ListStarred(ctx context.Context, ownerID string) ([]models.Website, error) {
	websites, err := r.list(ctx, true, `
		SELECT `+websiteColumns+`,
			COALESCE((SELECT MIN(m.position) FROM website_folders m WHERE m.website_id = w.id), 0) AS rank
		FROM websites w
		WHERE w.owner_id = ? AND w.starred = 1
		ORDER BY rank ASC, w.created_at ASC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	return websites, r.hydrate(ctx, websites)
}

// AddMembership places a website in a folder.
func (r *WebsiteRepository) AddMembership(ctx context.Context, websiteID, folderID string, position int) error {
	_, err := r.s.executor(ctx).ExecContext(ctx,
		`INSERT INTO website_folders (website_id, folder_id, position) VALUES (?, ?, ?)`,
		websiteID, folderID, position)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("website %s is already in folder %s", websiteID, folderID),
				ResourceType: "website",
				ResourceID:   websiteID,
			}
		}
		if isForeignKeyViolation(err) {
			return domain.NotFound("folder", folderID)
		}
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// RemoveMembership takes a website out of a folder.
func (r *WebsiteRepository) RemoveMembership(ctx context.Context, websiteID, folderID string) error {
	result, err := r.s.executor(ctx).ExecContext(ctx,
		`DELETE FROM website_folders WHERE website_id = ? AND folder_id = ?`, websiteID, folderID)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	return requireAffected(result,
		fmt.Errorf("website %s in folder %s: %w", websiteID, folderID, domain.ErrNotFound))
}

// ShiftPositions adds delta to every position >= from in the folder.
func (r *WebsiteRepository) ShiftPositions(ctx context.Context, folderID string, from, delta int) error {
	_, err := r.s.executor(ctx).ExecContext(ctx,
		`UPDATE website_folders SET position = position + ? WHERE folder_id = ? AND position >= ?`,
		delta, folderID, from)
	if err != nil {
		return fmt.Errorf("shift website positions: %w", err)
	}
	return nil
}

// MaxPosition returns the highest position in the folder, or -1 when empty.
func (r *WebsiteRepository) MaxPosition(ctx context.Context, folderID string) (int, error) {
	var maxPos int
	err := r.s.executor(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM website_folders WHERE folder_id = ?`, folderID,
	).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("max website position: %w", err)
	}
	return maxPos, nil
}

// ListPositions returns every (website id, position) pair in the folder.
func (r *WebsiteRepository) ListPositions(ctx context.Context, folderID string) ([]models.PositionUpdate, error) {
	rows, err := r.s.executor(ctx).QueryContext(ctx,
		`SELECT website_id, position FROM website_folders WHERE folder_id = ? ORDER BY position ASC`,
		folderID)
	if err != nil {
		return nil, fmt.Errorf("list website positions: %w", err)
	}
	return collectPositions(rows)
}

// SetPositions writes absolute positions for members of the folder.
func (r *WebsiteRepository) SetPositions(ctx context.Context, folderID string, updates []models.PositionUpdate) error {
	for _, u := range updates {
		result, err := r.s.executor(ctx).ExecContext(ctx,
			`UPDATE website_folders SET position = ? WHERE folder_id = ? AND website_id = ?`,
			u.Position, folderID, u.ID)
		if err != nil {
			return fmt.Errorf("set website position: %w", err)
		}
		if err := requireAffected(result,
			fmt.Errorf("website %s in folder %s: %w", u.ID, folderID, domain.ErrNotFound)); err != nil {
			return err
		}
	}
	return nil
}

// SetTags replaces the website's tag set.
func (r *WebsiteRepository) SetTags(ctx context.Context, websiteID string, tagIDs []string) error {
	exec := r.s.executor(ctx)
	if _, err := exec.ExecContext(ctx, `DELETE FROM website_tags WHERE website_id = ?`, websiteID); err != nil {
		return fmt.Errorf("clear website tags: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := exec.ExecContext(ctx,
			`INSERT OR IGNORE INTO website_tags (website_id, tag_id) VALUES (?, ?)`, websiteID, tagID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.NotFound("tag", tagID)
			}
			return fmt.Errorf("set website tags: %w", err)
		}
	}
	return nil
}

// hydrate loads memberships and tags for websites.
// Each result set is drained before the next query runs on the single connection.
func (r *WebsiteRepository) hydrate(ctx context.Context, websites []models.Website) error {
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
	in, args := inClause(ids)

	rows, err := r.s.executor(ctx).QueryContext(ctx, `
		SELECT website_id, folder_id, position FROM website_folders
		WHERE website_id IN (`+in+`)
		ORDER BY folder_id ASC`, args...)
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
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate memberships: %w", err)
	}
	rows.Close()

	rows, err = r.s.executor(ctx).QueryContext(ctx, `
		SELECT wt.website_id, `+prefixedTagColumns+`
		FROM website_tags wt JOIN tags t ON t.id = wt.tag_id
		WHERE wt.website_id IN (`+in+`)
		ORDER BY t.position ASC, t.name ASC`, args...)
	if err != nil {
		return fmt.Errorf("load website tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var websiteID string
		tag, err := scanTag(rows, &websiteID)
		if err != nil {
			return fmt.Errorf("scan website tag: %w", err)
		}
		i := index[websiteID]
		websites[i].Tags = append(websites[i].Tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate website tags: %w", err)
	}
	return nil
}

func (r *WebsiteRepository) list(ctx context.Context, withPosition bool, query string, args ...any) ([]models.Website, error) {
	rows, err := r.s.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	websites := []models.Website{}
	for rows.Next() {
		website, err := scanWebsite(rows, withPosition)
		if err != nil {
			return nil, fmt.Errorf("scan website: %w", err)
		}
		websites = append(websites, *website)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate websites: %w", err)
	}
	return websites, nil
}

func scanWebsite(row scanner, withPosition bool) (*models.Website, error) {
	var w models.Website
	var description, image, icon, color sql.NullString
	var createdAt, updatedAt string
	dest := []any{
		&w.ID, &w.Title, &w.Link, &description, &image, &icon, &color,
		&w.Starred, &w.OwnerID, &createdAt, &updatedAt,
	}
	if withPosition {
		dest = append(dest, &w.Position)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	w.Description = stringPtr(description)
	w.Image = stringPtr(image)
	w.Icon = stringPtr(icon)
	w.Color = stringPtr(color)

	var err error
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &w, nil
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func collectPositions(rows *sql.Rows) ([]models.PositionUpdate, error) {
	defer rows.Close()
	positions := []models.PositionUpdate{}
	for rows.Next() {
		var p models.PositionUpdate
		if err := rows.Scan(&p.ID, &p.Position); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return positions, nil
}
