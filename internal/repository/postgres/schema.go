package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the bookmark tables and indexes if they do not exist.
// Statements are idempotent so it runs on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user', 'guest')),
			image TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Users),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			user_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			parent_id TEXT REFERENCES %s(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Folders, t.Users, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_parent_idx ON %s (user_id, parent_id)`, t.Folders, t.Folders),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			link TEXT NOT NULL,
			description TEXT,
			image TEXT,
			icon TEXT,
			color TEXT,
			starred BOOLEAN NOT NULL DEFAULT false,
			owner_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Websites, t.Users),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_owner_idx ON %s (owner_id)`, t.Websites, t.Websites),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			website_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			folder_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			position INTEGER NOT NULL CHECK (position >= 0),
			PRIMARY KEY (website_id, folder_id)
		)`, t.WebsiteFolders, t.Websites, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_folder_pos_idx ON %s (folder_id, position)`, t.WebsiteFolders, t.WebsiteFolders),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL CHECK (position >= 0),
			user_id TEXT REFERENCES %s(id) ON DELETE CASCADE,
			folder_id TEXT REFERENCES %s(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Tags, t.Users, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_idx ON %s (user_id) WHERE folder_id IS NULL`, t.Tags, t.Tags),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_folder_idx ON %s (folder_id)`, t.Tags, t.Tags),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			website_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			tag_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			PRIMARY KEY (website_id, tag_id)
		)`, t.WebsiteTags, t.Websites, t.Tags),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
