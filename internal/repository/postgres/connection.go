package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Users          string
	Folders        string
	Websites       string
	WebsiteFolders string
	Tags           string
	WebsiteTags    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:          fmt.Sprintf("%susers", prefix),
		Folders:        fmt.Sprintf("%sfolders", prefix),
		Websites:       fmt.Sprintf("%swebsites", prefix),
		WebsiteFolders: fmt.Sprintf("%swebsite_folders", prefix),
		Tags:           fmt.Sprintf("%stags", prefix),
		WebsiteTags:    fmt.Sprintf("%swebsite_tags", prefix),
	}
}

// All returns every table, children before parents (safe drop order)
func (t *TableNames) All() []string {
	return []string{t.WebsiteTags, t.WebsiteFolders, t.Tags, t.Websites, t.Folders, t.Users}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// PgBouncer in transaction pooling mode (port 6543 on Supabase) does not support
// prepared statements. When that port is detected and no explicit
// default_query_exec_mode was given in the URL, the pool switches to
// QueryExecModeCacheDescribe.
//
// Dynamic table prefixes (dev_, test_, prod_) are interpolated before the SQL reaches
// the server, so each environment gets its own statement cache entries.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 2

	// Scope locks queue writers on one folder; give up instead of piling up
	if _, ok := config.ConnConfig.RuntimeParams["lock_timeout"]; !ok {
		config.ConnConfig.RuntimeParams["lock_timeout"] = "5s"
	}

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx := GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
