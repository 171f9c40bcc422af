package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"savesite/internal/config"
	"savesite/internal/domain/repositories"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/repository/postgres"
	pgBookmarks "savesite/internal/repository/postgres/bookmarks"
	"savesite/internal/repository/sqlite"
)

// DB is the backend-independent set of repositories the services need
type DB struct {
	Users     bookmarksRepo.UserRepository
	Folders   bookmarksRepo.FolderRepository
	Websites  bookmarksRepo.WebsiteRepository
	Tags      bookmarksRepo.TagRepository
	TxManager repositories.TransactionManager
	Locker    repositories.ScopeLocker

	// Pool is set only for the postgres driver
	Pool *pgxpool.Pool
	// Tables is set only for the postgres driver
	Tables *postgres.TableNames

	pinger interface{ Ping(ctx context.Context) error }
	close  func()
}

// Connect opens the backend named by DATABASE_DRIVER and makes sure its schema exists
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		return connectPostgres(ctx, cfg, logger)
	case "sqlite":
		return connectSQLite(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected",
		"driver", "postgres",
		"table_prefix", cfg.TablePrefix,
		"max_conns", pool.Config().MaxConns,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &DB{
		Users:     pgBookmarks.NewUserRepository(repoConfig),
		Folders:   pgBookmarks.NewFolderRepository(repoConfig),
		Websites:  pgBookmarks.NewWebsiteRepository(repoConfig),
		Tags:      pgBookmarks.NewTagRepository(repoConfig),
		TxManager: postgres.NewTransactionManager(pool, logger),
		Locker:    postgres.NewScopeLocker(pool),
		Pool:      pool,
		Tables:    tables,
		pinger:    pool,
		close:     pool.Close,
	}, nil
}

func connectSQLite(cfg *config.Config, logger *slog.Logger) (*DB, error) {
	store, err := sqlite.Open(cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", "driver", "sqlite", "path", cfg.SQLitePath)

	return &DB{
		Users:     store.Users(),
		Folders:   store.Folders(),
		Websites:  store.Websites(),
		Tags:      store.Tags(),
		TxManager: store,
		Locker:    store,
		pinger:    store,
		close: func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing sqlite failed", "error", err)
			}
		},
	}, nil
}

// Ping checks that the backend answers
func (db *DB) Ping(ctx context.Context) error {
	return db.pinger.Ping(ctx)
}

func (db *DB) Close() {
	db.close()
}
