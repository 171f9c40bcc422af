package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"savesite/internal/config"
	"savesite/internal/database"
	"savesite/internal/repository/postgres"
	"savesite/internal/seed"
	serviceAuth "savesite/internal/service/auth"
	serviceBookmarks "savesite/internal/service/bookmarks"
	"savesite/internal/service/users"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed bookmarks")
	clearData := flag.Bool("clear-data", false, "Clear the fixture user's folders, websites and tags (keep schema)")
	fixturePath := flag.String("file", "", "YAML fixture to load (default: built-in sample library)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	fixture, err := loadFixture(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, driver: %s)", cfg.Environment, cfg.DatabaseDriver)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, driver: %s)", cfg.Environment, cfg.DatabaseDriver)
	default:
		log.Printf("🌱 Seeding database (environment: %s, driver: %s, prefix: %s)", cfg.Environment, cfg.DatabaseDriver, cfg.TablePrefix)
	}

	ctx := context.Background()

	if *dropTables && cfg.DatabaseDriver == "sqlite" {
		log.Printf("🗑️  Removing %s...", cfg.SQLitePath)
		if err := os.Remove(cfg.SQLitePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Failed to remove database file: %v", err)
		}
	}

	// Connect also makes sure the schema exists
	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *dropTables && db.Pool != nil {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, db.Pool, db.Tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		if err := postgres.EnsureSchema(ctx, db.Pool, db.Tables); err != nil {
			log.Fatalf("Failed to recreate schema: %v", err)
		}
		log.Println("✅ Tables recreated")
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		return
	}

	authorizer := serviceAuth.NewOwnerBasedAuthorizer(db.Folders, db.Websites, db.Tags)
	seeder := seed.NewSeeder(
		users.NewUserService(db.Users, logger),
		serviceBookmarks.NewFolderService(db.Folders, db.Websites, db.TxManager, authorizer, logger),
		serviceBookmarks.NewWebsiteService(db.Websites, db.Tags, db.TxManager, db.Locker, authorizer, logger),
		serviceBookmarks.NewTagService(db.Tags, db.TxManager, db.Locker, authorizer, logger),
		logger,
	)

	if *clearData {
		if err := seeder.Clear(ctx, fixture.User.Email); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	log.Printf("⚠️  Clearing existing data for %s...", fixture.User.Email)
	if err := seeder.Clear(ctx, fixture.User.Email); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	result, err := seeder.Seed(ctx, fixture)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	log.Printf("🎉 Seeding complete! user=%s folders=%d websites=%d tags=%d",
		result.UserID, result.Folders, result.Websites, result.Tags)
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.ParseFixture(f)
}

// dropAllTables drops the prefixed tables, children first
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}
	return nil
}
