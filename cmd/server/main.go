package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"savesite/internal/auth"
	"savesite/internal/config"
	"savesite/internal/database"
	"savesite/internal/handler"
	"savesite/internal/middleware"
	"savesite/internal/preview"
	serviceAuth "savesite/internal/service/auth"
	serviceBookmarks "savesite/internal/service/bookmarks"
	"savesite/internal/service/users"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"database_driver", cfg.DatabaseDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Services
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(db.Folders, db.Websites, db.Tags)
	userService := users.NewUserService(db.Users, logger)
	folderService := serviceBookmarks.NewFolderService(db.Folders, db.Websites, db.TxManager, authorizer, logger)
	websiteService := serviceBookmarks.NewWebsiteService(db.Websites, db.Tags, db.TxManager, db.Locker, authorizer, logger)
	tagService := serviceBookmarks.NewTagService(db.Tags, db.TxManager, db.Locker, authorizer, logger)
	treeService := serviceBookmarks.NewTreeService(db.Folders, db.Websites, logger)

	var fetcher preview.Fetcher
	if cfg.LinkPreviewAPIKey != "" {
		fetcher = preview.NewLinkPreviewClient(cfg.LinkPreviewURL, cfg.LinkPreviewAPIKey, logger)
	} else {
		logger.Warn("LINKPREVIEW_API_KEY not set, reading previews from pages directly")
		fetcher = preview.NewHTMLFetcher(logger)
	}

	// Authentication
	authCfg := middleware.AuthConfig{
		Users:  userService,
		Logger: logger,
		Public: []string{"/health"},
	}
	if cfg.IsDev() && cfg.DevUserEmail != "" {
		authCfg.DevUserEmail = cfg.DevUserEmail
		logger.Warn("DEV MODE: every request is signed in as DEV_USER_EMAIL", "email", cfg.DevUserEmail)
	} else {
		verifier, err := auth.NewJWTVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
		authCfg.Verifier = verifier
	}

	mux := http.NewServeMux()
	handler.Register(mux, &handler.Handlers{
		Health:    handler.Health(db),
		Tree:      handler.NewTreeHandler(treeService, logger),
		Folders:   handler.NewFolderHandler(folderService, logger),
		Websites:  handler.NewWebsiteHandler(websiteService, logger),
		Tags:      handler.NewTagHandler(tagService, logger),
		Thumbnail: handler.NewThumbnailHandler(fetcher, logger),
	})

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLog → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(authCfg)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLog(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	h = cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}).Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", fmt.Errorf("shutdown: %w", err))
		}
	}
}
