// Package main is the entry point for the inkwell blog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/blog"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/render"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
	"inkwell/internal/valkey"
)

func main() {
	// Load configuration first so the logger can follow the environment.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	if !cfg.IsDev() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"site_url", cfg.SiteURL,
	)

	ctx := context.Background()

	// The connection manager is shared by every store. Opening it here
	// makes a missing or unreachable database fatal at startup.
	dbm := database.NewManager(cfg.DatabaseURL)
	defer dbm.Close()

	db, err := dbm.DB(ctx)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the development admin (no-op if a user already exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := valkey.Connect(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secure := cfg.SecureCookies()
	sessionStore := session.NewStore(valkeyClient, secure)
	tokens := auth.NewTokens(cfg.SessionSecret, auth.DefaultTokenTTL)

	renderer, err := render.New(cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	userStore := store.NewUserStore(dbm)
	svc := blog.NewService(store.NewCategoryStore(dbm), store.NewPostStore(dbm))

	// Uploads go to S3 when configured, otherwise to the local disk.
	var (
		uploader  storage.Uploader
		uploadDir string
	)
	if cfg.S3Enabled() {
		uploader = storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		disk := storage.NewDisk(cfg.UploadDir, "/uploads")
		uploader = disk
		uploadDir = disk.Dir()
		slog.Info("disk storage configured", "dir", uploadDir)
	}

	r := router.New(router.Deps{
		Sessions:  sessionStore,
		Tokens:    tokens,
		API:       handlers.NewAPI(svc),
		Auth:      handlers.NewAuth(renderer, sessionStore, auth.NewVerifier(userStore), tokens),
		Public:    handlers.NewPublic(renderer, svc, cfg.SiteName, cfg.SiteURL),
		Admin:     handlers.NewAdmin(renderer, svc),
		Upload:    handlers.NewUpload(uploader),
		UploadDir: uploadDir,
		Secure:    secure,
		Logger:    slog.Default(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second, // uploads up to 5MB
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
