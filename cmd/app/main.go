package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avolkau/summit-api/internal/api"
	"github.com/avolkau/summit-api/internal/auth"
	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/database"
	"github.com/avolkau/summit-api/internal/repository"
	"github.com/avolkau/summit-api/internal/seeder"
	"github.com/avolkau/summit-api/internal/service"
	"github.com/avolkau/summit-api/internal/stats"
	"github.com/avolkau/summit-api/internal/strava"
	"github.com/avolkau/summit-api/internal/tz"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := runMigrations(db, cfg); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	resolver, err := tz.NewResolver()
	if err != nil {
		logger.Fatal("Failed to initialize timezone resolver", zap.Error(err))
	}

	ctx := context.Background()
	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		logger.Info("Catalogue is empty, auto-seeding...")
		if err := seedCatalogue(ctx, repos, cfg, resolver, logger); err != nil {
			logger.Fatal("Failed to seed catalogue", zap.Error(err))
		}
	}

	verifier, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("Failed to initialize token verification", zap.Error(err))
	}

	svc := service.NewService(repos, cfg.Ingest, cfg.DB.QueryTimeout, logger)
	statsCollector := stats.NewCollector(db, cfg.DB)

	var stravaClient *strava.Client
	if cfg.Strava.ClientID != "" {
		stravaClient = strava.NewClient(cfg.Strava, repos.User, repos.Activity, svc, logger, "")
	} else {
		logger.Info("Strava credentials not configured, import endpoints disabled")
	}

	router := api.NewRouter(api.RouterDeps{
		Service:  svc,
		Verifier: verifier,
		Stats:    statsCollector,
		Strava:   stravaClient,
		Resolver: resolver,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.RequestLogging(logger, router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	sourcePath := "file://migrations/postgres"

	if cfg.DB.IsMemory() {
		sourcePath = "file://migrations/sqlite"
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(
			sourcePath,
			"sqlite3",
			driver,
		)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.New(sourcePath, cfg.DB.DSN())
		if err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func seedCatalogue(ctx context.Context, repos *repository.Container, cfg *config.Config, resolver tz.Resolver, logger *zap.Logger) error {
	if _, err := os.Stat(cfg.Seeder.CataloguePath); os.IsNotExist(err) {
		logger.Warn("Catalogue file not found, starting with an empty catalogue",
			zap.String("path", cfg.Seeder.CataloguePath))
		return nil
	}

	parser := seeder.NewParser(cfg.Seeder, resolver)
	mountains, err := parser.ParseMountains()
	if err != nil {
		return fmt.Errorf("failed to parse catalogue: %w", err)
	}

	if err := repos.Mountain.BulkInsert(ctx, mountains); err != nil {
		return fmt.Errorf("failed to insert mountains: %w", err)
	}
	logger.Info("Catalogue seeded", zap.Int("mountains", len(mountains)))
	return nil
}
