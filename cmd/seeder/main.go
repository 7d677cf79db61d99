package main

import (
	"context"
	"log"

	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/database"
	"github.com/avolkau/summit-api/internal/repository"
	"github.com/avolkau/summit-api/internal/seeder"
	"github.com/avolkau/summit-api/internal/tz"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Auto-migrate if using memory DB to ensure schema exists
	if cfg.DB.IsMemory() {
		m, err := migrate.New("file://migrations/sqlite", "sqlite3://"+cfg.DB.DSN())
		if err != nil {
			logger.Fatal("Failed to init migration", zap.Error(err))
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			logger.Fatal("Failed to run migration", zap.Error(err))
		}
	}

	resolver, err := tz.NewResolver()
	if err != nil {
		logger.Fatal("Failed to initialize timezone resolver", zap.Error(err))
	}

	logger.Info("Parsing catalogue...", zap.String("path", cfg.Seeder.CataloguePath))
	parser := seeder.NewParser(cfg.Seeder, resolver)
	mountains, err := parser.ParseMountains()
	if err != nil {
		logger.Fatal("Failed to parse catalogue", zap.Error(err))
	}

	ctx := context.Background()
	repos := repository.NewRepositories(db, cfg.DB.Type)

	logger.Info("Inserting mountains...", zap.Int("count", len(mountains)))
	if err := repos.Mountain.BulkInsert(ctx, mountains); err != nil {
		logger.Fatal("Failed to insert mountains", zap.Error(err))
	}

	logger.Info("Catalogue import completed", zap.Int("mountains", len(mountains)))
}
