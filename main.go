package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/config"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/database"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/gateway"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/handlers"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/llm"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/logging"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/repositories"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("llm_model", cfg.AI.LLMModel),
		zap.String("embedding_model", cfg.AI.EmbeddingModel),
		zap.Bool("gateway_available", cfg.Gateway.IsAvailable()))

	ctx := context.Background()

	// Connect to PostgreSQL
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations over a database/sql handle; pgxpool stays for queries
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	// Repositories
	generationRepo := repositories.NewGenerationRepository(db)
	embeddingRepo := repositories.NewEmbeddingRepository(db)
	similarityRepo := repositories.NewSimilarityRepository(db)
	usageRepo := repositories.NewUsageRepository(db)

	// Clients
	llmFactory := llm.NewFactory(&cfg.AI, logger)
	gatewayClient := gateway.NewClient(gateway.Config{
		Endpoint:    cfg.Gateway.Endpoint,
		AccessToken: cfg.Gateway.AccessToken,
	}, logger)

	// Services
	enrichmentService := services.NewEnrichmentService(llmFactory, similarityRepo, logger)
	generationService := services.NewGenerationService(
		generationRepo, embeddingRepo, usageRepo,
		enrichmentService, llmFactory, gatewayClient,
		cfg, logger)

	mux := http.NewServeMux()

	// Register handlers
	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	generationHandler := handlers.NewGenerationHandler(generationService, gatewayClient, logger)
	generationHandler.RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting uiforge-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
