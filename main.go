package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/auth"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/config"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/crypto"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/database"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/handlers"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/llm"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/logging"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/middleware"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/repositories"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/retry"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/services"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/warehouse"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

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
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", cfg.Database.Host),
		zap.String("redis", cfg.Redis.Host))

	ctx := context.Background()

	if err := database.RunMigrations(cfg.Database.ConnectionString(), migrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Postgres may still be starting when we are; retry the initial connect.
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured; dashboard caching disabled")
	}

	encryptor, err := crypto.NewCredentialEncryptor(cfg.ConnectionCredentialsKey)
	if err != nil {
		logger.Fatal("Failed to create credential encryptor", zap.Error(err))
	}

	sessionManager, err := auth.NewSessionManager(auth.SessionConfig{
		Secret:       cfg.Session.Secret,
		CookieName:   cfg.Session.CookieName,
		CookieDomain: cfg.Session.CookieDomain,
		MaxAge:       cfg.Session.MaxAgeSeconds,
		Secure:       cfg.Env != "local",
	})
	if err != nil {
		logger.Fatal("Failed to create session manager", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(sessionManager)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	connectionRepo := repositories.NewConnectionRepository(db)
	pipelineRepo := repositories.NewPipelineRepository(db)
	queryRepo := repositories.NewQueryRepository(db)
	errorLogRepo := repositories.NewErrorLogRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	// Services
	opener := warehouse.NewOpener(logger.Named("warehouse"))
	activity := services.NewActivityRecorder(activityRepo, logger.Named("activity"))
	userService := services.NewUserService(userRepo, logger.Named("users"))
	connectionService := services.NewConnectionService(
		connectionRepo, encryptor, opener, activity, cfg.Snowflake, logger.Named("connections"))
	pipelineService := services.NewPipelineService(pipelineRepo, activity, logger.Named("pipelines"))
	queryService := services.NewQueryService(
		connectionService, queryRepo, errorLogRepo, activity, logger.Named("queries"))
	dashboardService := services.NewDashboardService(
		connectionService, redisClient,
		time.Duration(cfg.DashboardCacheTTL)*time.Second, logger.Named("dashboard"))

	var llmClient llm.Client
	if cfg.AI.IsConfigured() {
		llmClient, err = llm.NewClient(&llm.Config{
			Provider: cfg.AI.Provider,
			Endpoint: cfg.AI.Endpoint,
			Model:    cfg.AI.Model,
			APIKey:   cfg.AI.APIKey,
		}, logger.Named("llm"))
		if err != nil {
			logger.Fatal("Failed to create LLM client", zap.Error(err))
		}
		logger.Info("AI analysis enabled",
			zap.String("provider", cfg.AI.Provider),
			zap.String("model", cfg.AI.Model))
	} else {
		logger.Info("AI analysis disabled; no endpoint configured")
	}
	analysisService := services.NewAnalysisService(
		llmClient, errorLogRepo, activity, cfg.AI.Temperature, logger.Named("analysis"))

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger.Named("health")).RegisterRoutes(mux)
	handlers.NewAuthHandler(userService, sessionManager, logger.Named("auth")).RegisterRoutes(mux, authMiddleware)
	handlers.NewConnectionsHandler(connectionService, logger.Named("connections")).RegisterRoutes(mux, authMiddleware)
	handlers.NewPipelinesHandler(pipelineService, logger.Named("pipelines")).RegisterRoutes(mux, authMiddleware)
	handlers.NewQueriesHandler(queryService, logger.Named("queries")).RegisterRoutes(mux, authMiddleware)
	handlers.NewAnalysisHandler(analysisService, logger.Named("analysis")).RegisterRoutes(mux, authMiddleware)
	handlers.NewLogsHandler(errorLogRepo, activity, logger.Named("logs")).RegisterRoutes(mux, authMiddleware)
	handlers.NewDashboardHandler(dashboardService, logger.Named("dashboard")).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger.Named("http"))(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting snowsarva-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
