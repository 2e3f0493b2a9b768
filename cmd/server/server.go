package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/config"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/agent"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/chat"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/safety"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/agentrun"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/auth"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/database"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/logger"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/observability"
	threadrepo "github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/repository/thread"
	safetyclient "github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/safety"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/taskapi"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/handlers"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/webhook"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/worker"
)

// @title TaskAgent Chat API
// @version 1.0
// @description Streams task-management assistant turns over SSE with safety screening and durable thread state.
// @contact.name TaskAgent Team
// @contact.url https://github.com/cristofima/TaskAgent-AgenticAI-sub001
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	threadRepository := threadrepo.NewPostgresRepository(db)
	threadStore := thread.NewStore(threadRepository, log)

	categoryThresholds, err := cfg.ParseCategoryThresholds()
	if err != nil {
		log.Fatal().Err(err).Msg("parse safety thresholds")
	}
	gate := safety.NewGate(
		safetyclient.NewShieldClient(cfg.ContentSafetyEndpoint, cfg.ContentSafetyAPIKey),
		safetyclient.NewModerationClient(cfg.ContentSafetyEndpoint, cfg.ContentSafetyAPIKey),
		safety.Config{
			DefaultThreshold:   cfg.SeverityThreshold,
			CategoryThresholds: categoryThresholds,
		},
		log,
	)

	taskClient := taskapi.NewClient(cfg, log)
	tools := taskapi.NewExecutor(taskClient, log)
	registry := agent.NewStatusRegistry()
	tools.SeedStatusRegistry(registry)

	runner := agentrun.NewRunner(cfg, agentrun.NewAzureClient(cfg), tools, log)
	orchestrator := chat.NewOrchestrator(runner, threadStore, registry, log)

	webhookService := webhook.NewHTTPService(cfg.CompletionWebhookURL, log)

	janitor := worker.NewJanitor(threadStore, worker.Config{
		Retention: cfg.ThreadRetention,
		Interval:  cfg.PurgeInterval,
	}, log)
	janitor.Start(ctx)
	defer janitor.Stop()

	handlerProvider := handlers.NewProvider(gate, orchestrator, threadStore, webhookService, cfg.StreamTimeout, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
