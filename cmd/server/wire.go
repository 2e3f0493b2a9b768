//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
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
	threadrepo "github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/repository/thread"
	safetyclient "github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/safety"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/taskapi"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/handlers"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/webhook"
)

var chatSet = wire.NewSet(
	threadrepo.NewPostgresRepository,
	wire.Bind(new(thread.Repository), new(*threadrepo.PostgresRepository)),
	thread.NewStore,
	newShieldClient,
	wire.Bind(new(safety.InjectionChecker), new(*safetyclient.ShieldClient)),
	newModerationClient,
	wire.Bind(new(safety.ModerationChecker), new(*safetyclient.ModerationClient)),
	newGate,
	taskapi.NewClient,
	taskapi.NewExecutor,
	wire.Bind(new(agent.ToolExecutor), new(*taskapi.Executor)),
	newStatusRegistry,
	agentrun.NewAzureClient,
	newRunner,
	wire.Bind(new(agent.Runner), new(*agentrun.Runner)),
	chat.NewOrchestrator,
	newWebhookService,
	wire.Bind(new(webhook.Service), new(*webhook.HTTPService)),
	newHandlerProvider,
)

// BuildApplication demonstrates how to assemble the chat service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		chatSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newShieldClient(cfg *config.Config) *safetyclient.ShieldClient {
	return safetyclient.NewShieldClient(cfg.ContentSafetyEndpoint, cfg.ContentSafetyAPIKey)
}

func newModerationClient(cfg *config.Config) *safetyclient.ModerationClient {
	return safetyclient.NewModerationClient(cfg.ContentSafetyEndpoint, cfg.ContentSafetyAPIKey)
}

func newGate(cfg *config.Config, injection safety.InjectionChecker, moderation safety.ModerationChecker, log zerolog.Logger) (*safety.Gate, error) {
	thresholds, err := cfg.ParseCategoryThresholds()
	if err != nil {
		return nil, err
	}
	return safety.NewGate(injection, moderation, safety.Config{
		DefaultThreshold:   cfg.SeverityThreshold,
		CategoryThresholds: thresholds,
	}, log), nil
}

func newStatusRegistry(tools *taskapi.Executor) *agent.StatusRegistry {
	registry := agent.NewStatusRegistry()
	tools.SeedStatusRegistry(registry)
	return registry
}

func newRunner(cfg *config.Config, client *openai.Client, tools agent.ToolExecutor, log zerolog.Logger) *agentrun.Runner {
	return agentrun.NewRunner(cfg, client, tools, log)
}

func newWebhookService(cfg *config.Config, log zerolog.Logger) *webhook.HTTPService {
	return webhook.NewHTTPService(cfg.CompletionWebhookURL, log)
}

func newHandlerProvider(
	gate *safety.Gate,
	orchestrator *chat.Orchestrator,
	store *thread.Store,
	webhookService webhook.Service,
	cfg *config.Config,
	log zerolog.Logger,
) *handlers.Provider {
	return handlers.NewProvider(gate, orchestrator, store, webhookService, cfg.StreamTimeout, log)
}
