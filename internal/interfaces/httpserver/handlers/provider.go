package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/chat"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/safety"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/webhook"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat   *ChatHandler
	Thread *ThreadHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	gate *safety.Gate,
	orchestrator *chat.Orchestrator,
	store *thread.Store,
	webhookService webhook.Service,
	streamTimeout time.Duration,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Chat:   NewChatHandler(gate, orchestrator, webhookService, streamTimeout, log),
		Thread: NewThreadHandler(store, log),
	}
}
