package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/chat"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/safety"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/metrics"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/requests"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/sse"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/webhook"
)

// ChatHandler exposes the streaming chat endpoint.
type ChatHandler struct {
	gate          *safety.Gate
	orchestrator  *chat.Orchestrator
	webhook       webhook.Service
	streamTimeout time.Duration
	log           zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(gate *safety.Gate, orchestrator *chat.Orchestrator, webhookService webhook.Service, streamTimeout time.Duration, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		gate:          gate,
		orchestrator:  orchestrator,
		webhook:       webhookService,
		streamTimeout: streamTimeout,
		log:           log.With().Str("handler", "chat").Logger(),
	}
}

// Stream handles POST /v1/chat
// @Summary Stream a chat turn
// @Description Runs one assistant turn and streams the response as server-sent events
// @Tags Chat
// @Accept json
// @Produce text/event-stream
// @Param request body requests.ChatRequest true "Chat request"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/chat [post]
func (h *ChatHandler) Stream(c *gin.Context) {
	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	encoder, err := sse.NewEncoder(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.streamTimeout)
	defer cancel()

	start := time.Now()

	decision := h.gate.Evaluate(ctx, req.Message)
	if !decision.Allowed {
		h.writeBlocked(encoder, decision)
		metrics.RecordRun("blocked", time.Since(start).Seconds())
		return
	}

	emit := func(event chat.Event) error {
		metrics.RecordStreamEvent(string(event.Type))
		return encoder.Encode(event)
	}

	result, err := h.orchestrator.Stream(ctx, req.Message, req.ThreadID, emit)
	if err != nil {
		h.log.Error().Err(err).Msg("chat stream failed")
		metrics.RecordRun("error", time.Since(start).Seconds())
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "chat turn failed"})
		}
		// Mid-stream failures end without the done marker so clients can
		// tell the stream was cut short.
		return
	}

	if err := encoder.WriteDone(); err != nil {
		h.log.Warn().Err(err).Msg("failed to terminate stream")
	}

	outcome := "completed"
	if result.Filtered {
		outcome = "filtered"
	}
	metrics.RecordRun(outcome, time.Since(start).Seconds())

	h.notifyCompleted(result)
}

// writeBlocked ends a gate-blocked turn: the block event and the terminal
// marker, nothing persisted.
func (h *ChatHandler) writeBlocked(encoder *sse.Encoder, decision safety.Decision) {
	metrics.RecordSafetyBlock(blockedCheck(decision))

	messageID := "msg_" + uuid.NewString()
	if err := encoder.WriteContentFilter(messageID, decision.Message); err != nil {
		h.log.Warn().Err(err).Msg("failed to write block event")
		return
	}
	if err := encoder.WriteDone(); err != nil {
		h.log.Warn().Err(err).Msg("failed to terminate stream")
	}
}

func (h *ChatHandler) notifyCompleted(result *chat.Result) {
	if h.webhook == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.webhook.NotifyTurnCompleted(ctx, result.ThreadID, result.Filtered); err != nil {
			h.log.Warn().Err(err).Str("thread_id", result.ThreadID).Msg("completion webhook failed")
		}
	}()
}

func blockedCheck(decision safety.Decision) string {
	switch {
	case decision.Injection != nil && !decision.Injection.IsSafe:
		return "injection"
	case decision.Moderation != nil && !decision.Moderation.IsSafe:
		return "moderation"
	default:
		return "check_failure"
	}
}
