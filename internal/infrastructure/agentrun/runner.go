package agentrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/config"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/agent"
)

const (
	// maxTurns bounds the model/tool round-trips inside one run.
	maxTurns = 8

	systemPrompt = "You are a task management assistant. Help the user create, " +
		"list, update, complete and delete their tasks using the available " +
		"functions. Be concise and confirm the outcome of every action."
)

// NewAzureClient builds the chat completion client for the configured Azure
// OpenAI deployment.
func NewAzureClient(cfg *config.Config) *openai.Client {
	clientConfig := openai.DefaultAzureConfig(cfg.OpenAIAPIKey, cfg.OpenAIEndpoint)
	clientConfig.AzureModelMapperFunc = func(string) string {
		return cfg.OpenAIDeployment
	}
	return openai.NewClientWithConfig(clientConfig)
}

// Runner executes multi-turn agent runs against an Azure OpenAI deployment,
// resolving tool calls through the configured executor between turns.
type Runner struct {
	client     *openai.Client
	deployment string
	tools      agent.ToolExecutor
	maxHistory int
	log        zerolog.Logger
}

func NewRunner(cfg *config.Config, client *openai.Client, tools agent.ToolExecutor, log zerolog.Logger) *Runner {
	return &Runner{
		client:     client,
		deployment: cfg.OpenAIDeployment,
		tools:      tools,
		maxHistory: cfg.MaxHistoryLength,
		log:        log.With().Str("component", "agent_runner").Logger(),
	}
}

var _ agent.Runner = (*Runner)(nil)

// Run starts one turn. The returned stream yields updates as the provider
// produces them; the run loop itself executes on a background goroutine.
func (r *Runner) Run(ctx context.Context, input agent.RunInput) (agent.RunStream, error) {
	doc := loadStateDocument(input.ThreadID, input.State)
	doc.appendUser(input.UserMessage)
	doc.trim(r.maxHistory)

	rs := &runStream{
		items: make(chan streamItem, 16),
		done:  make(chan struct{}),
		doc:   doc,
	}
	go r.drive(ctx, rs)
	return rs, nil
}

type streamItem struct {
	update *agent.Update
	err    error
}

type runStream struct {
	items chan streamItem
	done  chan struct{}

	mu  sync.Mutex
	doc *stateDocument
}

func (s *runStream) Recv() (*agent.Update, error) {
	item, ok := <-s.items
	if !ok {
		return nil, io.EOF
	}
	if item.err != nil {
		return nil, item.err
	}
	return item.update, nil
}

// State serializes the thread as it stands, including everything produced
// before an interruption.
func (s *runStream) State() (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.serialize()
}

func (s *runStream) Close() error {
	close(s.done)
	return nil
}

func (s *runStream) emit(item streamItem) bool {
	select {
	case s.items <- item:
		return true
	case <-s.done:
		return false
	}
}

// toolCall accumulates one streamed tool invocation.
type toolCall struct {
	ID        string
	Name      string
	Arguments string
}

// drive runs the model/tool loop and feeds the stream. It terminates the
// item channel with exactly one error item, or closes it cleanly on EOF.
func (r *Runner) drive(ctx context.Context, rs *runStream) {
	defer close(rs.items)
	messageID := "chatcmpl-" + uuid.NewString()

	for turn := 0; turn < maxTurns; turn++ {
		req := openai.ChatCompletionRequest{
			Model:    r.deployment,
			Messages: rs.doc.chatMessages(systemPrompt),
			Tools:    r.toolDefinitions(),
		}

		stream, err := r.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			if isContentFilterError(err) {
				rs.emit(streamItem{err: &agent.ContentFilterError{Stage: agent.FilterStagePrompt}})
				return
			}
			rs.emit(streamItem{err: fmt.Errorf("failed to create completion stream: %w", err)})
			return
		}

		text, calls, filtered, err := r.consume(stream, rs, messageID)
		stream.Close()
		if err != nil {
			rs.emit(streamItem{err: err})
			return
		}

		rs.mu.Lock()
		rs.doc.appendAssistant(text, calls)
		rs.mu.Unlock()

		if filtered {
			rs.emit(streamItem{err: &agent.ContentFilterError{Stage: agent.FilterStageCompletion}})
			return
		}
		if len(calls) == 0 {
			return
		}

		for _, call := range calls {
			result := r.execute(ctx, call)
			rs.mu.Lock()
			rs.doc.appendFunctionResult(call, result)
			rs.mu.Unlock()
			if !rs.emit(streamItem{update: &agent.Update{
				FunctionResult: &agent.FunctionResult{CallID: call.ID, Name: call.Name},
			}}) {
				return
			}
		}
	}

	r.log.Warn().Int("max_turns", maxTurns).Msg("Run hit the turn limit before the model finished")
}

// consume drains one completion stream, forwarding text deltas and tool-call
// starts as they arrive.
func (r *Runner) consume(stream *openai.ChatCompletionStream, rs *runStream, messageID string) (string, []toolCall, bool, error) {
	var (
		text      strings.Builder
		calls     []toolCall
		announced = make(map[int]bool)
		filtered  bool
	)

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if isContentFilterError(err) {
				filtered = true
				break
			}
			return "", nil, false, fmt.Errorf("completion stream failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]

		if choice.Delta.Content != "" {
			text.WriteString(choice.Delta.Content)
			if !rs.emit(streamItem{update: &agent.Update{MessageID: messageID, TextDelta: choice.Delta.Content}}) {
				return "", nil, false, context.Canceled
			}
		}

		for _, tc := range choice.Delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			for len(calls) <= idx {
				calls = append(calls, toolCall{})
			}
			if tc.ID != "" {
				calls[idx].ID = tc.ID
			}
			if tc.Function.Name != "" {
				calls[idx].Name = tc.Function.Name
			}
			calls[idx].Arguments += tc.Function.Arguments

			if !announced[idx] && calls[idx].ID != "" && calls[idx].Name != "" {
				announced[idx] = true
				if !rs.emit(streamItem{update: &agent.Update{
					FunctionCall: &agent.FunctionCall{CallID: calls[idx].ID, Name: calls[idx].Name},
				}}) {
					return "", nil, false, context.Canceled
				}
			}
		}

		if choice.FinishReason == openai.FinishReasonContentFilter {
			filtered = true
		}
	}

	return text.String(), calls, filtered, nil
}

// execute runs one tool call. Failures become an error document handed back
// to the model instead of aborting the run.
func (r *Runner) execute(ctx context.Context, call toolCall) json.RawMessage {
	args := json.RawMessage(call.Arguments)
	if call.Arguments == "" {
		args = json.RawMessage(`{}`)
	}

	result, err := r.tools.Execute(ctx, call.Name, args)
	if err != nil {
		r.log.Error().Err(err).Str("function", call.Name).Msg("Tool execution failed")
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		return payload
	}
	return result
}

func (r *Runner) toolDefinitions() []openai.Tool {
	declarations := r.tools.Declarations()
	tools := make([]openai.Tool, 0, len(declarations))
	for _, d := range declarations {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return tools
}

// isContentFilterError reports whether the provider rejected or cut off the
// request for safety reasons.
func isContentFilterError(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if code, ok := apiErr.Code.(string); ok && code == "content_filter" {
		return true
	}
	if apiErr.InnerError != nil && apiErr.InnerError.Code == "ResponsibleAIPolicyViolation" {
		return true
	}
	return false
}
