package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/agent"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
)

// initialStatus is emitted before any model output so clients always have
// something to render while the first tokens are in flight.
const initialStatus = "Thinking..."

// Result summarizes one completed streaming run.
type Result struct {
	ThreadID  string
	MessageID string
	Filtered  bool
}

// Orchestrator drives one chat turn: it resolves the resume token, runs the
// agent, translates provider updates into ordered stream events and persists
// the resulting thread state.
type Orchestrator struct {
	runner   agent.Runner
	store    *thread.Store
	registry *agent.StatusRegistry
	log      zerolog.Logger
}

func NewOrchestrator(runner agent.Runner, store *thread.Store, registry *agent.StatusRegistry, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		runner:   runner,
		store:    store,
		registry: registry,
		log:      log.With().Str("component", "orchestrator").Logger(),
	}
}

// runContext carries all per-request run state. Nothing here outlives the
// request, which keeps concurrent runs on one Orchestrator independent.
type runContext struct {
	threadID  string
	messageID string
	state     json.RawMessage
	filtered  *agent.ContentFilterError
	openCalls map[string]string
	finished  map[string]bool
}

// Stream executes one turn and emits events in protocol order. Cancellation
// aborts the run without persisting; a content filter interruption still
// produces a final state event and persists normally.
func (o *Orchestrator) Stream(ctx context.Context, userMessage, resumeToken string, emit Emitter) (*Result, error) {
	rc := o.resolve(ctx, resumeToken)

	if err := emit(statusChanged(initialStatus)); err != nil {
		return nil, err
	}

	stream, err := o.runner.Run(ctx, agent.RunInput{ThreadID: rc.threadID, UserMessage: userMessage, State: rc.state})
	if err != nil {
		var cf *agent.ContentFilterError
		if !errors.As(err, &cf) {
			return nil, fmt.Errorf("failed to start agent run: %w", err)
		}
		// Prompt-stage filter: nothing streamed, prior state is still the
		// truth. Finish the sequence so the client keeps its thread.
		rc.filtered = cf
		return o.finish(ctx, rc, rc.state, emit)
	}
	defer stream.Close()

	if err := o.pump(ctx, rc, stream, emit); err != nil {
		return nil, err
	}

	state, err := stream.State()
	if err != nil {
		o.log.Warn().Err(err).Str("thread_id", rc.threadID).Msg("Failed to serialize run state, keeping prior state")
		state = rc.state
	}
	return o.finish(ctx, rc, state, emit)
}

// resolve turns the resume token into a run context. Every malformed or
// unknown token, and every failed load, degrades to a fresh thread rather
// than failing the turn.
func (o *Orchestrator) resolve(ctx context.Context, raw string) *runContext {
	rc := &runContext{
		messageID: "msg_" + uuid.NewString(),
		openCalls: make(map[string]string),
		finished:  make(map[string]bool),
	}

	token := ParseResumeToken(raw)
	switch token.Kind {
	case TokenRawState:
		rc.state = token.State
		rc.threadID = stateThreadID(token.State)
	case TokenThreadRef:
		if state := o.store.Load(ctx, token.ThreadID); state != nil {
			rc.threadID = token.ThreadID
			rc.state = state
		}
	}

	if rc.threadID == "" {
		rc.threadID = newThreadID()
	}
	return rc
}

// pump forwards provider updates as events until the run ends. A content
// filter terminal is recorded on the run context; any other terminal error
// aborts the turn.
func (o *Orchestrator) pump(ctx context.Context, rc *runContext, stream agent.RunStream, emit Emitter) error {
	for {
		update, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var cf *agent.ContentFilterError
			if errors.As(err, &cf) {
				o.log.Info().Str("stage", string(cf.Stage)).Str("thread_id", rc.threadID).Msg("Content filter interrupted run")
				rc.filtered = cf
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("agent run failed: %w", err)
		}

		if err := o.forward(rc, update, emit); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) forward(rc *runContext, update *agent.Update, emit Emitter) error {
	switch {
	case update.FunctionCall != nil:
		call := update.FunctionCall
		if _, open := rc.openCalls[call.CallID]; open {
			return nil
		}
		rc.openCalls[call.CallID] = call.Name
		if err := emit(functionCallStarted(call.Name)); err != nil {
			return err
		}
		return emit(statusChanged(o.registry.StatusFor(call.Name)))

	case update.FunctionResult != nil:
		result := update.FunctionResult
		name, open := rc.openCalls[result.CallID]
		if !open || rc.finished[result.CallID] {
			return nil
		}
		rc.finished[result.CallID] = true
		return emit(functionCallFinished(name))

	case update.TextDelta != "":
		return emit(textDelta(rc.messageID, update.TextDelta))
	}
	return nil
}

// finish closes out the event sequence: the block event if a filter fired,
// then exactly one state event, then persistence.
func (o *Orchestrator) finish(ctx context.Context, rc *runContext, state json.RawMessage, emit Emitter) (*Result, error) {
	if rc.filtered != nil {
		if err := emit(safetyBlocked(rc.messageID, string(rc.filtered.Stage))); err != nil {
			return nil, err
		}
	}

	if state == nil {
		state = json.RawMessage(`{"messages":[]}`)
	}
	if err := emit(stateProduced(state)); err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := o.store.Save(ctx, rc.threadID, state); err != nil {
		return nil, err
	}

	return &Result{ThreadID: rc.threadID, MessageID: rc.messageID, Filtered: rc.filtered != nil}, nil
}

func newThreadID() string {
	return "thread_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// stateThreadID probes a serialized state blob for the thread id it was
// produced under, so a client echoing back a full blob keeps its thread row.
func stateThreadID(state json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(state, &probe); err != nil {
		return ""
	}
	if len(probe.ID) > 64 {
		return ""
	}
	return probe.ID
}
