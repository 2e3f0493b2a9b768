package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/agent"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
)

// fakeStream replays canned updates and ends with terminal (nil means a
// clean io.EOF).
type fakeStream struct {
	updates  []*agent.Update
	terminal error
	state    json.RawMessage
	idx      int
}

func (s *fakeStream) Recv() (*agent.Update, error) {
	if s.idx < len(s.updates) {
		u := s.updates[s.idx]
		s.idx++
		return u, nil
	}
	if s.terminal != nil {
		return nil, s.terminal
	}
	return nil, io.EOF
}

func (s *fakeStream) State() (json.RawMessage, error) { return s.state, nil }
func (s *fakeStream) Close() error                    { return nil }

type fakeRunner struct {
	stream *fakeStream
	runErr error
	input  agent.RunInput
}

func (r *fakeRunner) Run(_ context.Context, input agent.RunInput) (agent.RunStream, error) {
	r.input = input
	if r.runErr != nil {
		return nil, r.runErr
	}
	return r.stream, nil
}

// fakeThreadRepo is the minimal in-memory repository the orchestrator needs.
type fakeThreadRepo struct {
	threads map[string]*thread.Thread
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{threads: make(map[string]*thread.Thread)}
}

func (r *fakeThreadRepo) Upsert(_ context.Context, t *thread.Thread) error {
	clone := *t
	r.threads[t.ThreadID] = &clone
	return nil
}

func (r *fakeThreadRepo) FindByThreadID(_ context.Context, threadID string) (*thread.Thread, error) {
	t, ok := r.threads[threadID]
	if !ok {
		return nil, thread.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeThreadRepo) SoftDelete(context.Context, string) error { return nil }
func (r *fakeThreadRepo) Restore(context.Context, string) error    { return nil }

func (r *fakeThreadRepo) List(context.Context, thread.ListFilter, thread.ListOptions) ([]*thread.Thread, int64, error) {
	return nil, 0, nil
}

func (r *fakeThreadRepo) PurgeDeletedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestOrchestrator(runner agent.Runner, repo thread.Repository) *Orchestrator {
	registry := agent.NewStatusRegistry()
	registry.Register("create_task", "Create a new task")
	store := thread.NewStore(repo, zerolog.Nop())
	return NewOrchestrator(runner, store, registry, zerolog.Nop())
}

func collect(events *[]Event) Emitter {
	return func(e Event) error {
		*events = append(*events, e)
		return nil
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestStream_EventOrderingWithFunctionCall(t *testing.T) {
	state := json.RawMessage(`{"id":"thread_1","messages":[{"role":"user","contents":[{"$type":"text","text":"Create a task"}]},{"role":"assistant","contents":[{"$type":"text","text":"Done."}]}]}`)
	runner := &fakeRunner{stream: &fakeStream{
		updates: []*agent.Update{
			{FunctionCall: &agent.FunctionCall{CallID: "c1", Name: "create_task"}},
			{FunctionResult: &agent.FunctionResult{CallID: "c1", Name: "create_task"}},
			{MessageID: "m1", TextDelta: "Done."},
		},
		state: state,
	}}
	repo := newFakeThreadRepo()
	orchestrator := newTestOrchestrator(runner, repo)

	var events []Event
	result, err := orchestrator.Stream(context.Background(), "Create a task", "", collect(&events))
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventStatusChanged,
		EventFunctionCallStarted,
		EventStatusChanged,
		EventFunctionCallFinished,
		EventTextDelta,
		EventStateProduced,
	}, eventTypes(events))

	assert.Equal(t, initialStatus, events[0].Status)
	assert.Equal(t, "create_task", events[1].FunctionName)
	assert.Equal(t, "Creating new task...", events[2].Status)
	assert.Equal(t, "create_task", events[3].FunctionName)
	assert.JSONEq(t, string(state), string(events[5].State))

	// Completed turns persist under the run's thread id.
	require.NotNil(t, result)
	assert.True(t, strings.HasPrefix(result.ThreadID, "thread_"))
	saved, err := repo.FindByThreadID(context.Background(), result.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.MessageCount)
	require.NotNil(t, saved.Title)
	assert.Equal(t, "Create a task", *saved.Title)
}

func TestStream_DuplicateCallUpdatesBracketOnce(t *testing.T) {
	runner := &fakeRunner{stream: &fakeStream{
		updates: []*agent.Update{
			{FunctionCall: &agent.FunctionCall{CallID: "c1", Name: "create_task"}},
			{FunctionCall: &agent.FunctionCall{CallID: "c1", Name: "create_task"}},
			{FunctionResult: &agent.FunctionResult{CallID: "c1", Name: "create_task"}},
			{FunctionResult: &agent.FunctionResult{CallID: "c1", Name: "create_task"}},
		},
		state: json.RawMessage(`{"messages":[]}`),
	}}
	orchestrator := newTestOrchestrator(runner, newFakeThreadRepo())

	var events []Event
	_, err := orchestrator.Stream(context.Background(), "go", "", collect(&events))
	require.NoError(t, err)

	var started, finished int
	for _, e := range events {
		switch e.Type {
		case EventFunctionCallStarted:
			started++
		case EventFunctionCallFinished:
			finished++
		}
	}
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, finished)
}

func TestStream_MidStreamContentFilter(t *testing.T) {
	state := json.RawMessage(`{"messages":[{"role":"user","contents":[{"$type":"text","text":"hi"}]}]}`)
	runner := &fakeRunner{stream: &fakeStream{
		updates:  []*agent.Update{{MessageID: "m1", TextDelta: "I was saying"}},
		terminal: &agent.ContentFilterError{Stage: agent.FilterStageCompletion},
		state:    state,
	}}
	repo := newFakeThreadRepo()
	orchestrator := newTestOrchestrator(runner, repo)

	var events []Event
	result, err := orchestrator.Stream(context.Background(), "hi", "", collect(&events))
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventStatusChanged,
		EventTextDelta,
		EventSafetyBlocked,
		EventStateProduced,
	}, eventTypes(events))

	require.NotNil(t, result)
	assert.True(t, result.Filtered)

	// The partial state is still persisted.
	_, err = repo.FindByThreadID(context.Background(), result.ThreadID)
	assert.NoError(t, err)
}

func TestStream_PromptStageContentFilter(t *testing.T) {
	runner := &fakeRunner{runErr: &agent.ContentFilterError{Stage: agent.FilterStagePrompt}}
	repo := newFakeThreadRepo()
	orchestrator := newTestOrchestrator(runner, repo)

	var events []Event
	result, err := orchestrator.Stream(context.Background(), "hi", "", collect(&events))
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventStatusChanged,
		EventSafetyBlocked,
		EventStateProduced,
	}, eventTypes(events))
	assert.JSONEq(t, `{"messages":[]}`, string(events[2].State))
	assert.True(t, result.Filtered)
}

func TestStream_CancellationSkipsPersistence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{stream: &fakeStream{
		updates:  []*agent.Update{{MessageID: "m1", TextDelta: "partial"}},
		terminal: context.Canceled,
		state:    json.RawMessage(`{"messages":[]}`),
	}}
	repo := newFakeThreadRepo()
	orchestrator := newTestOrchestrator(runner, repo)

	cancel()
	_, err := orchestrator.Stream(ctx, "hi", "", func(Event) error { return nil })
	require.Error(t, err)
	assert.Empty(t, repo.threads)
}

func TestStream_ResumesFromRawStateBlob(t *testing.T) {
	blob := `{"id":"thread_abc","messages":[{"role":"user","contents":[{"$type":"text","text":"earlier"}]}]}`
	runner := &fakeRunner{stream: &fakeStream{state: json.RawMessage(blob)}}
	repo := newFakeThreadRepo()
	orchestrator := newTestOrchestrator(runner, repo)

	result, err := orchestrator.Stream(context.Background(), "again", blob, func(Event) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, "thread_abc", result.ThreadID)
	assert.JSONEq(t, blob, string(runner.input.State))
}

func TestStream_ResumesFromThreadReference(t *testing.T) {
	stored := json.RawMessage(`{"id":"thread_xyz","messages":[{"role":"user","contents":[{"$type":"text","text":"earlier"}]}]}`)
	repo := newFakeThreadRepo()
	repo.threads["thread_xyz"] = &thread.Thread{ThreadID: "thread_xyz", State: stored, IsActive: true}

	runner := &fakeRunner{stream: &fakeStream{state: stored}}
	orchestrator := newTestOrchestrator(runner, repo)

	result, err := orchestrator.Stream(context.Background(), "again", "thread_xyz", func(Event) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, "thread_xyz", result.ThreadID)
	assert.JSONEq(t, string(stored), string(runner.input.State))
}

// failingReadRepo simulates a storage outage on reads only.
type failingReadRepo struct {
	*fakeThreadRepo
}

func (r *failingReadRepo) FindByThreadID(context.Context, string) (*thread.Thread, error) {
	return nil, errors.New("connection refused")
}

func TestStream_ThreadRefLoadFailureStartsFresh(t *testing.T) {
	runner := &fakeRunner{stream: &fakeStream{state: json.RawMessage(`{"messages":[]}`)}}
	repo := &failingReadRepo{fakeThreadRepo: newFakeThreadRepo()}
	orchestrator := newTestOrchestrator(runner, repo)

	var events []Event
	result, err := orchestrator.Stream(context.Background(), "hi", "thread_gone", collect(&events))
	require.NoError(t, err)

	// A failed load never aborts the turn: the run starts fresh under a new
	// thread id with no prior state.
	assert.Nil(t, runner.input.State)
	assert.True(t, strings.HasPrefix(result.ThreadID, "thread_"))
	assert.NotEqual(t, "thread_gone", result.ThreadID)
	assert.Equal(t, EventStateProduced, events[len(events)-1].Type)
}

func TestStream_MalformedTokenStartsFresh(t *testing.T) {
	runner := &fakeRunner{stream: &fakeStream{state: json.RawMessage(`{"messages":[]}`)}}
	orchestrator := newTestOrchestrator(runner, newFakeThreadRepo())

	result, err := orchestrator.Stream(context.Background(), "hi", `{"messages":`, func(Event) error { return nil })
	require.NoError(t, err)

	assert.Nil(t, runner.input.State)
	assert.True(t, strings.HasPrefix(result.ThreadID, "thread_"))
}
