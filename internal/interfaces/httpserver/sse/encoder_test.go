package sse

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/chat"
)

func decodeFrames(t *testing.T, body string) []map[string]any {
	t.Helper()
	var frames []map[string]any
	for _, frame := range strings.Split(body, "\n\n") {
		if frame == "" {
			continue
		}
		require.True(t, strings.HasPrefix(frame, "data: "), "frame %q", frame)
		payload := strings.TrimPrefix(frame, "data: ")
		if payload == "[DONE]" {
			frames = append(frames, map[string]any{"type": "[DONE]"})
			continue
		}
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
		frames = append(frames, decoded)
	}
	return frames
}

func TestEncoder_WireVocabulary(t *testing.T) {
	recorder := httptest.NewRecorder()
	encoder, err := NewEncoder(recorder)
	require.NoError(t, err)

	events := []chat.Event{
		{Type: chat.EventStatusChanged, Status: "Thinking..."},
		{Type: chat.EventFunctionCallStarted, FunctionName: "create_task"},
		{Type: chat.EventStatusChanged, Status: "Creating new task..."},
		{Type: chat.EventFunctionCallFinished, FunctionName: "create_task"},
		{Type: chat.EventTextDelta, MessageID: "m1", Text: "Done."},
		{Type: chat.EventStateProduced, State: json.RawMessage(`{"messages":[]}`)},
	}
	for _, event := range events {
		require.NoError(t, encoder.Encode(event))
	}
	require.NoError(t, encoder.WriteDone())

	frames := decodeFrames(t, recorder.Body.String())
	require.Len(t, frames, 7)

	assert.Equal(t, "STATUS_UPDATE", frames[0]["type"])
	assert.Equal(t, "Thinking...", frames[0]["status"])

	assert.Equal(t, "STEP_STARTED", frames[1]["type"])
	assert.Equal(t, "create_task", frames[1]["stepName"])

	assert.Equal(t, "STATUS_UPDATE", frames[2]["type"])

	assert.Equal(t, "STEP_FINISHED", frames[3]["type"])
	assert.Equal(t, "create_task", frames[3]["stepName"])

	assert.Equal(t, "TEXT_MESSAGE_CONTENT", frames[4]["type"])
	assert.Equal(t, "assistant", frames[4]["role"])
	assert.Equal(t, "Done.", frames[4]["delta"])
	assert.Equal(t, "m1", frames[4]["messageId"])

	assert.Equal(t, "THREAD_STATE", frames[5]["type"])
	assert.Equal(t, map[string]any{"messages": []any{}}, frames[5]["serializedState"])

	assert.Equal(t, "[DONE]", frames[6]["type"])
}

func TestEncoder_ContentFilterEvent(t *testing.T) {
	recorder := httptest.NewRecorder()
	encoder, err := NewEncoder(recorder)
	require.NoError(t, err)

	require.NoError(t, encoder.Encode(chat.Event{Type: chat.EventSafetyBlocked, MessageID: "m1", Reason: "completion"}))

	frames := decodeFrames(t, recorder.Body.String())
	require.Len(t, frames, 1)
	assert.Equal(t, "CONTENT_FILTER", frames[0]["type"])
	assert.Equal(t, "content_filter", frames[0]["error"])
	assert.Equal(t, "m1", frames[0]["messageId"])

	// The message is generic and never carries the stage or reason.
	message, _ := frames[0]["message"].(string)
	assert.NotEmpty(t, message)
	assert.NotContains(t, message, "completion")
}

func TestEncoder_CustomBlockMessage(t *testing.T) {
	recorder := httptest.NewRecorder()
	encoder, err := NewEncoder(recorder)
	require.NoError(t, err)

	require.NoError(t, encoder.WriteContentFilter("m2", "I'm sorry, but I can't help with that request."))

	frames := decodeFrames(t, recorder.Body.String())
	require.Len(t, frames, 1)
	assert.Equal(t, "I'm sorry, but I can't help with that request.", frames[0]["message"])
}

func TestEncoder_FrameFormat(t *testing.T) {
	recorder := httptest.NewRecorder()
	encoder, err := NewEncoder(recorder)
	require.NoError(t, err)

	require.NoError(t, encoder.Encode(chat.Event{Type: chat.EventStatusChanged, Status: "Thinking..."}))
	require.NoError(t, encoder.WriteDone())

	body := recorder.Body.String()
	assert.True(t, strings.HasPrefix(body, "data: {"))
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
	assert.Equal(t, 2, strings.Count(body, "\n\n"))
}
