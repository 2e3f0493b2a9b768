package agentrun

import (
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateDocument_MalformedStartsFresh(t *testing.T) {
	doc := loadStateDocument("thread_1", []byte("not json"))
	assert.Equal(t, "thread_1", doc.ID)
	assert.Empty(t, doc.Messages)

	doc = loadStateDocument("thread_1", nil)
	assert.Empty(t, doc.Messages)
}

func TestStateDocument_SerializeKeepsDiscriminatorFirst(t *testing.T) {
	doc := &stateDocument{ID: "thread_1"}
	doc.appendUser("hello")
	doc.appendAssistant("", []toolCall{{ID: "c1", Name: "create_task", Arguments: `{"title":"x"}`}})

	raw, err := doc.serialize()
	require.NoError(t, err)

	serialized := string(raw)
	typeIdx := strings.Index(serialized, `"$type":"functionCall"`)
	callIdx := strings.Index(serialized, `"callId":"c1"`)
	require.NotEqual(t, -1, typeIdx)
	require.NotEqual(t, -1, callIdx)
	assert.Less(t, typeIdx, callIdx)

	// Round trip: the document reloads without loss.
	reloaded := loadStateDocument("thread_1", raw)
	assert.Len(t, reloaded.Messages, 2)
	assert.Equal(t, "create_task", reloaded.Messages[1].Contents[0].Name)
}

func TestStateDocument_TrimKeepsToolResultPairing(t *testing.T) {
	doc := &stateDocument{ID: "thread_1"}
	doc.appendUser("one")
	doc.appendAssistant("", []toolCall{{ID: "c1", Name: "list_tasks"}})
	doc.appendFunctionResult(toolCall{ID: "c1", Name: "list_tasks"}, []byte(`[]`))
	doc.appendAssistant("done", nil)
	doc.appendUser("two")

	doc.trim(4)

	// A trim landing on a tool result advances past it so the result is
	// never orphaned from its assistant turn.
	require.NotEmpty(t, doc.Messages)
	assert.NotEqual(t, roleTool, doc.Messages[0].Role)
	assert.LessOrEqual(t, len(doc.Messages), 4)
}

func TestStateDocument_ChatMessages(t *testing.T) {
	doc := &stateDocument{ID: "thread_1"}
	doc.appendUser("create a task")
	doc.appendAssistant("", []toolCall{{ID: "c1", Name: "create_task", Arguments: `{"title":"x"}`}})
	doc.appendFunctionResult(toolCall{ID: "c1", Name: "create_task"}, []byte(`{"id":1}`))
	doc.appendAssistant("Created.", nil)

	messages := doc.chatMessages("system prompt")
	require.Len(t, messages, 5)

	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)

	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "c1", messages[2].ToolCalls[0].ID)
	assert.Equal(t, "create_task", messages[2].ToolCalls[0].Function.Name)

	assert.Equal(t, openai.ChatMessageRoleTool, messages[3].Role)
	assert.Equal(t, "c1", messages[3].ToolCallID)
	assert.Equal(t, `{"id":1}`, messages[3].Content)

	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[4].Role)
	assert.Equal(t, "Created.", messages[4].Content)
}

func TestIsContentFilterError(t *testing.T) {
	assert.False(t, isContentFilterError(nil))
	assert.False(t, isContentFilterError(assert.AnError))

	apiErr := &openai.APIError{Code: "content_filter"}
	assert.True(t, isContentFilterError(apiErr))

	apiErr = &openai.APIError{Code: "rate_limit_exceeded"}
	assert.False(t, isContentFilterError(apiErr))

	apiErr = &openai.APIError{InnerError: &openai.InnerError{Code: "ResponsibleAIPolicyViolation"}}
	assert.True(t, isContentFilterError(apiErr))
}
