package thread

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMetadata_MalformedBlob(t *testing.T) {
	tests := []struct {
		name  string
		state string
	}{
		{"not json", "not a json document"},
		{"empty", ""},
		{"missing messages", `{"id":"thread_1"}`},
		{"messages wrong type", `{"messages":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ExtractMetadata([]byte(tt.state))
			assert.Nil(t, meta.Title)
			assert.Nil(t, meta.Preview)
			assert.Equal(t, 0, meta.MessageCount)
		})
	}
}

func TestExtractMetadata_TitleAndPreview(t *testing.T) {
	state := `{
		"id": "thread_1",
		"messages": [
			{"role": "user", "contents": [{"$type": "text", "text": "Create a task for tomorrow"}]},
			{"role": "assistant", "contents": [{"$type": "functionCall", "callId": "c1", "name": "create_task"}]},
			{"role": "tool", "contents": [{"$type": "functionResult", "callId": "c1", "name": "create_task"}]},
			{"role": "assistant", "contents": [{"$type": "text", "text": "Done, the task is created."}]}
		]
	}`

	meta := ExtractMetadata([]byte(state))
	require.NotNil(t, meta.Title)
	require.NotNil(t, meta.Preview)
	assert.Equal(t, "Create a task for tomorrow", *meta.Title)
	assert.Equal(t, "Done, the task is created.", *meta.Preview)
	assert.Equal(t, 4, meta.MessageCount)
}

func TestExtractMetadata_SkipsFunctionMessages(t *testing.T) {
	// The last assistant message leads with a function call, so the preview
	// comes from the earlier plain-text assistant message.
	state := `{
		"messages": [
			{"role": "user", "contents": [{"$type": "text", "text": "List my tasks"}]},
			{"role": "assistant", "contents": [{"$type": "text", "text": "Here are your tasks."}]},
			{"role": "assistant", "contents": [{"$type": "functionCall", "callId": "c2", "name": "list_tasks"}]}
		]
	}`

	meta := ExtractMetadata([]byte(state))
	require.NotNil(t, meta.Preview)
	assert.Equal(t, "Here are your tasks.", *meta.Preview)
}

func TestExtractMetadata_TruncationBoundary(t *testing.T) {
	exactly50 := strings.Repeat("a", 50)
	over := strings.Repeat("a", 51)

	state := func(text string) []byte {
		return []byte(`{"messages":[{"role":"user","contents":[{"$type":"text","text":"` + text + `"}]}]}`)
	}

	meta := ExtractMetadata(state(exactly50))
	require.NotNil(t, meta.Title)
	assert.Equal(t, exactly50, *meta.Title)

	meta = ExtractMetadata(state(over))
	require.NotNil(t, meta.Title)
	assert.Len(t, *meta.Title, 50)
	assert.True(t, strings.HasSuffix(*meta.Title, "..."))
	assert.Equal(t, strings.Repeat("a", 47)+"...", *meta.Title)
}

func TestExtractMetadata_NoMatchingMessages(t *testing.T) {
	state := `{
		"messages": [
			{"role": "assistant", "contents": [{"$type": "functionCall", "callId": "c1", "name": "list_tasks"}]}
		]
	}`

	meta := ExtractMetadata([]byte(state))
	assert.Nil(t, meta.Title)
	assert.Nil(t, meta.Preview)
	assert.Equal(t, 1, meta.MessageCount)
}

func TestExtractMetadata_Deterministic(t *testing.T) {
	state := []byte(`{"messages":[{"role":"user","contents":[{"$type":"text","text":"Hello"}]}]}`)

	first := ExtractMetadata(state)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractMetadata(state))
	}
}
