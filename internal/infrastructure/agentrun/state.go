package agentrun

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
)

// Serialized thread state. Content items carry a "$type" discriminator that
// must appear first in the serialized form, which struct field order
// guarantees here.
type stateContent struct {
	Type      string          `json:"$type"`
	Text      string          `json:"text,omitempty"`
	CallID    string          `json:"callId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

type stateMessage struct {
	Role     string         `json:"role"`
	Contents []stateContent `json:"contents"`
}

type stateDocument struct {
	ID       string         `json:"id"`
	Messages []stateMessage `json:"messages"`
}

const (
	contentText           = "text"
	contentFunctionCall   = "functionCall"
	contentFunctionResult = "functionResult"

	roleUser      = "user"
	roleAssistant = "assistant"
	roleTool      = "tool"
)

// loadStateDocument rebuilds the document from a prior blob. Malformed
// blobs start the thread over rather than failing the run.
func loadStateDocument(threadID string, state json.RawMessage) *stateDocument {
	doc := &stateDocument{ID: threadID}
	if len(state) == 0 {
		return doc
	}
	var parsed stateDocument
	if err := json.Unmarshal(state, &parsed); err != nil {
		return doc
	}
	doc.Messages = parsed.Messages
	return doc
}

func (d *stateDocument) appendUser(text string) {
	d.Messages = append(d.Messages, stateMessage{
		Role:     roleUser,
		Contents: []stateContent{{Type: contentText, Text: text}},
	})
}

func (d *stateDocument) appendAssistant(text string, calls []toolCall) {
	msg := stateMessage{Role: roleAssistant}
	if text != "" {
		msg.Contents = append(msg.Contents, stateContent{Type: contentText, Text: text})
	}
	for _, call := range calls {
		msg.Contents = append(msg.Contents, stateContent{
			Type:      contentFunctionCall,
			CallID:    call.ID,
			Name:      call.Name,
			Arguments: json.RawMessage(call.Arguments),
		})
	}
	if len(msg.Contents) > 0 {
		d.Messages = append(d.Messages, msg)
	}
}

func (d *stateDocument) appendFunctionResult(call toolCall, result json.RawMessage) {
	d.Messages = append(d.Messages, stateMessage{
		Role: roleTool,
		Contents: []stateContent{{
			Type:   contentFunctionResult,
			CallID: call.ID,
			Name:   call.Name,
			Result: result,
		}},
	})
}

// trim drops the oldest messages beyond max, never splitting a tool result
// from the assistant turn that requested it.
func (d *stateDocument) trim(max int) {
	if max <= 0 || len(d.Messages) <= max {
		return
	}
	start := len(d.Messages) - max
	for start < len(d.Messages) && d.Messages[start].Role == roleTool {
		start++
	}
	d.Messages = d.Messages[start:]
}

func (d *stateDocument) serialize() (json.RawMessage, error) {
	return json.Marshal(d)
}

// chatMessages converts the document into the provider's message format.
func (d *stateDocument) chatMessages(systemPrompt string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(d.Messages)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, m := range d.Messages {
		switch m.Role {
		case roleUser:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: joinText(m.Contents),
			})
		case roleAssistant:
			msg := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: joinText(m.Contents),
			}
			for _, c := range m.Contents {
				if c.Type != contentFunctionCall {
					continue
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   c.CallID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      c.Name,
						Arguments: string(c.Arguments),
					},
				})
			}
			messages = append(messages, msg)
		case roleTool:
			for _, c := range m.Contents {
				if c.Type != contentFunctionResult {
					continue
				}
				messages = append(messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					ToolCallID: c.CallID,
					Name:       c.Name,
					Content:    string(c.Result),
				})
			}
		}
	}
	return messages
}

func joinText(contents []stateContent) string {
	var out string
	for _, c := range contents {
		if c.Type == contentText {
			out += c.Text
		}
	}
	return out
}
