package thread

import "encoding/json"

const (
	titleLimit   = 50
	previewLimit = 100
	ellipsis     = "..."
)

// Metadata is the listing metadata derived from a serialized thread state.
type Metadata struct {
	Title        *string
	Preview      *string
	MessageCount int
}

// The extractor only reads the fields it needs; the rest of the blob stays
// opaque so the agent run's serialization is never disturbed.
type stateEnvelope struct {
	Messages []stateMessage `json:"messages"`
}

type stateMessage struct {
	Role     string         `json:"role"`
	Contents []stateContent `json:"contents"`
}

type stateContent struct {
	Type string `json:"$type"`
	Text string `json:"text"`
}

// ExtractMetadata derives (title, preview, messageCount) from a serialized
// state blob. It is pure and never fails: a malformed blob yields empty
// metadata so the raw state can still be saved.
func ExtractMetadata(state []byte) Metadata {
	var doc stateEnvelope
	if err := json.Unmarshal(state, &doc); err != nil || doc.Messages == nil {
		return Metadata{}
	}

	meta := Metadata{MessageCount: len(doc.Messages)}

	for _, msg := range doc.Messages {
		if msg.Role != "user" || !isPlainText(msg) {
			continue
		}
		if text := msg.Contents[0].Text; text != "" {
			meta.Title = truncate(text, titleLimit)
		}
		break
	}

	for i := len(doc.Messages) - 1; i >= 0; i-- {
		msg := doc.Messages[i]
		if msg.Role != "assistant" || !isPlainText(msg) {
			continue
		}
		if text := msg.Contents[0].Text; text != "" {
			meta.Preview = truncate(text, previewLimit)
		}
		break
	}

	return meta
}

// isPlainText reports whether the message's leading content item is a plain
// exchange rather than a function call or result.
func isPlainText(msg stateMessage) bool {
	if len(msg.Contents) == 0 {
		return false
	}
	switch msg.Contents[0].Type {
	case "functionCall", "functionResult":
		return false
	}
	return true
}

func truncate(text string, limit int) *string {
	runes := []rune(text)
	if len(runes) <= limit {
		return &text
	}
	out := string(runes[:limit-len(ellipsis)]) + ellipsis
	return &out
}
