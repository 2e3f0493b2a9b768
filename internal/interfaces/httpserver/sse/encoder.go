package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/chat"
)

// SSE framing.
const (
	dataFormat = "data: %s\n\n"
	doneFrame  = "data: [DONE]\n\n"
)

// Wire event types.
const (
	typeStatusUpdate       = "STATUS_UPDATE"
	typeStepStarted        = "STEP_STARTED"
	typeStepFinished       = "STEP_FINISHED"
	typeTextMessageContent = "TEXT_MESSAGE_CONTENT"
	typeContentFilter      = "CONTENT_FILTER"
	typeThreadState        = "THREAD_STATE"
)

// filteredMessage is deliberately generic: the wire never explains which
// filter fired or why.
const filteredMessage = "The response was filtered due to the content management policy. " +
	"Please rephrase your message and try again."

type statusUpdateEvent struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type stepEvent struct {
	Type     string `json:"type"`
	StepName string `json:"stepName"`
}

type textMessageContentEvent struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Delta     string `json:"delta"`
	MessageID string `json:"messageId"`
}

type contentFilterEvent struct {
	Type      string `json:"type"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

type threadStateEvent struct {
	Type            string          `json:"type"`
	SerializedState json.RawMessage `json:"serializedState"`
}

// Encoder turns internal stream events into SSE frames and flushes each one
// immediately so clients render progress in real time.
type Encoder struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewEncoder prepares streaming over w. It fails when the writer cannot
// flush, since buffered SSE defeats the point.
func NewEncoder(w http.ResponseWriter) (*Encoder, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	return &Encoder{w: w, flusher: flusher}, nil
}

// Encode writes one event. Unknown event types are dropped silently so the
// wire vocabulary stays closed.
func (e *Encoder) Encode(event chat.Event) error {
	switch event.Type {
	case chat.EventStatusChanged:
		return e.write(statusUpdateEvent{Type: typeStatusUpdate, Status: event.Status})
	case chat.EventFunctionCallStarted:
		return e.write(stepEvent{Type: typeStepStarted, StepName: event.FunctionName})
	case chat.EventFunctionCallFinished:
		return e.write(stepEvent{Type: typeStepFinished, StepName: event.FunctionName})
	case chat.EventTextDelta:
		return e.write(textMessageContentEvent{
			Type:      typeTextMessageContent,
			Role:      "assistant",
			Delta:     event.Text,
			MessageID: event.MessageID,
		})
	case chat.EventSafetyBlocked:
		return e.WriteContentFilter(event.MessageID, "")
	case chat.EventStateProduced:
		return e.write(threadStateEvent{Type: typeThreadState, SerializedState: event.State})
	}
	return nil
}

// WriteContentFilter emits the block event. An empty message falls back to
// the generic refusal text.
func (e *Encoder) WriteContentFilter(messageID, message string) error {
	if message == "" {
		message = filteredMessage
	}
	return e.write(contentFilterEvent{
		Type:      typeContentFilter,
		Error:     "content_filter",
		Message:   message,
		MessageID: messageID,
	})
}

// WriteDone terminates the stream.
func (e *Encoder) WriteDone() error {
	if _, err := fmt.Fprint(e.w, doneFrame); err != nil {
		return fmt.Errorf("failed to write done frame: %w", err)
	}
	e.flusher.Flush()
	return nil
}

func (e *Encoder) write(payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode stream event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, dataFormat, body); err != nil {
		return fmt.Errorf("failed to write stream event: %w", err)
	}
	e.flusher.Flush()
	return nil
}
