package chat

import "encoding/json"

// EventType tags the orchestrator's internal stream events.
type EventType string

const (
	EventTextDelta            EventType = "text_delta"
	EventFunctionCallStarted  EventType = "function_call_started"
	EventFunctionCallFinished EventType = "function_call_finished"
	EventStatusChanged        EventType = "status_changed"
	EventSafetyBlocked        EventType = "safety_blocked"
	EventStateProduced        EventType = "state_produced"
)

// Event is one internal stream event. Produced solely by the orchestrator,
// consumed solely by the protocol encoder, never persisted.
type Event struct {
	Type         EventType
	MessageID    string
	Text         string
	FunctionName string
	Status       string
	Reason       string
	State        json.RawMessage
}

// Emitter receives events in order. Returning an error stops the run.
type Emitter func(Event) error

func textDelta(messageID, text string) Event {
	return Event{Type: EventTextDelta, MessageID: messageID, Text: text}
}

func functionCallStarted(name string) Event {
	return Event{Type: EventFunctionCallStarted, FunctionName: name}
}

func functionCallFinished(name string) Event {
	return Event{Type: EventFunctionCallFinished, FunctionName: name}
}

func statusChanged(status string) Event {
	return Event{Type: EventStatusChanged, Status: status}
}

func safetyBlocked(messageID, reason string) Event {
	return Event{Type: EventSafetyBlocked, MessageID: messageID, Reason: reason}
}

func stateProduced(state json.RawMessage) Event {
	return Event{Type: EventStateProduced, State: state}
}
