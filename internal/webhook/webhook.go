package webhook

import "context"

// Service sends notifications about finished chat turns.
type Service interface {
	// NotifyTurnCompleted fires after a turn's state has been persisted.
	NotifyTurnCompleted(ctx context.Context, threadID string, filtered bool) error
}

// TurnPayload is the structure sent to the configured webhook URL.
type TurnPayload struct {
	ThreadID    string `json:"threadId"`
	Event       string `json:"event"` // "chat.turn.completed"
	Filtered    bool   `json:"filtered"`
	CompletedAt string `json:"completedAt"`
}
