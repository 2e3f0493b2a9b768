package requests

// ChatRequest starts one streamed chat turn. ThreadID is the resume token
// from the previous turn's THREAD_STATE event: a bare thread id, a full
// serialized state blob, or empty for a fresh conversation.
type ChatRequest struct {
	Message  string `json:"message" binding:"required"`
	ThreadID string `json:"threadId"`
}
