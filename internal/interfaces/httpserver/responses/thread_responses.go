package responses

import (
	"time"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
)

// ThreadResponse is the client view of a thread. The state blob itself is
// deliberately absent: clients get state through the stream, not the listing.
type ThreadResponse struct {
	ThreadID     string    `json:"threadId"`
	Title        *string   `json:"title"`
	Preview      *string   `json:"preview"`
	MessageCount int       `json:"messageCount"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ThreadListResponse is one page of threads.
type ThreadListResponse struct {
	Data       []ThreadResponse `json:"data"`
	TotalCount int64            `json:"totalCount"`
	HasMore    bool             `json:"hasMore"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
}

// MapThreadToResponse maps the domain thread to its DTO.
func MapThreadToResponse(t *thread.Thread) ThreadResponse {
	return ThreadResponse{
		ThreadID:     t.ThreadID,
		Title:        t.Title,
		Preview:      t.Preview,
		MessageCount: t.MessageCount,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// MapThreadPageToResponse maps one page plus the options that produced it.
func MapThreadPageToResponse(page *thread.Page, pageNum, pageSize int) ThreadListResponse {
	data := make([]ThreadResponse, 0, len(page.Items))
	for _, t := range page.Items {
		data = append(data, MapThreadToResponse(t))
	}
	return ThreadListResponse{
		Data:       data,
		TotalCount: page.TotalCount,
		HasMore:    page.HasMore,
		Page:       pageNum,
		PageSize:   pageSize,
	}
}
