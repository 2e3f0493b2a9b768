package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/metrics"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/requests"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/responses"
)

// ThreadHandler exposes HTTP entrypoints for thread management.
type ThreadHandler struct {
	store *thread.Store
	log   zerolog.Logger
}

// NewThreadHandler constructs the handler.
func NewThreadHandler(store *thread.Store, log zerolog.Logger) *ThreadHandler {
	return &ThreadHandler{
		store: store,
		log:   log.With().Str("handler", "thread").Logger(),
	}
}

// List handles GET /v1/threads
// @Summary List threads
// @Description Returns one page of threads with derived metadata
// @Tags Threads
// @Produce json
// @Param isActive query bool false "Filter by active state"
// @Param sort query string false "Sort field (createdAt or updatedAt)"
// @Param order query string false "Sort order (asc or desc)"
// @Param page query int false "Page number, starting at 1"
// @Param pageSize query int false "Page size"
// @Success 200 {object} responses.ThreadListResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/threads [get]
func (h *ThreadHandler) List(c *gin.Context) {
	var req requests.ListThreadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.store.List(c.Request.Context(),
		thread.ListFilter{IsActive: req.IsActive},
		thread.ListOptions{
			Sort:     sortField(req.Sort),
			Order:    thread.SortOrder(req.Order),
			Page:     req.Page,
			PageSize: req.PageSize,
		})
	if err != nil {
		responses.HandleError(c, err, "failed to list threads")
		return
	}

	pageNum := req.Page
	if pageNum < 1 {
		pageNum = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = len(page.Items)
	}
	c.JSON(http.StatusOK, responses.MapThreadPageToResponse(page, pageNum, pageSize))
}

// sortField maps the camelCase query values onto the domain sort columns.
// Anything else falls through to the store's default ordering.
func sortField(v string) thread.SortField {
	switch v {
	case "createdAt":
		return thread.SortByCreatedAt
	case "updatedAt":
		return thread.SortByUpdatedAt
	default:
		return ""
	}
}

// Get handles GET /v1/threads/:thread_id
// @Summary Get a thread
// @Description Returns one thread's metadata
// @Tags Threads
// @Produce json
// @Param thread_id path string true "Thread ID"
// @Success 200 {object} responses.ThreadResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/threads/{thread_id} [get]
func (h *ThreadHandler) Get(c *gin.Context) {
	threadID := c.Param("thread_id")

	t, err := h.store.Get(c.Request.Context(), threadID)
	if err != nil {
		responses.HandleError(c, err, "failed to get thread")
		return
	}

	c.JSON(http.StatusOK, responses.MapThreadToResponse(t))
}

// Delete handles DELETE /v1/threads/:thread_id
// @Summary Delete a thread
// @Description Soft-deletes a thread; deleting an unknown id is a no-op
// @Tags Threads
// @Produce json
// @Param thread_id path string true "Thread ID"
// @Success 204 "No content"
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/threads/{thread_id} [delete]
func (h *ThreadHandler) Delete(c *gin.Context) {
	threadID := c.Param("thread_id")

	if err := h.store.Delete(c.Request.Context(), threadID); err != nil {
		metrics.RecordThreadWrite("delete", "error")
		responses.HandleError(c, err, "failed to delete thread")
		return
	}

	metrics.RecordThreadWrite("delete", "ok")
	c.Status(http.StatusNoContent)
}

// Restore handles POST /v1/threads/:thread_id/restore
// @Summary Restore a thread
// @Description Re-activates a soft-deleted thread
// @Tags Threads
// @Produce json
// @Param thread_id path string true "Thread ID"
// @Success 200 {object} responses.ThreadResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/threads/{thread_id}/restore [post]
func (h *ThreadHandler) Restore(c *gin.Context) {
	threadID := c.Param("thread_id")

	if err := h.store.Restore(c.Request.Context(), threadID); err != nil {
		metrics.RecordThreadWrite("restore", "error")
		responses.HandleError(c, err, "failed to restore thread")
		return
	}
	metrics.RecordThreadWrite("restore", "ok")

	t, err := h.store.Get(c.Request.Context(), threadID)
	if err != nil {
		responses.HandleError(c, err, "failed to get restored thread")
		return
	}

	c.JSON(http.StatusOK, responses.MapThreadToResponse(t))
}
