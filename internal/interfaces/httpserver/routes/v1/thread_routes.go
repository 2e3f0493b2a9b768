package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/handlers"
)

func registerThreadRoutes(group *gin.RouterGroup, handler *handlers.ThreadHandler) {
	threads := group.Group("/threads")
	threads.GET("", handler.List)
	threads.GET("/:thread_id", handler.Get)
	threads.DELETE("/:thread_id", handler.Delete)
	threads.POST("/:thread_id/restore", handler.Restore)
}
