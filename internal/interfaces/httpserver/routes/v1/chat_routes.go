package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(group *gin.RouterGroup, handler *handlers.ChatHandler) {
	group.POST("/chat", handler.Stream)
}
