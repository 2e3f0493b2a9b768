package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleError maps domain errors to HTTP responses.
func HandleError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	if errors.Is(err, thread.ErrNotFound) {
		status = http.StatusNotFound
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Message: message,
	})
}
