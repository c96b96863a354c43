package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes the ticket API error shape.
func RespondError(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, ErrorResponse{
		Error:     errCode,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
