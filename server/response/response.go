package response

import (
	"github.com/gin-gonic/gin"
)

// Body is the uniform response envelope.
type Body struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  string      `json:"errors,omitempty"`
}

// JSON writes the envelope. err may be nil for success responses.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	body := Body{
		Message: message,
		Data:    data,
	}
	if err != nil {
		body.Errors = err.Error()
		if body.Message == "" {
			body.Message = err.Error()
		}
	}
	c.JSON(status, body)
}
