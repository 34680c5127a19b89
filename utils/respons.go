package utils

import (
	"github.com/gin-gonic/gin"
)

// What the client should do after a failed call.
const (
	ActionRefresh = "refresh"
	ActionRetry   = "retry"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Action  string      `json:"action,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondFailure is RespondError with a machine readable code and the
// action the terminal should take (refresh or retry).
func RespondFailure(c *gin.Context, code int, errCode, action string, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Code:    errCode,
		Action:  action,
	})
}
