// Package response defines the one JSON envelope every endpoint
// speaks: {"success": true, "data": ...} or {"success": false,
// "error": {"code", "message"}}. Codes are stable machine-readable
// strings; messages are for humans and may change.
package response

import "github.com/gin-gonic/gin"

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Envelope{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}
