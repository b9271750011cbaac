package utils

import (
	"voicecounsel/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Success writes the standard success envelope.
func Success(c *gin.Context, data gin.H) {
	c.JSON(200, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes the standard error envelope with an explicit status.
func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}

// ErrorFrom writes the error envelope with the status derived from the
// error taxonomy.
func ErrorFrom(c *gin.Context, err error) {
	Error(c, apperr.HTTPStatus(err), err.Error())
}
