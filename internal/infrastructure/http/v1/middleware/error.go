package middleware

import (
	"github.com/gin-gonic/gin"

	"icehouse/internal/core/apperror"
	"icehouse/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Every error renders as an ErrorModel; internal causes are logged, never
// exposed to clients.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		model := apperror.FromError(err)

		if model.Code >= 500 {
			logger.Error(c.Request.Context(), "request error",
				"type", model.Type,
				"error", err,
				"cause", model.Source,
			)
		}

		c.JSON(model.Code, gin.H{"error": model})
	}
}
