// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"icehouse/internal/core/apperror"
	"icehouse/pkg/logger"
)

// Recovery middleware recovers from panics and returns 500 error.
// Logs stack trace but never exposes internal details to client.
// The response is written here, not deferred to ErrorHandler: the panic
// unwinds past ErrorHandler's post-Next rendering, so registering the
// error alone would leave the client with an empty 200.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(fmt.Errorf("panic: %v", err))

				model := apperror.FromError(fmt.Errorf("panic: %v", err))
				c.AbortWithStatusJSON(model.Code, gin.H{"error": model})
			}
		}()
		c.Next()
	}
}
