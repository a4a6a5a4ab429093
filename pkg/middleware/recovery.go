package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/currencies/pkg/common"
	"github.com/richxcame/currencies/pkg/logger"
	"go.uber.org/zap"
)

// Recovery converts a handler panic into a 500 envelope and logs it with a stack trace
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			logger.WithContext(c.Request.Context()).Error("Panic recovered",
				zap.Any("panic", recovered),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Stack("stack"),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			common.AppErrorResponse(c, common.NewInternalServerError("internal server error", fmt.Errorf("panic: %v", recovered)))
			c.Abort()
		}()

		c.Next()
	}
}
