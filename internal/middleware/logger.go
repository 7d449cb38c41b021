package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs every request and recovers from panics with a JSON
// INTERNAL_SERVER_ERROR envelope.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				log.Error("request panic",
					append(requestFields(c, start), zap.Error(err), zap.ByteString("stack", debug.Stack()))...)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal server error",
					},
				})
				return
			}

			fields := requestFields(c, start)
			for _, e := range c.Errors {
				fields = append(fields, zap.NamedError("gin_error", e.Err))
			}

			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				log.Error("request failed", fields...)
			case len(c.Errors) > 0 || status >= http.StatusBadRequest:
				log.Warn("request rejected", fields...)
			default:
				log.Info("request", fields...)
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) []zap.Field {
	return []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", GetRequestID(c)),
		zap.Duration("latency", time.Since(start)),
	}
}
