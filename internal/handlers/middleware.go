package handlers

import (
	"time"

	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// RequestLogger records every handled request into the activity log.
func RequestLogger(logs *services.ActivityLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logs.Record(c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Writer.Status(), time.Since(start))
	}
}
