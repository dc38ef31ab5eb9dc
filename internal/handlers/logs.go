package handlers

import (
	"strconv"

	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type LogsHandler struct {
	logs *services.ActivityLogService
}

func NewLogsHandler(logs *services.ActivityLogService) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// List returns activity logs with pagination, newest first.
func (h *LogsHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	logs, total, err := h.logs.List(limit, (page-1)*limit, c.Query("method"), c.Query("path"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
