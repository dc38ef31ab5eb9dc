package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PrintHandler struct {
	printing *services.PrintService
}

func NewPrintHandler(printing *services.PrintService) *PrintHandler {
	return &PrintHandler{printing: printing}
}

// Compose merges the project's attachments into one PDF and serves it.
func (h *PrintHandler) Compose(c *gin.Context) {
	out := filepath.Join(os.TempDir(), uuid.New().String()+".pdf")
	defer os.Remove(out)

	if err := h.printing.ComposeProject(c.Param("projectId"), out); err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(out, fmt.Sprintf("project_%s.pdf", c.Param("projectId")))
}
