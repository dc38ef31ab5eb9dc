package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransferHandler covers export and import of projects and templates.
type TransferHandler struct {
	exports *services.ExportService
	imports *services.ImportService
}

func NewTransferHandler(exports *services.ExportService, imports *services.ImportService) *TransferHandler {
	return &TransferHandler{exports: exports, imports: imports}
}

func (h *TransferHandler) ExportProject(c *gin.Context) {
	out := filepath.Join(os.TempDir(), uuid.New().String()+".zip")
	defer os.Remove(out)

	if err := h.exports.ExportProject(c.Param("projectId"), out); err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(out, fmt.Sprintf("project_%s.zip", c.Param("projectId")))
}

func (h *TransferHandler) ImportProject(c *gin.Context) {
	archive, err := h.receiveUpload(c, ".zip")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer os.Remove(archive)

	project, err := h.imports.ImportProject(archive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, project)
}

func (h *TransferHandler) ExportTemplate(c *gin.Context) {
	out := filepath.Join(os.TempDir(), uuid.New().String()+".json")
	defer os.Remove(out)

	if err := h.exports.ExportTemplate(c.Param("templateId"), out); err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(out, fmt.Sprintf("template_%s.json", c.Param("templateId")))
}

type batchExportRequest struct {
	TemplateIDs []string `json:"template_ids" binding:"required"`
}

func (h *TransferHandler) ExportTemplates(c *gin.Context) {
	var req batchExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid export payload")
		return
	}

	out := filepath.Join(os.TempDir(), uuid.New().String()+".zip")
	defer os.Remove(out)

	if err := h.exports.ExportTemplates(req.TemplateIDs, out); err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(out, "templates.zip")
}

func (h *TransferHandler) ImportTemplate(c *gin.Context) {
	manifest, err := h.receiveUpload(c, ".json")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer os.Remove(manifest)

	template, err := h.imports.ImportTemplate(manifest)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, template)
}

func (h *TransferHandler) ImportTemplates(c *gin.Context) {
	archive, err := h.receiveUpload(c, ".zip")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer os.Remove(archive)

	templates, err := h.imports.ImportTemplates(archive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, templates)
}

// receiveUpload stores the multipart "file" field in a temp file.
func (h *TransferHandler) receiveUpload(c *gin.Context, ext string) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("no file uploaded")
	}
	dst := filepath.Join(os.TempDir(), uuid.New().String()+ext)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return dst, nil
}
