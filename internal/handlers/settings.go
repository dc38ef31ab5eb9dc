package handlers

import (
	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settings    *services.SettingsService
	attachments *services.AttachmentService
}

func NewSettingsHandler(settings *services.SettingsService, attachments *services.AttachmentService) *SettingsHandler {
	return &SettingsHandler{settings: settings, attachments: attachments}
}

func (h *SettingsHandler) GetAll(c *gin.Context) {
	settings, err := h.settings.All()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, settings)
}

func (h *SettingsHandler) Put(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		respondBadRequest(c, "invalid settings payload")
		return
	}
	for key, value := range values {
		if err := h.settings.Set(key, value); err != nil {
			respondError(c, err)
			return
		}
	}
	respondOK(c, nil)
}

// UploadSignature stores the user's signature image under user/signature/.
func (h *SettingsHandler) UploadSignature(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "no file uploaded")
		return
	}
	defer file.Close()

	rel, err := h.attachments.SaveSignature(header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"path": rel})
}

type migrateRootRequest struct {
	Path string `json:"path" binding:"required"`
}

// MigrateRoot moves the storage tree to a new root directory.
func (h *SettingsHandler) MigrateRoot(c *gin.Context) {
	var req migrateRootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid migration payload")
		return
	}
	if err := h.settings.MigrateStorageRoot(req.Path); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
