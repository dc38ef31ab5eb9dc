package handlers

import (
	"reimdesk/internal/services"
	"reimdesk/internal/storage"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachments *services.AttachmentService
	store       *storage.Store
}

func NewAttachmentHandler(attachments *services.AttachmentService, store *storage.Store) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, store: store}
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "no file uploaded")
		return
	}
	defer file.Close()

	attachment, err := h.attachments.Upload(c.Param("itemId"), header.Filename, file, true)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, attachment)
}

func (h *AttachmentHandler) List(c *gin.Context) {
	attachments, err := h.attachments.List(c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, attachments)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.attachments.Delete(c.Param("attachmentId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

type metadataRequest struct {
	Metadata map[string]string `json:"metadata"`
}

func (h *AttachmentHandler) SetMetadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid metadata payload")
		return
	}
	attachment, err := h.attachments.SetMetadata(c.Param("attachmentId"), req.Metadata)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, attachment)
}

// Download serves the stored file, preferring the watermarked derivative when
// one exists and ?original=true is not set.
func (h *AttachmentHandler) Download(c *gin.Context) {
	attachment, err := h.attachments.Get(c.Param("attachmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	rel := attachment.FilePath
	if attachment.HasWatermark && attachment.WatermarkedPath != "" && c.Query("original") != "true" {
		rel = attachment.WatermarkedPath
	}
	c.FileAttachment(h.store.Abs(rel), attachment.OriginalName)
}
