package handlers

import (
	"reimdesk/internal/processor"
	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type WatermarkHandler struct {
	watermarks *services.WatermarkService
}

func NewWatermarkHandler(watermarks *services.WatermarkService) *WatermarkHandler {
	return &WatermarkHandler{watermarks: watermarks}
}

type applyWatermarkRequest struct {
	Text  string           `json:"text"`
	Style *processor.Style `json:"style"`
}

func (h *WatermarkHandler) Apply(c *gin.Context) {
	var req applyWatermarkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid watermark payload")
			return
		}
	}
	attachment, err := h.watermarks.Apply(c.Param("attachmentId"), req.Text, req.Style)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, attachment)
}

func (h *WatermarkHandler) Clear(c *gin.Context) {
	attachment, err := h.watermarks.Clear(c.Param("attachmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, attachment)
}
