package handlers

import (
	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

func (h *DocumentHandler) CreateTemplate(c *gin.Context) {
	var input services.DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid document payload")
		return
	}
	doc, err := h.documents.CreateTemplate(input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func (h *DocumentHandler) ListTemplates(c *gin.Context) {
	docs, err := h.documents.ListTemplates()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, docs)
}

func (h *DocumentHandler) UpdateTemplate(c *gin.Context) {
	var input services.DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid document payload")
		return
	}
	doc, err := h.documents.UpdateTemplate(c.Param("documentId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func (h *DocumentHandler) DeleteTemplate(c *gin.Context) {
	if err := h.documents.DeleteTemplate(c.Param("documentId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

func (h *DocumentHandler) CreateProjectDocument(c *gin.Context) {
	var input services.DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid document payload")
		return
	}
	doc, err := h.documents.CreateProjectDocument(c.Param("projectId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func (h *DocumentHandler) ListProjectDocuments(c *gin.Context) {
	docs, err := h.documents.ListProjectDocuments(c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, docs)
}

func (h *DocumentHandler) UpdateProjectDocument(c *gin.Context) {
	var input services.DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid document payload")
		return
	}
	doc, err := h.documents.UpdateProjectDocument(c.Param("documentId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func (h *DocumentHandler) DeleteProjectDocument(c *gin.Context) {
	if err := h.documents.DeleteProjectDocument(c.Param("documentId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// ExportPDF renders the project document's HTML to a PDF via Gotenberg.
func (h *DocumentHandler) ExportPDF(c *gin.Context) {
	doc, err := h.documents.ExportPDF(c.Request.Context(), c.Param("documentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}
