package handlers

import (
	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templates *services.TemplateService
}

func NewTemplateHandler(templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, templates)
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var input services.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid template payload")
		return
	}
	template, err := h.templates.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, template)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.templates.Get(c.Param("templateId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, template)
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var input services.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid template payload")
		return
	}
	template, err := h.templates.Update(c.Param("templateId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, template)
}

// Delete is the safe-delete path: rejected while any project references the
// template.
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.SafeDelete(c.Param("templateId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

func (h *TemplateHandler) AddItem(c *gin.Context) {
	var input services.TemplateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid item payload")
		return
	}
	item, err := h.templates.AddItem(c.Param("templateId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func (h *TemplateHandler) UpdateItem(c *gin.Context) {
	var input services.TemplateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid item payload")
		return
	}
	critical := c.Query("critical") == "true"
	item, err := h.templates.UpdateItem(c.Param("itemId"), input, critical)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func (h *TemplateHandler) DeleteItem(c *gin.Context) {
	critical := c.Query("critical") == "true"
	if err := h.templates.DeleteItem(c.Param("itemId"), critical); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
