package handlers

import (
	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	TemplateID string         `json:"template_id" binding:"required"`
	Name       string         `json:"name" binding:"required"`
	Creator    string         `json:"creator"`
	Metadata   map[string]any `json:"metadata"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid project payload")
		return
	}
	project, err := h.projects.CreateFromTemplate(req.TemplateID, req.Name, req.Creator, req.Metadata)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, project)
}

type updateProjectRequest struct {
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid project payload")
		return
	}

	id := c.Param("projectId")
	if req.Status != "" {
		if _, err := h.projects.UpdateStatus(id, req.Status); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Metadata != nil {
		if _, err := h.projects.UpdateMetadata(id, req.Metadata); err != nil {
			respondError(c, err)
			return
		}
	}
	project, err := h.projects.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Param("projectId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// CheckComplete reports which required items still lack uploads.
func (h *ProjectHandler) CheckComplete(c *gin.Context) {
	missing, err := h.projects.MissingRequired(c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"complete": len(missing) == 0, "missing": missing})
}
