package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reimdesk/internal/models"
	"reimdesk/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService manages HTML boilerplate: reusable document templates and
// per-project documents, with optional PDF export through Gotenberg.
type DocumentService struct {
	db    *gorm.DB
	store *storage.Store
	pdf   *PDFRenderer
	log   *zap.Logger
}

func NewDocumentService(db *gorm.DB, store *storage.Store, pdf *PDFRenderer, log *zap.Logger) *DocumentService {
	return &DocumentService{db: db, store: store, pdf: pdf, log: log}
}

type DocumentInput struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
	Creator string `json:"creator"`
}

func (s *DocumentService) CreateTemplate(input DocumentInput) (*models.DocumentTemplate, error) {
	doc := &models.DocumentTemplate{
		ID:      uuid.New().String(),
		Name:    input.Name,
		Content: input.Content,
		Creator: input.Creator,
	}
	if err := s.db.Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create document template: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) ListTemplates() ([]models.DocumentTemplate, error) {
	var docs []models.DocumentTemplate
	if err := s.db.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list document templates: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) UpdateTemplate(id string, input DocumentInput) (*models.DocumentTemplate, error) {
	var doc models.DocumentTemplate
	if err := s.db.First(&doc, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("document template not found: %w", err)
	}
	updates := map[string]any{"name": input.Name, "content": input.Content}
	if err := s.db.Model(&doc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update document template: %w", err)
	}
	return &doc, nil
}

func (s *DocumentService) DeleteTemplate(id string) error {
	return s.db.Delete(&models.DocumentTemplate{}, "id = ?", id).Error
}

func (s *DocumentService) CreateProjectDocument(projectID string, input DocumentInput) (*models.ProjectDocument, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}
	doc := &models.ProjectDocument{
		ID:        uuid.New().String(),
		ProjectID: project.ID,
		Name:      input.Name,
		Content:   input.Content,
	}
	if err := s.db.Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create project document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) ListProjectDocuments(projectID string) ([]models.ProjectDocument, error) {
	var docs []models.ProjectDocument
	if err := s.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list project documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) UpdateProjectDocument(id string, input DocumentInput) (*models.ProjectDocument, error) {
	doc, err := s.getProjectDocument(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"name": input.Name, "content": input.Content}
	if err := s.db.Model(doc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update project document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) DeleteProjectDocument(id string) error {
	doc, err := s.getProjectDocument(id)
	if err != nil {
		return err
	}
	if doc.PDFPath != "" {
		if err := s.store.Remove(doc.PDFPath); err != nil {
			s.log.Warn("failed to remove exported pdf", zap.String("path", doc.PDFPath), zap.Error(err))
		}
	}
	return s.db.Delete(doc).Error
}

// ExportPDF renders the document's HTML to a PDF under the project's
// documents/ directory and records the relative path.
func (s *DocumentService) ExportPDF(ctx context.Context, id string) (*models.ProjectDocument, error) {
	if s.pdf == nil {
		return nil, ErrPDFNotConfigured
	}
	doc, err := s.getProjectDocument(id)
	if err != nil {
		return nil, err
	}

	rel := storage.ProjectDocumentPath(doc.ProjectID, doc.ID+".pdf")
	abs := s.store.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	if err := s.pdf.RenderHTML(ctx, doc.Content, abs); err != nil {
		return nil, err
	}

	if err := s.db.Model(doc).Update("pdf_path", rel).Error; err != nil {
		return nil, fmt.Errorf("failed to record pdf path: %w", err)
	}
	doc.PDFPath = rel
	return doc, nil
}

func (s *DocumentService) getProjectDocument(id string) (*models.ProjectDocument, error) {
	var doc models.ProjectDocument
	if err := s.db.First(&doc, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("project document not found: %w", err)
	}
	return &doc, nil
}
