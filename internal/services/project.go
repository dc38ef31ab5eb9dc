package services

import (
	"fmt"
	"sort"

	"reimdesk/internal/models"
	"reimdesk/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	store *storage.Store
	log   *zap.Logger
}

func NewProjectService(db *gorm.DB, store *storage.Store, log *zap.Logger) *ProjectService {
	return &ProjectService{db: db, store: store, log: log}
}

// CreateFromTemplate snapshots the template's items into project items inside
// one transaction: exactly one pending project item per template item.
func (s *ProjectService) CreateFromTemplate(templateID, name, creator string, metadata map[string]any) (*models.Project, error) {
	var template models.Template
	if err := s.db.Preload("Items").First(&template, "id = ?", templateID).Error; err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	project := &models.Project{
		ID:         uuid.New().String(),
		TemplateID: template.ID,
		Name:       name,
		Creator:    creator,
		Status:     models.ProjectStatusIncomplete,
		Metadata:   metadata,
	}
	for _, item := range template.Items {
		project.Items = append(project.Items, models.ProjectItem{
			ID:             uuid.New().String(),
			ProjectID:      project.ID,
			TemplateItemID: item.ID,
			Status:         models.ItemStatusPending,
		})
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(project).Error
	}); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return s.Get(project.ID)
}

func (s *ProjectService) Get(id string) (*models.Project, error) {
	var project models.Project
	err := s.db.
		Preload("Items.TemplateItem").
		Preload("Items.Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at ASC")
		}).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}
	sortItems(project.Items)
	return &project, nil
}

func (s *ProjectService) List() ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) UpdateStatus(id, status string) (*models.Project, error) {
	switch status {
	case models.ProjectStatusIncomplete, models.ProjectStatusComplete, models.ProjectStatusExported:
	default:
		return nil, ErrInvalidStatus
	}
	if err := s.db.Model(&models.Project{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	return s.Get(id)
}

func (s *ProjectService) UpdateMetadata(id string, metadata map[string]any) (*models.Project, error) {
	if err := s.db.Model(&models.Project{}).Where("id = ?", id).Update("metadata", metadata).Error; err != nil {
		return nil, fmt.Errorf("failed to update project metadata: %w", err)
	}
	return s.Get(id)
}

// MissingRequired reports required item names that have no attachment yet.
// Completeness is only ever checked, never enforced.
func (s *ProjectService) MissingRequired(id string) ([]string, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, item := range project.Items {
		if item.TemplateItem.IsRequired && len(item.Attachments) == 0 {
			missing = append(missing, item.TemplateItem.Name)
		}
	}
	return missing, nil
}

// Delete removes the project's rows in one transaction, then clears its file
// tree. Losing the files after a committed delete is best effort.
func (s *ProjectService) Delete(id string) error {
	project, err := s.Get(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		itemIDs := tx.Model(&models.ProjectItem{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("project_item_id IN (?)", itemIDs).Delete(&models.Attachment{}).Error; err != nil {
			return fmt.Errorf("failed to delete attachments: %w", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete project items: %w", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectDocument{}).Error; err != nil {
			return fmt.Errorf("failed to delete project documents: %w", err)
		}
		if err := tx.Delete(project).Error; err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.store.RemoveAll(project.ID); err != nil {
		s.log.Warn("failed to remove project files", zap.String("project", project.ID), zap.Error(err))
	}
	return nil
}

// sortItems orders project items by their template item display order.
func sortItems(items []models.ProjectItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TemplateItem.DisplayOrder < items[j].TemplateItem.DisplayOrder
	})
}
