package services

import (
	"fmt"

	"reimdesk/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TemplateService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTemplateService(db *gorm.DB, log *zap.Logger) *TemplateService {
	return &TemplateService{db: db, log: log}
}

type TemplateItemInput struct {
	Name                string   `json:"name" binding:"required"`
	Description         string   `json:"description"`
	IsRequired          bool     `json:"is_required"`
	FileTypes           []string `json:"file_types"`
	NeedsWatermark      bool     `json:"needs_watermark"`
	WatermarkTemplate   string   `json:"watermark_template"`
	AllowsMultipleFiles bool     `json:"allows_multiple_files"`
	DisplayOrder        int      `json:"display_order"`
	Category            string   `json:"category"`
}

type TemplateInput struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Creator     string              `json:"creator"`
	IsDefault   bool                `json:"is_default"`
	Items       []TemplateItemInput `json:"items"`
}

func (in TemplateItemInput) toModel(templateID string) models.TemplateItem {
	return models.TemplateItem{
		ID:                  uuid.New().String(),
		TemplateID:          templateID,
		Name:                in.Name,
		Description:         in.Description,
		IsRequired:          in.IsRequired,
		FileTypes:           normalizeFileTypes(in.FileTypes),
		NeedsWatermark:      in.NeedsWatermark,
		WatermarkTemplate:   in.WatermarkTemplate,
		AllowsMultipleFiles: in.AllowsMultipleFiles,
		DisplayOrder:        in.DisplayOrder,
		Category:            in.Category,
	}
}

func (s *TemplateService) Create(input TemplateInput) (*models.Template, error) {
	template := &models.Template{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Creator:     input.Creator,
		IsDefault:   input.IsDefault,
	}
	for _, item := range input.Items {
		template.Items = append(template.Items, item.toModel(template.ID))
	}

	if err := s.db.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) Get(id string) (*models.Template, error) {
	var template models.Template
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).First(&template, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) List() ([]models.Template, error) {
	var templates []models.Template
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Order("created_at DESC").Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) Update(id string, input TemplateInput) (*models.Template, error) {
	template, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"is_default":  input.IsDefault,
	}
	if err := s.db.Model(template).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return s.Get(id)
}

// SafeDelete refuses to delete a template that has projects; the template and
// its items are left untouched in that case.
func (s *TemplateService) SafeDelete(id string) error {
	template, err := s.Get(id)
	if err != nil {
		return err
	}
	inUse, err := s.hasProjects(id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrTemplateInUse
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete template items: %w", err)
		}
		if err := tx.Delete(template).Error; err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		return nil
	})
}

func (s *TemplateService) AddItem(templateID string, input TemplateItemInput) (*models.TemplateItem, error) {
	if _, err := s.Get(templateID); err != nil {
		return nil, err
	}
	item := input.toModel(templateID)
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create template item: %w", err)
	}
	return &item, nil
}

// UpdateItem applies edits to an item. A critical change (one that would
// invalidate existing uploads) is rejected while the template has projects.
func (s *TemplateService) UpdateItem(itemID string, input TemplateItemInput, critical bool) (*models.TemplateItem, error) {
	item, err := s.getItem(itemID)
	if err != nil {
		return nil, err
	}
	if critical {
		inUse, err := s.hasProjects(item.TemplateID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, ErrTemplateInUse
		}
	}
	updates := map[string]any{
		"name":                  input.Name,
		"description":           input.Description,
		"is_required":           input.IsRequired,
		"needs_watermark":       input.NeedsWatermark,
		"watermark_template":    input.WatermarkTemplate,
		"allows_multiple_files": input.AllowsMultipleFiles,
		"display_order":         input.DisplayOrder,
		"category":              input.Category,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update template item: %w", err)
		}
		if err := tx.Model(item).Update("file_types", normalizeFileTypes(input.FileTypes)).Error; err != nil {
			return fmt.Errorf("failed to update template item file types: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getItem(itemID)
}

func (s *TemplateService) DeleteItem(itemID string, critical bool) error {
	item, err := s.getItem(itemID)
	if err != nil {
		return err
	}
	if critical {
		inUse, err := s.hasProjects(item.TemplateID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrTemplateInUse
		}
	}
	return s.db.Delete(item).Error
}

func (s *TemplateService) getItem(itemID string) (*models.TemplateItem, error) {
	var item models.TemplateItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, fmt.Errorf("template item not found: %w", err)
	}
	return &item, nil
}

func (s *TemplateService) hasProjects(templateID string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("template_id = ?", templateID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count projects: %w", err)
	}
	return count > 0, nil
}

// UniqueName resolves a name collision with the "<name> (<n>)" scheme,
// picking the smallest n not already taken.
func (s *TemplateService) UniqueName(base string) (string, error) {
	taken, err := s.nameTaken(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		taken, err := s.nameTaken(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *TemplateService) nameTaken(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Template{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check template name: %w", err)
	}
	return count > 0, nil
}
