package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reimdesk/internal/models"
	"reimdesk/internal/processor"
	"reimdesk/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var watermarkableExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
}

type WatermarkService struct {
	db       *gorm.DB
	store    *storage.Store
	settings *SettingsService
	log      *zap.Logger
}

func NewWatermarkService(db *gorm.DB, store *storage.Store, settings *SettingsService, log *zap.Logger) *WatermarkService {
	return &WatermarkService{db: db, store: store, settings: settings, log: log}
}

// Apply produces a watermarked copy of the attachment under the item's
// watermarked/ directory and flips the row and item status. The original file
// is never mutated. text may be empty, in which case the template item's
// watermark text template (or the creator/project fallback) is resolved.
func (s *WatermarkService) Apply(attachmentID, text string, override *processor.Style) (*models.Attachment, error) {
	attachment, item, project, err := s.resolve(attachmentID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(attachment.FileExt)
	if !watermarkableExts[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	if !s.store.Exists(attachment.FilePath) {
		return nil, fmt.Errorf("%w: %s", ErrMissingSourceFile, attachment.FilePath)
	}

	if text == "" {
		text = ResolveWatermarkText(item.TemplateItem.WatermarkTemplate, project.Creator, item.TemplateItem.Name, project.Name, time.Now())
	}
	style := s.settings.WatermarkStyle()
	if override != nil {
		style = style.Merge(*override)
	}

	wmName := processor.WatermarkName(attachment.FileName)
	rel := storage.ItemWatermarkedPath(project.ID, item.ID, wmName)
	dst := s.store.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("failed to create watermark directory: %w", err)
	}

	// Stamp into a temp sibling and rename so a failed encode leaves nothing
	// behind. The temp name keeps the real extension because the stampers pick
	// their encoder from it.
	tmp := strings.TrimSuffix(dst, ext) + ".tmp" + ext
	src := s.store.Abs(attachment.FilePath)
	if ext == ".pdf" {
		err = processor.StampPDF(src, tmp, text, style)
	} else {
		err = processor.StampImage(src, tmp, text, style)
	}
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to finalize watermarked file: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"has_watermark": true, "watermarked_path": rel}
		if err := tx.Model(&models.Attachment{}).Where("id = ?", attachment.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update attachment: %w", err)
		}
		if err := tx.Model(&models.ProjectItem{}).Where("id = ?", item.ID).Update("status", models.ItemStatusWatermarked).Error; err != nil {
			return fmt.Errorf("failed to update item status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	attachment.HasWatermark = true
	attachment.WatermarkedPath = rel
	return attachment, nil
}

// Clear deletes the derived file and resets the attachment and item. A failed
// unlink is deliberately fire-and-forget: the row reset wins, the orphan file
// is only logged.
func (s *WatermarkService) Clear(attachmentID string) (*models.Attachment, error) {
	attachment, item, _, err := s.resolve(attachmentID)
	if err != nil {
		return nil, err
	}

	if attachment.WatermarkedPath != "" {
		if err := s.store.Remove(attachment.WatermarkedPath); err != nil {
			s.log.Warn("failed to remove watermarked file",
				zap.String("path", attachment.WatermarkedPath), zap.Error(err))
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"has_watermark": false, "watermarked_path": ""}
		if err := tx.Model(&models.Attachment{}).Where("id = ?", attachment.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update attachment: %w", err)
		}
		if err := tx.Model(&models.ProjectItem{}).Where("id = ?", item.ID).Update("status", models.ItemStatusUploaded).Error; err != nil {
			return fmt.Errorf("failed to update item status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	attachment.HasWatermark = false
	attachment.WatermarkedPath = ""
	return attachment, nil
}

func (s *WatermarkService) resolve(attachmentID string) (*models.Attachment, *models.ProjectItem, *models.Project, error) {
	var attachment models.Attachment
	if err := s.db.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("attachment not found: %w", err)
	}
	var item models.ProjectItem
	if err := s.db.Preload("TemplateItem").First(&item, "id = ?", attachment.ProjectItemID).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("project item not found: %w", err)
	}
	var project models.Project
	if err := s.db.First(&project, "id = ?", item.ProjectID).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("project not found: %w", err)
	}
	return &attachment, &item, &project, nil
}

// ResolveWatermarkText substitutes the recognized placeholder tokens. An
// empty template falls back to "<creator> - <project name>".
func ResolveWatermarkText(template, creator, itemName, projectName string, now time.Time) string {
	if template == "" {
		return fmt.Sprintf("%s - %s", creator, projectName)
	}
	return strings.NewReplacer(
		"{userName}", creator,
		"{itemName}", itemName,
		"{projectName}", projectName,
		"{date}", now.Format("2006-01-02"),
	).Replace(template)
}
