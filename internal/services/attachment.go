package services

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"reimdesk/internal/models"
	"reimdesk/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttachmentService struct {
	db        *gorm.DB
	store     *storage.Store
	settings  *SettingsService
	watermark *WatermarkService
	log       *zap.Logger
}

func NewAttachmentService(db *gorm.DB, store *storage.Store, settings *SettingsService, watermark *WatermarkService, log *zap.Logger) *AttachmentService {
	return &AttachmentService{db: db, store: store, settings: settings, watermark: watermark, log: log}
}

// Upload copies the file into the item's original/ directory and registers
// the attachment. When autoWatermark is set and both the template item and
// the auto-watermark setting ask for it, a watermark is applied immediately;
// a watermark failure is logged and does not fail the upload.
func (s *AttachmentService) Upload(projectItemID, originalName string, r io.Reader, autoWatermark bool) (*models.Attachment, error) {
	item, err := s.getItem(projectItemID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !extAllowed(ext, item.TemplateItem.FileTypes) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	if !item.TemplateItem.AllowsMultipleFiles {
		var count int64
		if err := s.db.Model(&models.Attachment{}).Where("project_item_id = ?", projectItemID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count attachments: %w", err)
		}
		if count > 0 {
			return nil, ErrSingleFileItem
		}
	}

	storedName := uuid.New().String() + ext
	rel := storage.ItemOriginalPath(item.ProjectID, item.ID, storedName)
	size, err := s.store.Save(rel, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	now := time.Now()
	attachment := &models.Attachment{
		ID:            uuid.New().String(),
		ProjectItemID: item.ID,
		FileName:      storedName,
		OriginalName:  originalName,
		FilePath:      rel,
		FileExt:       ext,
		FileSize:      size,
		UploadedAt:    now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attachment).Error; err != nil {
			return fmt.Errorf("failed to save attachment: %w", err)
		}
		if item.Status == models.ItemStatusPending {
			updates := map[string]any{"status": models.ItemStatusUploaded, "uploaded_at": &now}
			if err := tx.Model(&models.ProjectItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update item status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if rmErr := s.store.Remove(rel); rmErr != nil {
			s.log.Warn("failed to remove orphaned upload", zap.String("path", rel), zap.Error(rmErr))
		}
		return nil, err
	}

	if autoWatermark && item.TemplateItem.NeedsWatermark && s.settings.AutoWatermark() {
		if _, err := s.watermark.Apply(attachment.ID, "", nil); err != nil {
			s.log.Warn("auto watermark failed",
				zap.String("attachment", attachment.ID), zap.Error(err))
		}
	}

	return s.Get(attachment.ID)
}

func (s *AttachmentService) Get(id string) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := s.db.First(&attachment, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("attachment not found: %w", err)
	}
	return &attachment, nil
}

func (s *AttachmentService) List(projectItemID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.Where("project_item_id = ?", projectItemID).
		Order("uploaded_at ASC").Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}

// SetMetadata replaces the attachment's metadata blob.
func (s *AttachmentService) SetMetadata(id string, metadata map[string]string) (*models.Attachment, error) {
	if err := s.db.Model(&models.Attachment{}).Where("id = ?", id).Update("metadata", metadata).Error; err != nil {
		return nil, fmt.Errorf("failed to update attachment metadata: %w", err)
	}
	return s.Get(id)
}

// Delete removes the attachment's files and row. Removing the last attachment
// resets the owning item to pending.
func (s *AttachmentService) Delete(id string) error {
	attachment, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(attachment.FilePath); err != nil {
		s.log.Warn("failed to remove attachment file", zap.String("path", attachment.FilePath), zap.Error(err))
	}
	if attachment.WatermarkedPath != "" {
		if err := s.store.Remove(attachment.WatermarkedPath); err != nil {
			s.log.Warn("failed to remove watermarked file", zap.String("path", attachment.WatermarkedPath), zap.Error(err))
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(attachment).Error; err != nil {
			return fmt.Errorf("failed to delete attachment: %w", err)
		}
		var remaining int64
		if err := tx.Model(&models.Attachment{}).Where("project_item_id = ?", attachment.ProjectItemID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count attachments: %w", err)
		}
		if remaining == 0 {
			updates := map[string]any{"status": models.ItemStatusPending, "uploaded_at": nil}
			if err := tx.Model(&models.ProjectItem{}).Where("id = ?", attachment.ProjectItemID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to reset item status: %w", err)
			}
		}
		return nil
	})
}

// SaveSignature stores the user's signature image and records its path.
func (s *AttachmentService) SaveSignature(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	rel := storage.SignaturePath("signature" + ext)
	if _, err := s.store.Save(rel, r); err != nil {
		return "", fmt.Errorf("failed to store signature: %w", err)
	}
	if err := s.settings.Set(models.SettingSignatureImage, rel); err != nil {
		return "", err
	}
	return rel, nil
}

func (s *AttachmentService) getItem(projectItemID string) (*models.ProjectItem, error) {
	var item models.ProjectItem
	if err := s.db.Preload("TemplateItem").First(&item, "id = ?", projectItemID).Error; err != nil {
		return nil, fmt.Errorf("project item not found: %w", err)
	}
	return &item, nil
}

func extAllowed(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	trimmed := strings.TrimPrefix(ext, ".")
	for _, t := range normalizeFileTypes(allowed) {
		if t == trimmed {
			return true
		}
	}
	return false
}
