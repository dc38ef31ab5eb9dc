package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"reimdesk/internal/models"
	"reimdesk/internal/processor"
	"reimdesk/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsService persists key/value settings and interprets the known keys.
type SettingsService struct {
	db          *gorm.DB
	store       *storage.Store
	defaultRoot string
}

func NewSettingsService(db *gorm.DB, store *storage.Store, defaultRoot string) *SettingsService {
	return &SettingsService{db: db, store: store, defaultRoot: defaultRoot}
}

// Get returns the raw value, or "" when the key has never been set.
func (s *SettingsService) Get(key string) (string, error) {
	var setting models.Setting
	if err := s.db.First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, nil
}

func (s *SettingsService) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) All() (map[string]string, error) {
	var settings []models.Setting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

func (s *SettingsService) getOrDefault(key, fallback string) string {
	v, err := s.Get(key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

func (s *SettingsService) Theme() string {
	return s.getOrDefault(models.SettingTheme, "light")
}

func (s *SettingsService) Language() string {
	return s.getOrDefault(models.SettingLanguage, "zh-CN")
}

// StorageRoot returns the configured root, falling back to the data dir.
func (s *SettingsService) StorageRoot() string {
	return s.getOrDefault(models.SettingStorageRoot, s.defaultRoot)
}

func (s *SettingsService) AutoWatermark() bool {
	return s.getOrDefault(models.SettingAutoWatermark, "false") == "true"
}

func (s *SettingsService) PreviewSize() (width, height int) {
	width, _ = strconv.Atoi(s.getOrDefault(models.SettingPreviewWidth, "360"))
	height, _ = strconv.Atoi(s.getOrDefault(models.SettingPreviewHeight, "480"))
	return width, height
}

// WatermarkStyle returns the stored default style; missing or unparsable
// values fall back to the built-in defaults.
func (s *SettingsService) WatermarkStyle() processor.Style {
	style := processor.DefaultStyle()
	raw, err := s.Get(models.SettingWatermarkStyle)
	if err != nil || raw == "" {
		return style
	}
	var stored processor.Style
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return style
	}
	return style.Merge(stored)
}

func (s *SettingsService) SetWatermarkStyle(style processor.Style) error {
	raw, err := json.Marshal(style)
	if err != nil {
		return fmt.Errorf("failed to encode watermark style: %w", err)
	}
	return s.Set(models.SettingWatermarkStyle, string(raw))
}

func (s *SettingsService) SignatureImage() (relPath string, height int) {
	relPath, _ = s.Get(models.SettingSignatureImage)
	height, _ = strconv.Atoi(s.getOrDefault(models.SettingSignatureHeight, "80"))
	return relPath, height
}

// MigrateStorageRoot moves the whole file tree to newRoot and records the new
// root pointer. Relative paths in the database stay valid as-is.
func (s *SettingsService) MigrateStorageRoot(newRoot string) error {
	if err := s.store.MigrateRoot(newRoot); err != nil {
		return err
	}
	return s.Set(models.SettingStorageRoot, s.store.Root())
}
