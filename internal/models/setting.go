package models

import (
	"time"
)

// Setting is one key/value pair; typed interpretation of known keys lives in
// the settings service.
type Setting struct {
	Key       string    `gorm:"primaryKey;column:key" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Known setting keys.
const (
	SettingTheme           = "theme"
	SettingLanguage        = "language"
	SettingStorageRoot     = "storage_root"
	SettingPreviewWidth    = "preview_width"
	SettingPreviewHeight   = "preview_height"
	SettingAutoWatermark   = "auto_watermark"
	SettingWatermarkStyle  = "watermark_style"
	SettingSignatureImage  = "signature_image"
	SettingSignatureHeight = "signature_height"
)
