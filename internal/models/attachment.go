package models

import (
	"time"
)

// Attachment is one uploaded file belonging to a project item. FilePath and
// WatermarkedPath are always relative to the configurable storage root so the
// root can be migrated without rewriting rows.
type Attachment struct {
	ID              string            `gorm:"primaryKey" json:"id"`
	ProjectItemID   string            `gorm:"not null;index" json:"project_item_id"`
	FileName        string            `gorm:"not null" json:"file_name"` // stored name under original/
	OriginalName    string            `json:"original_name"`
	FilePath        string            `gorm:"not null" json:"file_path"`
	FileExt         string            `json:"file_ext"`
	FileSize        int64             `json:"file_size"`
	HasWatermark    bool              `json:"has_watermark"`
	WatermarkedPath string            `json:"watermarked_path"`
	Metadata        map[string]string `gorm:"serializer:json" json:"metadata"`
	UploadedAt      time.Time         `json:"uploaded_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
