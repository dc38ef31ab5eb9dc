package models

import (
	"time"
)

// Template is a reusable definition of the document categories a
// reimbursement case must collect.
type Template struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`
	Creator     string    `json:"creator"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []TemplateItem `gorm:"foreignKey:TemplateID" json:"items,omitempty"`
}

// TemplateItem is one document category within a template. FileTypes holds
// allowed extensions without the leading dot; empty means any type.
type TemplateItem struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	TemplateID          string    `gorm:"not null;index" json:"template_id"`
	Name                string    `gorm:"not null" json:"name"`
	Description         string    `json:"description"`
	IsRequired          bool      `json:"is_required"`
	FileTypes           []string  `gorm:"serializer:json" json:"file_types"`
	NeedsWatermark      bool      `json:"needs_watermark"`
	WatermarkTemplate   string    `json:"watermark_template"`
	AllowsMultipleFiles bool      `json:"allows_multiple_files"`
	DisplayOrder        int       `json:"display_order"`
	Category            string    `json:"category"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
