package models

import (
	"time"
)

const (
	ProjectStatusIncomplete = "incomplete"
	ProjectStatusComplete   = "complete"
	ProjectStatusExported   = "exported"
)

const (
	ItemStatusPending     = "pending"
	ItemStatusUploaded    = "uploaded"
	ItemStatusWatermarked = "watermarked"
	ItemStatusApproved    = "approved"
)

// Project is a concrete reimbursement case created by snapshotting a
// template's items. Status transitions are caller-driven; only the export
// operation sets "exported" on its own.
type Project struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	TemplateID string         `gorm:"not null;index" json:"template_id"`
	Name       string         `gorm:"not null" json:"name"`
	Creator    string         `json:"creator"`
	Status     string         `gorm:"default:'incomplete'" json:"status"`
	Metadata   map[string]any `gorm:"serializer:json" json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	Items []ProjectItem `gorm:"foreignKey:ProjectID" json:"items,omitempty"`
}

// ProjectItem is the per-project instance of a template item. Exactly one
// exists per template item present at project creation; later template edits
// do not add or remove project items.
type ProjectItem struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	ProjectID      string     `gorm:"not null;index" json:"project_id"`
	TemplateItemID string     `gorm:"not null;index" json:"template_item_id"`
	Status         string     `gorm:"default:'pending'" json:"status"`
	Notes          string     `json:"notes"`
	UploadedAt     *time.Time `json:"uploaded_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	TemplateItem TemplateItem `gorm:"foreignKey:TemplateItemID" json:"template_item,omitempty"`
	Attachments  []Attachment `gorm:"foreignKey:ProjectItemID" json:"attachments,omitempty"`
}
