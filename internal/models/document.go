package models

import (
	"time"
)

// DocumentTemplate is free-form HTML boilerplate (cover letters, approval
// sheets) independent of the template/project hierarchy.
type DocumentTemplate struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Content   string    `gorm:"type:text" json:"content"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectDocument is an HTML document attached to exactly one project,
// optionally rendered to a PDF under the project's storage directory.
type ProjectDocument struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ProjectID string    `gorm:"not null;index" json:"project_id"`
	Name      string    `gorm:"not null" json:"name"`
	Content   string    `gorm:"type:text" json:"content"`
	PDFPath   string    `json:"pdf_path"` // relative to the storage root
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
