package models

import (
	"time"
)

// ActivityLog records one handled API request for the debug panel.
type ActivityLog struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Method       string    `gorm:"type:varchar(10);not null" json:"method"`
	Path         string    `gorm:"type:varchar(255);not null" json:"path"`
	IPAddress    string    `gorm:"type:varchar(45)" json:"ip_address"`
	StatusCode   int       `gorm:"not null" json:"status_code"`
	ResponseTime int64     `gorm:"not null" json:"response_time"` // milliseconds
	CreatedAt    time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
