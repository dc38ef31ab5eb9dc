package services

import (
	"fmt"
	"time"

	"reimdesk/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ActivityLogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewActivityLogService(db *gorm.DB, log *zap.Logger) *ActivityLogService {
	return &ActivityLogService{db: db, log: log}
}

// Record stores one handled request. Failures never block the request.
func (s *ActivityLogService) Record(method, path, clientIP string, statusCode int, duration time.Duration) {
	entry := &models.ActivityLog{
		ID:           uuid.New().String(),
		Method:       method,
		Path:         path,
		IPAddress:    clientIP,
		StatusCode:   statusCode,
		ResponseTime: duration.Milliseconds(),
		CreatedAt:    time.Now(),
	}
	if err := s.db.Create(entry).Error; err != nil {
		s.log.Warn("failed to save activity log", zap.Error(err))
	}
}

// List returns the most recent entries, optionally filtered by method or path
// substring.
func (s *ActivityLogService) List(limit, offset int, method, path string) ([]models.ActivityLog, int64, error) {
	query := s.db.Model(&models.ActivityLog{})
	if method != "" {
		query = query.Where("method = ?", method)
	}
	if path != "" {
		query = query.Where("path LIKE ?", "%"+path+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count logs: %w", err)
	}

	var logs []models.ActivityLog
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list logs: %w", err)
	}
	return logs, total, nil
}
