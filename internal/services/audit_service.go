package services

import (
	"context"

	"github.com/toroprop/toro-api/internal/jobs"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/pkg/logger"
	"gorm.io/gorm"
)

type AuditService struct {
	db     *gorm.DB
	worker *jobs.Worker
}

func NewAuditService(db *gorm.DB, worker *jobs.Worker) *AuditService {
	return &AuditService{db: db, worker: worker}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, action, entity string, entityID uint, details, ip, userAgent string) error {
	logEntry := &models.AuditLog{
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// LogAsync records an audit entry through the worker queue so request
// handling does not wait on the write.
func (s *AuditService) LogAsync(action, entity string, entityID uint, details, ip, userAgent string) {
	s.worker.Enqueue(func(ctx context.Context) error {
		if err := s.Log(ctx, action, entity, entityID, details, ip, userAgent); err != nil {
			logger.Error("Failed to write audit entry", "entity", entity, "action", action, "error", err)
			return err
		}
		return nil
	})
}

// List retrieves audit logs, newest first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
