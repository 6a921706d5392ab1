package repository

import (
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(entry *model.AuditLog) error
	FindRecent(limit, offset int) ([]model.AuditLog, int64, error)
	FindByUser(userID uint, limit int) ([]model.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(entry *model.AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to create audit log entry", err, map[string]interface{}{
			"action": entry.Action,
		})
		return err
	}
	return nil
}

func (r *auditLogRepository) FindRecent(limit, offset int) ([]model.AuditLog, int64, error) {
	var total int64
	if err := r.db.Model(&model.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []model.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		logger.Error("Failed to find audit log entries", err, nil)
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *auditLogRepository) FindByUser(userID uint, limit int) ([]model.AuditLog, error) {
	query := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []model.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		logger.Error("Failed to find user audit log entries", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return entries, nil
}
