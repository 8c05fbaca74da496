package repository

import (
	"hospital-equipment-tracker/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(userID *uint, action string, details string) error {
	log := &models.AuditLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	return r.db.Create(log).Error
}

// ListAuditLogs returns the newest entries first, optionally filtered by action
func (r *AuditRepository) ListAuditLogs(action string, q ListQuery) ([]models.AuditLog, int64, error) {
	base := r.db.Model(&models.AuditLog{})
	if action != "" {
		base = base.Where("action = ?", action)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := applyPage(base.Order("created_at DESC").Order("id DESC"), q).Preload("User").Find(&logs).Error
	return logs, total, err
}
