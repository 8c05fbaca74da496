package service

import (
	"hospital-equipment-tracker/internal/models"
	"hospital-equipment-tracker/internal/repository"
)

type AuditService struct {
	auditRepo *repository.AuditRepository
}

func NewAuditService(auditRepo *repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// List returns audit entries newest first
func (s *AuditService) List(action string, q repository.ListQuery) (*Page[models.AuditLog], error) {
	logs, total, err := s.auditRepo.ListAuditLogs(action, q)
	if err != nil {
		return nil, err
	}
	return newPage(logs, total, q), nil
}
