package service

import (
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// Audit action names.
const (
	AuditActionRegister      = "user.register"
	AuditActionLogin         = "user.login"
	AuditActionLoginFailed   = "user.login_failed"
	AuditActionLogout        = "user.logout"
	AuditActionCheckout      = "order.checkout"
	AuditActionOrderStatus   = "order.status_change"
	AuditActionProductCreate = "product.create"
	AuditActionProductUpdate = "product.update"
	AuditActionProductDelete = "product.delete"
	AuditActionCouponCreate  = "coupon.create"
	AuditActionCouponToggle  = "coupon.toggle"
)

type AuditService interface {
	// Log records an action without failing the caller: persistence
	// errors are logged and swallowed.
	Log(userID *uint, action, details string)
	ListRecent(limit, offset int) ([]model.AuditLog, int64, error)
	ListByUser(userID uint, limit int) ([]model.AuditLog, error)
}

type auditService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditService(auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Log(userID *uint, action, details string) {
	entry := model.NewAuditLog(userID, action, details)
	if err := s.auditRepo.Create(entry); err != nil {
		logger.Error("Failed to record audit entry", err, map[string]interface{}{
			"action": action,
		})
	}
}

func (s *auditService) ListRecent(limit, offset int) ([]model.AuditLog, int64, error) {
	return s.auditRepo.FindRecent(limit, offset)
}

func (s *auditService) ListByUser(userID uint, limit int) ([]model.AuditLog, error) {
	return s.auditRepo.FindByUser(userID, limit)
}
