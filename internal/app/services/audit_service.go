package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spinwin/promo-core/internal/app/models"
	"gorm.io/gorm"
)

// AuditService writes one row per voucher lifecycle event. Callers invoke it
// fire-and-forget; a failed audit write is logged and never fails the
// operation it describes.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(tenantID uuid.UUID, voucherID uuid.UUID, action models.AuditAction, actor *uuid.UUID, detail map[string]interface{}) {
	entry := &models.AuditLog{
		TenantID:  tenantID,
		VoucherID: voucherID,
		Action:    action,
		Actor:     actor,
	}

	if detail != nil {
		payload, err := json.Marshal(detail)
		if err != nil {
			logrus.Errorf("audit detail marshal failed: %v", err)
		} else {
			str := string(payload)
			entry.Detail = &str
		}
	}

	if err := s.db.Create(entry).Error; err != nil {
		logrus.Errorf("audit write failed for voucher %s: %v", voucherID, err)
	}
}
