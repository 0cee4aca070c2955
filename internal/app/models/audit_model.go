package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionRedeem AuditAction = "REDEEM"
	AuditActionVoid   AuditAction = "VOID"
)

type AuditLog struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID  uuid.UUID   `gorm:"type:uuid;index" json:"tenant_id"`
	VoucherID uuid.UUID   `gorm:"type:uuid;index" json:"voucher_id"`
	Action    AuditAction `json:"action"`
	Actor     *uuid.UUID  `gorm:"type:uuid" json:"actor,omitempty"`
	Detail    *string     `json:"detail,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
