package models

import (
	"time"

	"github.com/google/uuid"
)

// MerchantKey authenticates a merchant device against one tenant.
type MerchantKey struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID  uuid.UUID  `gorm:"type:uuid;index" json:"tenant_id"`
	Label     string     `json:"label"`
	Key       string     `gorm:"uniqueIndex" json:"key"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (k *MerchantKey) IsActive() bool {
	return k.RevokedAt == nil
}

type MerchantKeyCreateRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
	Label    string `json:"label" validate:"required,max=100"`
}
