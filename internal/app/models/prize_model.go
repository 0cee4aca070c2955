package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Prize struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;index" json:"tenant_id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	Value           decimal.Decimal `gorm:"type:decimal(18,2)" json:"value"`
	ValidityDays    int             `json:"validity_days"`
	RedemptionLimit int             `json:"redemption_limit"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
