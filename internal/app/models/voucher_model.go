package models

import (
	"time"

	"github.com/google/uuid"
)

type VoucherStatus string

const (
	VoucherStatusActive   VoucherStatus = "ACTIVE"
	VoucherStatusRedeemed VoucherStatus = "REDEEMED"
	VoucherStatusExpired  VoucherStatus = "EXPIRED"
	VoucherStatusVoid     VoucherStatus = "VOID"
)

// Voucher is the redeemable unit created for one winning spin. Codes are
// unique per tenant, not globally; every read and write is tenant-scoped.
type Voucher struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code            string     `gorm:"uniqueIndex:idx_vouchers_tenant_code" json:"code"`
	TenantID        uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_vouchers_tenant_code" json:"tenant_id"`
	SpinID          uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"spin_id"`
	PrizeID         uuid.UUID  `gorm:"type:uuid" json:"prize_id"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;index" json:"customer_id"`
	ExpiresAt       time.Time  `json:"expires_at"`
	RedemptionLimit int        `json:"redemption_limit"`
	RedemptionCount int        `json:"redemption_count"`
	IsRedeemed      bool       `json:"is_redeemed"`
	RedeemedAt      *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy      *uuid.UUID `gorm:"type:uuid" json:"redeemed_by,omitempty"`
	QRImageURL      *string    `json:"qr_image_url,omitempty"`
	VoidedAt        *time.Time `json:"voided_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Prize    *Prize    `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// Status is always derived from the row and the clock. Expiry depends on
// wall-clock time, so a stored status would go stale the moment it was written.
func (v *Voucher) Status(now time.Time) VoucherStatus {
	if v.VoidedAt != nil {
		return VoucherStatusVoid
	}
	if v.RedemptionCount >= v.RedemptionLimit {
		return VoucherStatusRedeemed
	}
	if now.After(v.ExpiresAt) {
		return VoucherStatusExpired
	}
	return VoucherStatusActive
}

type VoucherCreateRequest struct {
	SpinID          string `json:"spin_id" validate:"required,uuid"`
	PrizeID         string `json:"prize_id" validate:"required,uuid"`
	CustomerID      string `json:"customer_id" validate:"required,uuid"`
	TenantID        string `json:"tenant_id" validate:"required,uuid"`
	TenantSlug      string `json:"tenant_slug" validate:"required,max=50"`
	ValidityDays    int    `json:"validity_days" validate:"min=0"`
	RedemptionLimit int    `json:"redemption_limit" validate:"min=1"`
	GenerateQR      bool   `json:"generate_qr"`
}

type ValidationReason string

const (
	ReasonNotFound     ValidationReason = "not_found"
	ReasonWrongTenant  ValidationReason = "wrong_tenant"
	ReasonExpired      ValidationReason = "expired"
	ReasonLimitReached ValidationReason = "limit_reached"
	ReasonVoid         ValidationReason = "void"
)

// VoucherView is the customer-facing snapshot returned for a valid voucher.
type VoucherView struct {
	Code             string    `json:"code"`
	PrizeName        string    `json:"prize_name"`
	PrizeDescription *string   `json:"prize_description,omitempty"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	ExpiresAt        time.Time `json:"expires_at"`
	RedemptionCount  int       `json:"redemption_count"`
	RedemptionLimit  int       `json:"redemption_limit"`
}

type ValidationResult struct {
	Valid      bool             `json:"valid"`
	Reason     ValidationReason `json:"reason,omitempty"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	RedeemedAt *time.Time       `json:"redeemed_at,omitempty"`
	Voucher    *VoucherView     `json:"voucher,omitempty"`
}

type RedemptionResult struct {
	Success    bool             `json:"success"`
	Reason     ValidationReason `json:"reason,omitempty"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	RedeemedAt *time.Time       `json:"redeemed_at,omitempty"`
	Voucher    *Voucher         `json:"voucher,omitempty"`
}

type VoucherFilter struct {
	Status    *VoucherStatus
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// VoucherWithStatus decorates a voucher row with its derived status for
// listings and lookups.
type VoucherWithStatus struct {
	Voucher
	Status VoucherStatus `json:"status"`
}

type VoucherStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Redeemed int64 `json:"redeemed"`
	Expired  int64 `json:"expired"`
}
