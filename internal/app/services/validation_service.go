package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/stores"
)

// ValidationService classifies a voucher's current usability. Classify is a
// pure function of its inputs; the same classification backs the merchant
// "check code" endpoint, redemption failure diagnostics and listing status.
type ValidationService struct {
	store stores.VoucherStore
}

func NewValidationService(store stores.VoucherStore) *ValidationService {
	return &ValidationService{store: store}
}

// Classify decides whether the voucher snapshot is redeemable right now.
// First match wins:
//  1. no voucher -> not_found
//  2. foreign tenant -> wrong_tenant, with no detail about the voucher
//  3. administratively voided -> void
//  4. past expiry with capacity left -> expired
//  5. capacity exhausted -> limit_reached
//  6. otherwise valid, with the customer-facing snapshot
func (s *ValidationService) Classify(voucher *models.Voucher, tenantID uuid.UUID, now time.Time) *models.ValidationResult {
	if voucher == nil {
		return &models.ValidationResult{Valid: false, Reason: models.ReasonNotFound}
	}
	if voucher.TenantID != tenantID {
		return &models.ValidationResult{Valid: false, Reason: models.ReasonWrongTenant}
	}
	if voucher.VoidedAt != nil {
		return &models.ValidationResult{Valid: false, Reason: models.ReasonVoid}
	}
	if now.After(voucher.ExpiresAt) && voucher.RedemptionCount < voucher.RedemptionLimit {
		expiresAt := voucher.ExpiresAt
		return &models.ValidationResult{Valid: false, Reason: models.ReasonExpired, ExpiresAt: &expiresAt}
	}
	if voucher.RedemptionCount >= voucher.RedemptionLimit {
		return &models.ValidationResult{Valid: false, Reason: models.ReasonLimitReached, RedeemedAt: voucher.RedeemedAt}
	}
	return &models.ValidationResult{Valid: true, Voucher: snapshotOf(voucher)}
}

// CheckCode looks the code up for the tenant and classifies it. The lookup
// itself is tenant-scoped, so a code belonging to another tenant comes back
// as not_found and nothing about the foreign voucher leaves this tenant.
func (s *ValidationService) CheckCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.ValidationResult, error) {
	voucher, err := s.store.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, stores.ErrVoucherNotFound) {
			return s.Classify(nil, tenantID, time.Now()), nil
		}
		return nil, appErrors.NewInternalServerError(err, "Failed to look up voucher")
	}
	return s.Classify(voucher, tenantID, time.Now()), nil
}

func snapshotOf(voucher *models.Voucher) *models.VoucherView {
	view := &models.VoucherView{
		Code:            voucher.Code,
		ExpiresAt:       voucher.ExpiresAt,
		RedemptionCount: voucher.RedemptionCount,
		RedemptionLimit: voucher.RedemptionLimit,
	}
	if voucher.Prize != nil {
		view.PrizeName = voucher.Prize.Name
		view.PrizeDescription = voucher.Prize.Description
	}
	if voucher.Customer != nil {
		view.CustomerName = voucher.Customer.Name
		view.CustomerPhone = voucher.Customer.Phone
	}
	return view
}
