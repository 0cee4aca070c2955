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

// RedemptionService performs the one state transition that must be safe under
// concurrent merchant devices: incrementing a voucher's redemption count.
//
// It never reads first and writes second. The store's Redeem primitive checks
// tenant, expiry and remaining capacity inside the same atomic update, so
// with limit N and more than N concurrent attempts exactly N succeed no
// matter how the callers interleave.
type RedemptionService struct {
	store             stores.VoucherStore
	validationService *ValidationService
	notifier          *NotificationService
	auditService      *AuditService
}

func NewRedemptionService(store stores.VoucherStore, validationService *ValidationService, notifier *NotificationService, auditService *AuditService) *RedemptionService {
	return &RedemptionService{
		store:             store,
		validationService: validationService,
		notifier:          notifier,
		auditService:      auditService,
	}
}

// Redeem attempts one redemption of the code on behalf of a merchant.
// Business failures (not found, expired, limit reached, void) come back as
// a RedemptionResult with Success=false, never as an error; an error means
// the store itself failed.
//
// A caller that times out and retries after the update committed will see
// limit_reached on the retry. There is no idempotency key in this design.
func (s *RedemptionService) Redeem(ctx context.Context, code string, merchantID uuid.UUID, tenantID uuid.UUID) (*models.RedemptionResult, error) {
	now := time.Now()

	updated, err := s.store.Redeem(ctx, tenantID, code, merchantID, now)
	if err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to redeem voucher")
	}

	if updated == nil {
		return s.diagnoseFailure(ctx, tenantID, code, now)
	}

	if s.auditService != nil {
		go s.auditService.Record(tenantID, updated.ID, models.AuditActionRedeem, &merchantID, map[string]interface{}{
			"code":             updated.Code,
			"redemption_count": updated.RedemptionCount,
			"redemption_limit": updated.RedemptionLimit,
		})
	}
	if s.notifier != nil {
		go s.notifier.NotifyRedeemed(updated)
	}

	return &models.RedemptionResult{
		Success: true,
		Voucher: updated,
	}, nil
}

// diagnoseFailure re-reads the voucher to name the reason the conditional
// update matched nothing. The read is advisory: correctness was already
// settled by the update.
func (s *RedemptionService) diagnoseFailure(ctx context.Context, tenantID uuid.UUID, code string, now time.Time) (*models.RedemptionResult, error) {
	voucher, err := s.store.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, stores.ErrVoucherNotFound) {
			return &models.RedemptionResult{Success: false, Reason: models.ReasonNotFound}, nil
		}
		return nil, appErrors.NewInternalServerError(err, "Failed to redeem voucher")
	}

	result := s.validationService.Classify(voucher, tenantID, now)
	if result.Valid {
		// The row can only lose redeemability over time, so a snapshot
		// that classifies valid after a failed update means the store
		// and the diagnostic read disagree.
		return nil, appErrors.NewInternalServerError(
			errors.New("voucher state changed during redemption"),
			"Failed to redeem voucher",
		)
	}

	return &models.RedemptionResult{
		Success:    false,
		Reason:     result.Reason,
		ExpiresAt:  result.ExpiresAt,
		RedeemedAt: result.RedeemedAt,
	}, nil
}
