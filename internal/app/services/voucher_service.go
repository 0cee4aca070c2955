package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/pkg"
	"github.com/spinwin/promo-core/internal/app/stores"
	"github.com/spinwin/promo-core/internal/infrastructures"
)

const codeGenerationAttempts = 5

type VoucherService struct {
	store        stores.VoucherStore
	validator    *infrastructures.Validator
	notifier     *NotificationService
	qrService    *QRService
	auditService *AuditService
}

func NewVoucherService(store stores.VoucherStore, validator *infrastructures.Validator, notifier *NotificationService, qrService *QRService, auditService *AuditService) *VoucherService {
	return &VoucherService{
		store:        store,
		validator:    validator,
		notifier:     notifier,
		qrService:    qrService,
		auditService: auditService,
	}
}

// CreateFromSpin turns a winning spin into a voucher. A prize configured
// with zero validity days produces no voucher and no error. At most one
// voucher ever exists per spin.
func (s *VoucherService) CreateFromSpin(ctx context.Context, req *models.VoucherCreateRequest) (*models.Voucher, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.ValidityDays <= 0 {
		return nil, nil
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid tenant ID format")
	}
	spinID, err := uuid.Parse(req.SpinID)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid spin ID format")
	}
	prizeID, err := uuid.Parse(req.PrizeID)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid prize ID format")
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid customer ID format")
	}

	now := time.Now()
	voucher := &models.Voucher{
		TenantID:        tenantID,
		SpinID:          spinID,
		PrizeID:         prizeID,
		CustomerID:      customerID,
		ExpiresAt:       now.AddDate(0, 0, req.ValidityDays),
		RedemptionLimit: req.RedemptionLimit,
	}

	// A collision in the 36^12 keyspace is close to impossible, but the
	// unique index is the source of truth, so retry a bounded number of
	// times rather than assume.
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := pkg.GenerateCode(req.TenantSlug)
		if err != nil {
			return nil, appErrors.NewInternalServerError(err, "Failed to generate voucher code")
		}
		voucher.Code = code

		err = s.store.Create(ctx, voucher)
		if errors.Is(err, stores.ErrDuplicateCode) {
			continue
		}
		if errors.Is(err, stores.ErrDuplicateSpin) {
			return nil, appErrors.NewConflictError("Voucher already exists for this spin")
		}
		if err != nil {
			return nil, appErrors.NewInternalServerError(err, "Failed to create voucher")
		}

		if s.auditService != nil {
			go s.auditService.Record(tenantID, voucher.ID, models.AuditActionCreate, nil, map[string]interface{}{
				"code":    voucher.Code,
				"spin_id": voucher.SpinID,
			})
		}
		if s.notifier != nil {
			go s.notifier.NotifyCreated(voucher)
		}
		if s.qrService != nil && req.GenerateQR {
			s.qrService.Dispatch(voucher.ID, voucher.Code)
		}

		return voucher, nil
	}

	return nil, appErrors.NewInternalServerError(
		errors.New("voucher code space exhausted"),
		"Failed to generate a unique voucher code",
	)
}

// VoidVoucher is the administrative kill switch. Terminal: a voided voucher
// never validates or redeems again.
func (s *VoucherService) VoidVoucher(ctx context.Context, tenantID uuid.UUID, voucherID uuid.UUID, actor *uuid.UUID) error {
	voided, err := s.store.Void(ctx, tenantID, voucherID, time.Now())
	if err != nil {
		return appErrors.NewInternalServerError(err, "Failed to void voucher")
	}
	if !voided {
		return appErrors.NewNotFoundError("Voucher not found or already void")
	}

	if s.auditService != nil {
		go s.auditService.Record(tenantID, voucherID, models.AuditActionVoid, actor, nil)
	}
	return nil
}
