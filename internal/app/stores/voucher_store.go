package stores

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spinwin/promo-core/internal/app/models"
)

var (
	ErrVoucherNotFound = errors.New("voucher not found")
	ErrDuplicateCode   = errors.New("voucher code already exists for tenant")
	ErrDuplicateSpin   = errors.New("voucher already exists for spin")
)

// VoucherStore is the persistence boundary for vouchers. Every method is
// tenant-scoped: no lookup or mutation may locate a voucher by code alone.
//
// Redeem is the concurrency-critical primitive. It must apply the
// check-and-increment as one indivisible operation against concurrent
// callers on the same row; callers never pre-check in application code.
type VoucherStore interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Voucher, error)
	FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) ([]models.Voucher, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.VoucherFilter, now time.Time) ([]models.Voucher, int64, error)
	Stats(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.VoucherStats, error)

	// Redeem increments redemption_count by one and stamps the redeemer,
	// but only where tenant, code, non-void, unexpired and remaining
	// capacity all hold in the same predicate. Returns the updated row,
	// or nil when the predicate matched nothing.
	Redeem(ctx context.Context, tenantID uuid.UUID, code string, merchantID uuid.UUID, now time.Time) (*models.Voucher, error)

	SetQRImageURL(ctx context.Context, voucherID uuid.UUID, url string) error

	// Void marks a voucher terminally unusable. Reports false when the
	// voucher does not exist for the tenant or is already void.
	Void(ctx context.Context, tenantID uuid.UUID, voucherID uuid.UUID, now time.Time) (bool, error)
}
