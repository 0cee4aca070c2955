package stores

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/pkg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVoucherStore persists vouchers in Postgres. Redemption relies on the
// row-level atomicity of a single conditional UPDATE.
type GormVoucherStore struct {
	db *gorm.DB
}

func NewGormVoucherStore(db *gorm.DB) *GormVoucherStore {
	return &GormVoucherStore{db: db}
}

func (s *GormVoucherStore) Create(ctx context.Context, voucher *models.Voucher) error {
	err := s.db.WithContext(ctx).Create(voucher).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The spin unique index and the (tenant_id, code) index both
		// translate to ErrDuplicatedKey; tell them apart for the caller.
		var existing models.Voucher
		lookupErr := s.db.WithContext(ctx).
			Select("id").
			Where("spin_id = ?", voucher.SpinID).
			First(&existing).Error
		if lookupErr == nil {
			return ErrDuplicateSpin
		}
		return ErrDuplicateCode
	}
	return err
}

func (s *GormVoucherStore) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := s.db.WithContext(ctx).
		Preload("Prize").
		Preload("Customer").
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return &voucher, nil
}

func (s *GormVoucherStore) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	err := s.db.WithContext(ctx).
		Preload("Prize").
		Preload("Customer").
		Joins("JOIN customers ON customers.id = vouchers.customer_id").
		Where("vouchers.tenant_id = ? AND customers.phone = ?", tenantID, phone).
		Order("vouchers.created_at DESC").
		Find(&vouchers).Error
	if err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (s *GormVoucherStore) List(ctx context.Context, tenantID uuid.UUID, filter models.VoucherFilter, now time.Time) ([]models.Voucher, int64, error) {
	var totalItems int64
	if err := s.listQuery(ctx, tenantID, filter, now).Count(&totalItems).Error; err != nil {
		return nil, 0, err
	}

	var vouchers []models.Voucher
	query := s.listQuery(ctx, tenantID, filter, now).
		Preload("Prize").
		Preload("Customer").
		Order("vouchers.created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.Limit)
		}
	}
	if err := query.Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}

	return vouchers, totalItems, nil
}

func (s *GormVoucherStore) listQuery(ctx context.Context, tenantID uuid.UUID, filter models.VoucherFilter, now time.Time) *gorm.DB {
	q := s.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("vouchers.tenant_id = ?", tenantID)

	if filter.Search != "" {
		search := "%" + strings.ToUpper(filter.Search) + "%"
		phone := "%" + pkg.NormalizePhone(filter.Search) + "%"
		q = q.
			Joins("LEFT JOIN customers ON customers.id = vouchers.customer_id").
			Where("vouchers.code LIKE ? OR customers.phone LIKE ?", search, phone)
	}

	if filter.Status != nil {
		q = applyStatusPredicate(q, *filter.Status, now)
	}
	if filter.StartDate != nil {
		q = q.Where("vouchers.created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("vouchers.created_at <= ?", *filter.EndDate)
	}
	return q
}

// applyStatusPredicate expresses the derived status as SQL so filtering and
// the Status() helper can never disagree.
func applyStatusPredicate(q *gorm.DB, status models.VoucherStatus, now time.Time) *gorm.DB {
	switch status {
	case models.VoucherStatusRedeemed:
		return q.Where("vouchers.voided_at IS NULL AND vouchers.redemption_count >= vouchers.redemption_limit")
	case models.VoucherStatusExpired:
		return q.Where("vouchers.voided_at IS NULL AND vouchers.expires_at <= ? AND vouchers.redemption_count < vouchers.redemption_limit", now)
	case models.VoucherStatusVoid:
		return q.Where("vouchers.voided_at IS NOT NULL")
	default:
		return q.Where("vouchers.voided_at IS NULL AND vouchers.expires_at > ? AND vouchers.redemption_count < vouchers.redemption_limit", now)
	}
}

func (s *GormVoucherStore) Stats(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.VoucherStats, error) {
	stats := &models.VoucherStats{}

	type row struct {
		Total    int64
		Active   int64
		Redeemed int64
		Expired  int64
	}
	var r row
	err := s.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE voided_at IS NULL AND expires_at > ? AND redemption_count < redemption_limit) AS active,
			COUNT(*) FILTER (WHERE voided_at IS NULL AND redemption_count >= redemption_limit) AS redeemed,
			COUNT(*) FILTER (WHERE voided_at IS NULL AND expires_at <= ? AND redemption_count < redemption_limit) AS expired`,
			now, now).
		Where("tenant_id = ?", tenantID).
		Scan(&r).Error
	if err != nil {
		return nil, err
	}

	stats.Total = r.Total
	stats.Active = r.Active
	stats.Redeemed = r.Redeemed
	stats.Expired = r.Expired
	return stats, nil
}

func (s *GormVoucherStore) Redeem(ctx context.Context, tenantID uuid.UUID, code string, merchantID uuid.UUID, now time.Time) (*models.Voucher, error) {
	var updated []models.Voucher

	// One conditional UPDATE. All SET expressions read the pre-update row,
	// so is_redeemed compares the incremented count against the limit
	// without a second statement. Postgres row locking makes concurrent
	// attempts on the same code serialize here; losers match zero rows.
	res := s.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("tenant_id = ? AND code = ? AND voided_at IS NULL AND expires_at > ? AND redemption_count < redemption_limit",
			tenantID, code, now).
		Updates(map[string]interface{}{
			"redemption_count": gorm.Expr("redemption_count + 1"),
			"is_redeemed":      gorm.Expr("redemption_count + 1 >= redemption_limit"),
			"redeemed_at":      now,
			"redeemed_by":      merchantID,
			"updated_at":       now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(updated) == 0 {
		return nil, nil
	}
	return &updated[0], nil
}

func (s *GormVoucherStore) SetQRImageURL(ctx context.Context, voucherID uuid.UUID, url string) error {
	return s.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ?", voucherID).
		Update("qr_image_url", url).Error
}

func (s *GormVoucherStore) Void(ctx context.Context, tenantID uuid.UUID, voucherID uuid.UUID, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("tenant_id = ? AND id = ? AND voided_at IS NULL", tenantID, voucherID).
		Updates(map[string]interface{}{
			"voided_at":  now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
