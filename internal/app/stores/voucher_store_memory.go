package stores

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/pkg"
)

// MemoryVoucherStore keeps vouchers in a mutexed map. It implements the same
// compare-and-swap semantics as the Postgres store and backs the unit and
// concurrency tests.
type MemoryVoucherStore struct {
	mu       sync.Mutex
	vouchers map[uuid.UUID]*models.Voucher
}

func NewMemoryVoucherStore() *MemoryVoucherStore {
	return &MemoryVoucherStore{
		vouchers: make(map[uuid.UUID]*models.Voucher),
	}
}

func (s *MemoryVoucherStore) Create(ctx context.Context, voucher *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vouchers {
		if v.SpinID == voucher.SpinID {
			return ErrDuplicateSpin
		}
		if v.TenantID == voucher.TenantID && v.Code == voucher.Code {
			return ErrDuplicateCode
		}
	}

	if voucher.ID == uuid.Nil {
		voucher.ID = uuid.New()
	}
	if voucher.CreatedAt.IsZero() {
		voucher.CreatedAt = time.Now()
	}
	cp := *voucher
	s.vouchers[cp.ID] = &cp
	return nil
}

func (s *MemoryVoucherStore) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vouchers {
		if v.TenantID == tenantID && v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, ErrVoucherNotFound
}

func (s *MemoryVoucherStore) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) ([]models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Voucher
	for _, v := range s.vouchers {
		if v.TenantID != tenantID || v.Customer == nil {
			continue
		}
		if pkg.NormalizePhone(v.Customer.Phone) == pkg.NormalizePhone(phone) {
			out = append(out, *v)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryVoucherStore) List(ctx context.Context, tenantID uuid.UUID, filter models.VoucherFilter, now time.Time) ([]models.Voucher, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Voucher
	for _, v := range s.vouchers {
		if v.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && v.Status(now) != *filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(v, filter.Search) {
			continue
		}
		if filter.StartDate != nil && v.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && v.CreatedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, *v)
	}
	sortNewestFirst(matched)

	total := int64(len(matched))
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		if offset >= len(matched) {
			return []models.Voucher{}, total, nil
		}
		end := offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}
	return matched, total, nil
}

func matchesSearch(v *models.Voucher, search string) bool {
	if strings.Contains(v.Code, strings.ToUpper(search)) {
		return true
	}
	phone := pkg.NormalizePhone(search)
	return phone != "" && v.Customer != nil &&
		strings.Contains(pkg.NormalizePhone(v.Customer.Phone), phone)
}

func (s *MemoryVoucherStore) Stats(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.VoucherStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.VoucherStats{}
	for _, v := range s.vouchers {
		if v.TenantID != tenantID {
			continue
		}
		stats.Total++
		switch v.Status(now) {
		case models.VoucherStatusActive:
			stats.Active++
		case models.VoucherStatusRedeemed:
			stats.Redeemed++
		case models.VoucherStatusExpired:
			stats.Expired++
		}
	}
	return stats, nil
}

func (s *MemoryVoucherStore) Redeem(ctx context.Context, tenantID uuid.UUID, code string, merchantID uuid.UUID, now time.Time) (*models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vouchers {
		if v.TenantID != tenantID || v.Code != code {
			continue
		}
		// Same predicate as the SQL store, checked and applied under
		// one lock acquisition.
		if v.VoidedAt != nil || !v.ExpiresAt.After(now) || v.RedemptionCount >= v.RedemptionLimit {
			return nil, nil
		}
		v.RedemptionCount++
		v.IsRedeemed = v.RedemptionCount >= v.RedemptionLimit
		redeemedAt := now
		merchant := merchantID
		v.RedeemedAt = &redeemedAt
		v.RedeemedBy = &merchant
		v.UpdatedAt = now
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryVoucherStore) SetQRImageURL(ctx context.Context, voucherID uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.vouchers[voucherID]; ok {
		u := url
		v.QRImageURL = &u
	}
	return nil
}

func (s *MemoryVoucherStore) Void(ctx context.Context, tenantID uuid.UUID, voucherID uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vouchers[voucherID]
	if !ok || v.TenantID != tenantID || v.VoidedAt != nil {
		return false, nil
	}
	voidedAt := now
	v.VoidedAt = &voidedAt
	v.UpdatedAt = now
	return true, nil
}

func sortNewestFirst(vouchers []models.Voucher) {
	sort.SliceStable(vouchers, func(i, j int) bool {
		return vouchers[i].CreatedAt.After(vouchers[j].CreatedAt)
	})
}
