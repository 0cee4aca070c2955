package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/pkg"
	"github.com/spinwin/promo-core/internal/app/stores"
)

const (
	statsCacheTTL    = 30 * time.Second
	exportTimeLayout = "2006-01-02 15:04:05"
)

// QueryService serves dashboards and exports. Every status it reports is
// computed against the current clock, never read from a stored column.
type QueryService struct {
	store stores.VoucherStore
	redis *redis.Client
}

func NewQueryService(store stores.VoucherStore, redisClient *redis.Client) *QueryService {
	return &QueryService{
		store: store,
		redis: redisClient,
	}
}

func (s *QueryService) GetVouchers(ctx context.Context, tenantID uuid.UUID, filter models.VoucherFilter) (*models.Pagination[[]models.VoucherWithStatus], error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	now := time.Now()
	vouchers, totalItems, err := s.store.List(ctx, tenantID, filter, now)
	if err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to list vouchers")
	}

	items := withStatus(vouchers, now)
	totalPages := int((totalItems + int64(filter.Limit) - 1) / int64(filter.Limit))

	return &models.Pagination[[]models.VoucherWithStatus]{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    filter.Page < totalPages,
		HasPrev:    filter.Page > 1,
		Items:      items,
	}, nil
}

// GetVoucherStats counts the tenant's vouchers per derived status. Results
// are cached in redis for a short window; a cold or unreachable cache falls
// through to the store.
func (s *QueryService) GetVoucherStats(ctx context.Context, tenantID uuid.UUID) (*models.VoucherStats, error) {
	cacheKey := fmt.Sprintf("promo:voucher_stats:%s", tenantID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats models.VoucherStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.store.Stats(ctx, tenantID, time.Now())
	if err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to count vouchers")
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, statsCacheTTL).Err(); err != nil {
				logrus.Warnf("voucher stats cache write failed: %v", err)
			}
		}
	}

	return stats, nil
}

// GetVouchersByPhone returns the customer's vouchers, newest first. An empty
// phone or no matches is an empty list, not an error.
func (s *QueryService) GetVouchersByPhone(ctx context.Context, phone string, tenantID uuid.UUID) ([]models.VoucherWithStatus, error) {
	normalized := pkg.NormalizePhone(phone)
	if normalized == "" {
		return []models.VoucherWithStatus{}, nil
	}

	vouchers, err := s.store.FindByPhone(ctx, tenantID, normalized)
	if err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to look up vouchers by phone")
	}

	return withStatus(vouchers, time.Now()), nil
}

// ExportVouchers renders the same filtered set as GetVouchers, without
// pagination, as CSV.
func (s *QueryService) ExportVouchers(ctx context.Context, tenantID uuid.UUID, filter models.VoucherFilter) ([]byte, error) {
	filter.Page = 0
	filter.Limit = 0

	now := time.Now()
	vouchers, _, err := s.store.List(ctx, tenantID, filter, now)
	if err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to export vouchers")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Code", "Customer Name", "Customer Phone", "Prize", "Status", "Created", "Expires", "Redeemed At"}
	if err := w.Write(header); err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to export vouchers")
	}

	for i := range vouchers {
		v := &vouchers[i]
		record := []string{
			v.Code,
			customerName(v),
			customerPhone(v),
			prizeName(v),
			string(v.Status(now)),
			v.CreatedAt.Format(exportTimeLayout),
			v.ExpiresAt.Format(exportTimeLayout),
			formatOptionalTime(v.RedeemedAt),
		}
		if err := w.Write(record); err != nil {
			return nil, appErrors.NewInternalServerError(err, "Failed to export vouchers")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to export vouchers")
	}
	return buf.Bytes(), nil
}

func withStatus(vouchers []models.Voucher, now time.Time) []models.VoucherWithStatus {
	items := make([]models.VoucherWithStatus, 0, len(vouchers))
	for i := range vouchers {
		items = append(items, models.VoucherWithStatus{
			Voucher: vouchers[i],
			Status:  vouchers[i].Status(now),
		})
	}
	return items
}

func customerName(v *models.Voucher) string {
	if v.Customer == nil {
		return ""
	}
	return v.Customer.Name
}

func customerPhone(v *models.Voucher) string {
	if v.Customer == nil {
		return ""
	}
	return v.Customer.Phone
}

func prizeName(v *models.Voucher) string {
	if v.Prize == nil {
		return ""
	}
	return v.Prize.Name
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportTimeLayout)
}
