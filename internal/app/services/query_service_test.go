package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVouchers(t *testing.T, store *stores.MemoryVoucherStore, tenantID uuid.UUID) (active, redeemed, expired *models.Voucher) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	active = newTestVoucher(tenantID, now.Add(48*time.Hour), 0, 1)
	active.Code = "LUCK-ACTIVE000001"
	active.CreatedAt = now.Add(-1 * time.Hour)
	require.NoError(t, store.Create(ctx, active))

	redeemed = newTestVoucher(tenantID, now.Add(48*time.Hour), 1, 1)
	redeemed.Code = "LUCK-REDEEMED0001"
	redeemed.SpinID = uuid.New()
	redeemedAt := now.Add(-30 * time.Minute)
	redeemed.RedeemedAt = &redeemedAt
	redeemed.CreatedAt = now.Add(-2 * time.Hour)
	require.NoError(t, store.Create(ctx, redeemed))

	expired = newTestVoucher(tenantID, now.Add(-24*time.Hour), 0, 1)
	expired.Code = "LUCK-EXPIRED00001"
	expired.SpinID = uuid.New()
	expired.CreatedAt = now.Add(-3 * time.Hour)
	require.NoError(t, store.Create(ctx, expired))

	return active, redeemed, expired
}

func TestGetVouchers(t *testing.T) {
	store := stores.NewMemoryVoucherStore()
	svc := NewQueryService(store, nil)
	ctx := context.Background()
	tenantID := uuid.New()

	seedVouchers(t, store, tenantID)

	t.Run("lists newest first with computed status", func(t *testing.T) {
		page, err := svc.GetVouchers(ctx, tenantID, models.VoucherFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalItems)
		require.Len(t, page.Items, 3)
		assert.Equal(t, "LUCK-ACTIVE000001", page.Items[0].Code)
		assert.Equal(t, models.VoucherStatusActive, page.Items[0].Status)
		assert.Equal(t, models.VoucherStatusRedeemed, page.Items[1].Status)
		assert.Equal(t, models.VoucherStatusExpired, page.Items[2].Status)
	})

	t.Run("filters by computed status", func(t *testing.T) {
		status := models.VoucherStatusExpired
		page, err := svc.GetVouchers(ctx, tenantID, models.VoucherFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "LUCK-EXPIRED00001", page.Items[0].Code)
	})

	t.Run("searches by code substring", func(t *testing.T) {
		page, err := svc.GetVouchers(ctx, tenantID, models.VoucherFilter{Search: "REDEEMED"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "LUCK-REDEEMED0001", page.Items[0].Code)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := svc.GetVouchers(ctx, tenantID, models.VoucherFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalItems)
		assert.Equal(t, 2, page.TotalPages)
		assert.True(t, page.HasPrev)
		assert.False(t, page.HasNext)
		require.Len(t, page.Items, 1)
	})

	t.Run("other tenants see nothing", func(t *testing.T) {
		page, err := svc.GetVouchers(ctx, uuid.New(), models.VoucherFilter{})
		require.NoError(t, err)
		assert.Equal(t, 0, page.TotalItems)
		assert.Empty(t, page.Items)
	})
}

func TestGetVoucherStats(t *testing.T) {
	store := stores.NewMemoryVoucherStore()
	svc := NewQueryService(store, nil)
	tenantID := uuid.New()

	seedVouchers(t, store, tenantID)

	stats, err := svc.GetVoucherStats(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Active)
	assert.Equal(t, int64(1), stats.Redeemed)
	assert.Equal(t, int64(1), stats.Expired)
}

func TestGetVouchersByPhone(t *testing.T) {
	store := stores.NewMemoryVoucherStore()
	svc := NewQueryService(store, nil)
	ctx := context.Background()
	tenantID := uuid.New()

	seedVouchers(t, store, tenantID)

	t.Run("returns matches newest first", func(t *testing.T) {
		vouchers, err := svc.GetVouchersByPhone(ctx, "+62 812-3456-789", tenantID)
		require.NoError(t, err)
		require.Len(t, vouchers, 3)
		for i := 1; i < len(vouchers); i++ {
			assert.False(t, vouchers[i-1].CreatedAt.Before(vouchers[i].CreatedAt))
		}
	})

	t.Run("empty phone is an empty list", func(t *testing.T) {
		vouchers, err := svc.GetVouchersByPhone(ctx, "", tenantID)
		require.NoError(t, err)
		assert.Empty(t, vouchers)
	})

	t.Run("unknown phone is an empty list", func(t *testing.T) {
		vouchers, err := svc.GetVouchersByPhone(ctx, "+620000000000", tenantID)
		require.NoError(t, err)
		assert.Empty(t, vouchers)
	})
}

func TestExportVouchers(t *testing.T) {
	store := stores.NewMemoryVoucherStore()
	svc := NewQueryService(store, nil)
	tenantID := uuid.New()

	seedVouchers(t, store, tenantID)

	data, err := svc.ExportVouchers(context.Background(), tenantID, models.VoucherFilter{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"Code", "Customer Name", "Customer Phone", "Prize", "Status", "Created", "Expires", "Redeemed At"}, records[0])

	first := records[1]
	assert.Equal(t, "LUCK-ACTIVE000001", first[0])
	assert.Equal(t, "Ana Putri", first[1])
	assert.Equal(t, "+628123456789", first[2])
	assert.Equal(t, "Free Drink", first[3])
	assert.Equal(t, "ACTIVE", first[4])
	assert.Empty(t, first[7])

	second := records[2]
	assert.Equal(t, "REDEEMED", second[4])
	assert.NotEmpty(t, second[7])
}
