package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newRedemptionFixture(t *testing.T) (*RedemptionService, *stores.MemoryVoucherStore) {
	t.Helper()
	store := stores.NewMemoryVoucherStore()
	return NewRedemptionService(store, NewValidationService(store), nil, nil), store
}

func TestRedeemSingleUse(t *testing.T) {
	svc, store := newRedemptionFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()
	merchantID := uuid.New()

	voucher := newTestVoucher(tenantID, time.Now().Add(48*time.Hour), 0, 1)
	require.NoError(t, store.Create(ctx, voucher))

	result, err := svc.Redeem(ctx, voucher.Code, merchantID, tenantID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Voucher)
	assert.Equal(t, 1, result.Voucher.RedemptionCount)
	assert.True(t, result.Voucher.IsRedeemed)
	require.NotNil(t, result.Voucher.RedeemedAt)
	require.NotNil(t, result.Voucher.RedeemedBy)
	assert.Equal(t, merchantID, *result.Voucher.RedeemedBy)
}

func TestRedeemAlreadyRedeemedDoesNotChangeCount(t *testing.T) {
	svc, store := newRedemptionFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	voucher := newTestVoucher(tenantID, time.Now().Add(48*time.Hour), 0, 1)
	require.NoError(t, store.Create(ctx, voucher))

	first, err := svc.Redeem(ctx, voucher.Code, uuid.New(), tenantID)
	require.NoError(t, err)
	require.True(t, first.Success)

	for i := 0; i < 3; i++ {
		again, err := svc.Redeem(ctx, voucher.Code, uuid.New(), tenantID)
		require.NoError(t, err)
		assert.False(t, again.Success)
		assert.Equal(t, models.ReasonLimitReached, again.Reason)
		assert.NotNil(t, again.RedeemedAt)
	}

	current, err := store.FindByCode(ctx, tenantID, voucher.Code)
	require.NoError(t, err)
	assert.Equal(t, 1, current.RedemptionCount)
}

func TestRedeemFailureReasons(t *testing.T) {
	svc, store := newRedemptionFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()
	merchantID := uuid.New()

	t.Run("unknown code is not_found", func(t *testing.T) {
		result, err := svc.Redeem(ctx, "XXXX-000000000000", merchantID, tenantID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, models.ReasonNotFound, result.Reason)
	})

	t.Run("expired voucher reports expiry date", func(t *testing.T) {
		expiresAt := time.Now().Add(-time.Hour)
		voucher := newTestVoucher(tenantID, expiresAt, 0, 1)
		voucher.Code = "LUCK-EXPIRED00001"
		voucher.SpinID = uuid.New()
		require.NoError(t, store.Create(ctx, voucher))

		result, err := svc.Redeem(ctx, voucher.Code, merchantID, tenantID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, models.ReasonExpired, result.Reason)
		require.NotNil(t, result.ExpiresAt)
		assert.True(t, result.ExpiresAt.Equal(expiresAt))

		current, err := store.FindByCode(ctx, tenantID, voucher.Code)
		require.NoError(t, err)
		assert.Equal(t, 0, current.RedemptionCount)
	})

	t.Run("voided voucher is rejected", func(t *testing.T) {
		voucher := newTestVoucher(tenantID, time.Now().Add(48*time.Hour), 0, 1)
		voucher.Code = "LUCK-VOIDED000001"
		voucher.SpinID = uuid.New()
		require.NoError(t, store.Create(ctx, voucher))
		voided, err := store.Void(ctx, tenantID, voucher.ID, time.Now())
		require.NoError(t, err)
		require.True(t, voided)

		result, err := svc.Redeem(ctx, voucher.Code, merchantID, tenantID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, models.ReasonVoid, result.Reason)
	})

	t.Run("foreign tenant code is not_found", func(t *testing.T) {
		voucher := newTestVoucher(uuid.New(), time.Now().Add(48*time.Hour), 0, 1)
		voucher.Code = "LUCK-FOREIGN00001"
		voucher.SpinID = uuid.New()
		require.NoError(t, store.Create(ctx, voucher))

		result, err := svc.Redeem(ctx, voucher.Code, merchantID, tenantID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, models.ReasonNotFound, result.Reason)
	})
}

func TestRedeemConcurrentSingleUse(t *testing.T) {
	svc, store := newRedemptionFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	voucher := newTestVoucher(tenantID, time.Now().Add(48*time.Hour), 0, 1)
	require.NoError(t, store.Create(ctx, voucher))

	const attempts = 20
	var mu sync.Mutex
	var results []*models.RedemptionResult

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			result, err := svc.Redeem(gctx, voucher.Code, uuid.New(), tenantID)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	successes := 0
	for _, r := range results {
		if r.Success {
			successes++
		} else {
			assert.Equal(t, models.ReasonLimitReached, r.Reason)
		}
	}
	assert.Equal(t, 1, successes)

	current, err := store.FindByCode(ctx, tenantID, voucher.Code)
	require.NoError(t, err)
	assert.Equal(t, 1, current.RedemptionCount)
	assert.True(t, current.IsRedeemed)
}

func TestRedeemConcurrentMultiUse(t *testing.T) {
	svc, store := newRedemptionFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	voucher := newTestVoucher(tenantID, time.Now().Add(48*time.Hour), 0, 3)
	require.NoError(t, store.Create(ctx, voucher))

	var mu sync.Mutex
	var results []*models.RedemptionResult

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 3; i++ {
		g.Go(func() error {
			result, err := svc.Redeem(gctx, voucher.Code, uuid.New(), tenantID)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var counts []int
	for _, r := range results {
		require.True(t, r.Success)
		require.NotNil(t, r.Voucher)
		counts = append(counts, r.Voucher.RedemptionCount)
		assert.Equal(t, r.Voucher.RedemptionCount == 3, r.Voucher.IsRedeemed)
	}
	sort.Ints(counts)
	assert.Equal(t, []int{1, 2, 3}, counts)

	fourth, err := svc.Redeem(ctx, voucher.Code, uuid.New(), tenantID)
	require.NoError(t, err)
	assert.False(t, fourth.Success)
	assert.Equal(t, models.ReasonLimitReached, fourth.Reason)

	current, err := store.FindByCode(ctx, tenantID, voucher.Code)
	require.NoError(t, err)
	assert.Equal(t, 3, current.RedemptionCount)
	assert.True(t, current.IsRedeemed)
}

func TestRedeemMultiUseKeepsMostRecentRedeemer(t *testing.T) {
	svc, store := newRedemptionFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	voucher := newTestVoucher(tenantID, time.Now().Add(48*time.Hour), 0, 2)
	require.NoError(t, store.Create(ctx, voucher))

	firstMerchant := uuid.New()
	secondMerchant := uuid.New()

	first, err := svc.Redeem(ctx, voucher.Code, firstMerchant, tenantID)
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.False(t, first.Voucher.IsRedeemed)
	assert.Equal(t, firstMerchant, *first.Voucher.RedeemedBy)

	second, err := svc.Redeem(ctx, voucher.Code, secondMerchant, tenantID)
	require.NoError(t, err)
	require.True(t, second.Success)
	assert.True(t, second.Voucher.IsRedeemed)
	assert.Equal(t, secondMerchant, *second.Voucher.RedeemedBy)
}
