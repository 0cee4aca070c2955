package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func storeVoucher(tenantID uuid.UUID, code string, limit int) *models.Voucher {
	return &models.Voucher{
		Code:            code,
		TenantID:        tenantID,
		SpinID:          uuid.New(),
		PrizeID:         uuid.New(),
		CustomerID:      uuid.New(),
		ExpiresAt:       time.Now().Add(48 * time.Hour),
		RedemptionLimit: limit,
	}
}

func TestMemoryStoreCreateUniqueness(t *testing.T) {
	store := NewMemoryVoucherStore()
	ctx := context.Background()
	tenantID := uuid.New()

	first := storeVoucher(tenantID, "LUCK-AAAA00000001", 1)
	require.NoError(t, store.Create(ctx, first))

	t.Run("same code same tenant is rejected", func(t *testing.T) {
		dup := storeVoucher(tenantID, "LUCK-AAAA00000001", 1)
		assert.ErrorIs(t, store.Create(ctx, dup), ErrDuplicateCode)
	})

	t.Run("same code other tenant is allowed", func(t *testing.T) {
		other := storeVoucher(uuid.New(), "LUCK-AAAA00000001", 1)
		assert.NoError(t, store.Create(ctx, other))
	})

	t.Run("same spin is rejected", func(t *testing.T) {
		dup := storeVoucher(tenantID, "LUCK-BBBB00000001", 1)
		dup.SpinID = first.SpinID
		assert.ErrorIs(t, store.Create(ctx, dup), ErrDuplicateSpin)
	})
}

func TestMemoryStoreFindByCodeIsTenantScoped(t *testing.T) {
	store := NewMemoryVoucherStore()
	ctx := context.Background()
	tenantID := uuid.New()

	voucher := storeVoucher(tenantID, "LUCK-CCCC00000001", 1)
	require.NoError(t, store.Create(ctx, voucher))

	_, err := store.FindByCode(ctx, uuid.New(), voucher.Code)
	assert.ErrorIs(t, err, ErrVoucherNotFound)

	found, err := store.FindByCode(ctx, tenantID, voucher.Code)
	require.NoError(t, err)
	assert.Equal(t, voucher.Code, found.Code)
}

// Hammers one code with far more attempts than capacity. Exactly limit
// redemptions must land regardless of interleaving.
func TestMemoryStoreRedeemNeverExceedsLimit(t *testing.T) {
	store := NewMemoryVoucherStore()
	ctx := context.Background()
	tenantID := uuid.New()

	const limit = 5
	voucher := storeVoucher(tenantID, "LUCK-DDDD00000001", limit)
	require.NoError(t, store.Create(ctx, voucher))

	const attempts = 50
	results := make(chan *models.Voucher, attempts)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			updated, err := store.Redeem(gctx, tenantID, voucher.Code, uuid.New(), time.Now())
			if err != nil {
				return err
			}
			results <- updated
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	successes := 0
	seenCounts := make(map[int]bool)
	for updated := range results {
		if updated == nil {
			continue
		}
		successes++
		assert.False(t, seenCounts[updated.RedemptionCount], "count %d returned twice", updated.RedemptionCount)
		seenCounts[updated.RedemptionCount] = true
		assert.GreaterOrEqual(t, updated.RedemptionCount, 1)
		assert.LessOrEqual(t, updated.RedemptionCount, limit)
		assert.Equal(t, updated.RedemptionCount == limit, updated.IsRedeemed)
	}
	assert.Equal(t, limit, successes)

	final, err := store.FindByCode(ctx, tenantID, voucher.Code)
	require.NoError(t, err)
	assert.Equal(t, limit, final.RedemptionCount)
	assert.True(t, final.IsRedeemed)
}

func TestMemoryStoreRedeemRespectsPredicate(t *testing.T) {
	store := NewMemoryVoucherStore()
	ctx := context.Background()
	tenantID := uuid.New()
	now := time.Now()

	t.Run("expired voucher never redeems", func(t *testing.T) {
		voucher := storeVoucher(tenantID, "LUCK-EEEE00000001", 1)
		voucher.ExpiresAt = now.Add(-time.Hour)
		require.NoError(t, store.Create(ctx, voucher))

		updated, err := store.Redeem(ctx, tenantID, voucher.Code, uuid.New(), now)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("wrong tenant never redeems", func(t *testing.T) {
		voucher := storeVoucher(tenantID, "LUCK-FFFF00000001", 1)
		require.NoError(t, store.Create(ctx, voucher))

		updated, err := store.Redeem(ctx, uuid.New(), voucher.Code, uuid.New(), now)
		require.NoError(t, err)
		assert.Nil(t, updated)

		current, err := store.FindByCode(ctx, tenantID, voucher.Code)
		require.NoError(t, err)
		assert.Equal(t, 0, current.RedemptionCount)
	})

	t.Run("voided voucher never redeems", func(t *testing.T) {
		voucher := storeVoucher(tenantID, "LUCK-GGGG00000001", 1)
		require.NoError(t, store.Create(ctx, voucher))
		voided, err := store.Void(ctx, tenantID, voucher.ID, now)
		require.NoError(t, err)
		require.True(t, voided)

		updated, err := store.Redeem(ctx, tenantID, voucher.Code, uuid.New(), now)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}
