package services

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"

	"github.com/google/uuid"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/infrastructures"
	"gorm.io/gorm"
)

var ErrInvalidMerchantKey = errors.New("invalid merchant key")

// MerchantKeyService issues and verifies the API keys merchant devices use
// to reach the redemption endpoints. A key binds a device to one tenant.
type MerchantKeyService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewMerchantKeyService(db *gorm.DB, validator *infrastructures.Validator) *MerchantKeyService {
	return &MerchantKeyService{db: db, validator: validator}
}

func (s *MerchantKeyService) CreateKey(ctx context.Context, req *models.MerchantKeyCreateRequest) (*models.MerchantKey, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid tenant ID format")
	}

	rawKey, err := generateKey()
	if err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to generate merchant key")
	}

	key := &models.MerchantKey{
		TenantID: tenantID,
		Label:    req.Label,
		Key:      rawKey,
	}
	if err := s.db.WithContext(ctx).Create(key).Error; err != nil {
		return nil, appErrors.NewInternalServerError(err, "Failed to create merchant key")
	}
	return key, nil
}

// GetByKey resolves an incoming key to its record. Revoked and unknown keys
// are indistinguishable to the caller.
func (s *MerchantKeyService) GetByKey(ctx context.Context, rawKey string) (*models.MerchantKey, error) {
	var key models.MerchantKey
	err := s.db.WithContext(ctx).Where("key = ?", rawKey).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidMerchantKey
		}
		return nil, err
	}
	if !key.IsActive() {
		return nil, ErrInvalidMerchantKey
	}
	return &key, nil
}

func (s *MerchantKeyService) RevokeKey(ctx context.Context, tenantID uuid.UUID, keyID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&models.MerchantKey{}).
		Where("id = ? AND tenant_id = ? AND revoked_at IS NULL", keyID, tenantID).
		Update("revoked_at", gorm.Expr("NOW()"))
	if res.Error != nil {
		return appErrors.NewInternalServerError(res.Error, "Failed to revoke merchant key")
	}
	if res.RowsAffected == 0 {
		return appErrors.NewNotFoundError("Merchant key not found")
	}
	return nil
}

func generateKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	encoded := strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf))
	return "mk_" + encoded, nil
}
