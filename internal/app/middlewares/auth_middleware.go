package middlewares

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/pkg"
	"github.com/spinwin/promo-core/internal/app/services"
)

const (
	LocalTenantID   = "tenant_id"
	LocalMerchantID = "merchant_id"
)

// AuthMiddleware authenticates merchant devices by API key and pins the
// request to the key's tenant. Handlers downstream only ever see the tenant
// from locals, never from client input.
type AuthMiddleware struct {
	merchantKeyService *services.MerchantKeyService
}

func NewAuthMiddleware(merchantKeyService *services.MerchantKeyService) *AuthMiddleware {
	return &AuthMiddleware{merchantKeyService: merchantKeyService}
}

func (m *AuthMiddleware) RequireMerchantKey(c *fiber.Ctx) error {
	rawKey := c.Get("X-API-Key")
	if rawKey == "" {
		return pkg.ErrorResponse(c, appErrors.NewUnauthorizedError("Missing API key"))
	}

	key, err := m.merchantKeyService.GetByKey(c.Context(), rawKey)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMerchantKey) {
			return pkg.ErrorResponse(c, appErrors.NewUnauthorizedError("Invalid API key"))
		}
		return pkg.ErrorResponse(c, err)
	}

	c.Locals(LocalTenantID, key.TenantID)
	c.Locals(LocalMerchantID, key.ID)
	return c.Next()
}
