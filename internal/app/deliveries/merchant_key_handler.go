package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/middlewares"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/pkg"
	"github.com/spinwin/promo-core/internal/app/services"
)

// MerchantKeyHandler provisions and revokes merchant device keys. Issuing a
// new key requires an existing key for the same tenant.
type MerchantKeyHandler struct {
	merchantKeyService *services.MerchantKeyService
	authMiddleware     *middlewares.AuthMiddleware
}

func NewMerchantKeyHandler(merchantKeyService *services.MerchantKeyService, authMiddleware *middlewares.AuthMiddleware) *MerchantKeyHandler {
	return &MerchantKeyHandler{
		merchantKeyService: merchantKeyService,
		authMiddleware:     authMiddleware,
	}
}

func (h *MerchantKeyHandler) RegisterRoutes(router fiber.Router) {
	keyGroup := router.Group("/merchant-keys")
	keyGroup.Use(h.authMiddleware.RequireMerchantKey)

	keyGroup.Post("/", h.CreateKey)
	keyGroup.Delete("/:id", h.RevokeKey)
}

func (h *MerchantKeyHandler) CreateKey(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)

	var req models.MerchantKeyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, appErrors.NewBadRequestError("Invalid request body"))
	}
	req.TenantID = tenantID.String()

	key, err := h.merchantKeyService.CreateKey(c.Context(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, key)
}

func (h *MerchantKeyHandler) RevokeKey(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)

	keyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, appErrors.NewBadRequestError("Invalid key ID format"))
	}

	if err := h.merchantKeyService.RevokeKey(c.Context(), tenantID, keyID); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}
