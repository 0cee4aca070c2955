package deliveries

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/middlewares"
	"github.com/spinwin/promo-core/internal/app/pkg"
	"github.com/spinwin/promo-core/internal/app/services"
)

// RedemptionHandler exposes the merchant point-of-sale surface: check a
// code, then redeem it. Both endpoints answer 200 with the outcome in the
// payload; only malformed input or infrastructure failure maps to an error
// status.
type RedemptionHandler struct {
	redemptionService   *services.RedemptionService
	validationService   *services.ValidationService
	authMiddleware      *middlewares.AuthMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewRedemptionHandler(redemptionService *services.RedemptionService, validationService *services.ValidationService, authMiddleware *middlewares.AuthMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService:   redemptionService,
		validationService:   validationService,
		authMiddleware:      authMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *RedemptionHandler) RegisterRoutes(router fiber.Router) {
	redemptionGroup := router.Group("/redemptions")
	redemptionGroup.Use(h.authMiddleware.RequireMerchantKey)
	redemptionGroup.Use(h.rateLimitMiddleware.LimitByMerchant(middlewares.RedemptionLimit))

	redemptionGroup.Post("/validate", h.ValidateCode)
	redemptionGroup.Post("/redeem", h.RedeemCode)
}

type codeRequest struct {
	Code string `json:"code"`
}

func (h *RedemptionHandler) ValidateCode(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)

	code, err := parseCode(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.validationService.CheckCode(c.Context(), tenantID, code)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *RedemptionHandler) RedeemCode(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)
	merchantID := c.Locals(middlewares.LocalMerchantID).(uuid.UUID)

	code, err := parseCode(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.redemptionService.Redeem(c.Context(), code, merchantID, tenantID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func parseCode(c *fiber.Ctx) (string, error) {
	var req codeRequest
	if err := c.BodyParser(&req); err != nil {
		return "", appErrors.NewBadRequestError("Invalid request body")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !pkg.CodePattern.MatchString(code) {
		return "", appErrors.NewBadRequestError("Invalid voucher code format")
	}
	return code, nil
}
