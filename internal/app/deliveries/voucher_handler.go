package deliveries

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	appErrors "github.com/spinwin/promo-core/internal/app/errors"
	"github.com/spinwin/promo-core/internal/app/middlewares"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/app/pkg"
	"github.com/spinwin/promo-core/internal/app/services"
)

type VoucherHandler struct {
	voucherService *services.VoucherService
	queryService   *services.QueryService
	authMiddleware *middlewares.AuthMiddleware
}

func NewVoucherHandler(voucherService *services.VoucherService, queryService *services.QueryService, authMiddleware *middlewares.AuthMiddleware) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
		queryService:   queryService,
		authMiddleware: authMiddleware,
	}
}

func (h *VoucherHandler) RegisterRoutes(router fiber.Router) {
	voucherGroup := router.Group("/vouchers")
	voucherGroup.Use(h.authMiddleware.RequireMerchantKey)

	voucherGroup.Post("/", h.CreateVoucher)
	voucherGroup.Get("/", h.GetVouchers)
	voucherGroup.Get("/stats", h.GetVoucherStats)
	voucherGroup.Get("/export", h.ExportVouchers)
	voucherGroup.Get("/phone/:phone", h.GetVouchersByPhone)
	voucherGroup.Post("/:id/void", h.VoidVoucher)
}

// CreateVoucher is the inbound edge of the spin subsystem: one call per
// qualifying spin. A zero-validity prize intentionally creates nothing and
// still returns success.
func (h *VoucherHandler) CreateVoucher(c *fiber.Ctx) error {
	var req models.VoucherCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, appErrors.NewBadRequestError("Invalid request body"))
	}

	voucher, err := h.voucherService.CreateFromSpin(c.Context(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, voucher)
}

func (h *VoucherHandler) GetVouchers(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)

	filter, err := parseVoucherFilter(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.queryService.GetVouchers(c.Context(), tenantID, *filter)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *VoucherHandler) GetVoucherStats(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)

	stats, err := h.queryService.GetVoucherStats(c.Context(), tenantID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, stats)
}

func (h *VoucherHandler) GetVouchersByPhone(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)
	phone := c.Params("phone")

	vouchers, err := h.queryService.GetVouchersByPhone(c.Context(), phone, tenantID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, vouchers)
}

func (h *VoucherHandler) ExportVouchers(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)

	filter, err := parseVoucherFilter(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	data, err := h.queryService.ExportVouchers(c.Context(), tenantID, *filter)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="vouchers.csv"`)
	return c.Send(data)
}

func (h *VoucherHandler) VoidVoucher(c *fiber.Ctx) error {
	tenantID := c.Locals(middlewares.LocalTenantID).(uuid.UUID)
	merchantID := c.Locals(middlewares.LocalMerchantID).(uuid.UUID)

	voucherID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, appErrors.NewBadRequestError("Invalid voucher ID format"))
	}

	if err := h.voucherService.VoidVoucher(c.Context(), tenantID, voucherID, &merchantID); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}

// parseVoucherFilter validates the listing query parameters. Malformed
// values are rejected here so the query layer only ever sees clean input.
func parseVoucherFilter(c *fiber.Ctx) (*models.VoucherFilter, error) {
	filter := &models.VoucherFilter{
		Search: c.Query("search"),
		Page:   1,
		Limit:  10,
	}

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return nil, appErrors.NewBadRequestError("Invalid page value")
		}
		filter.Page = page
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			return nil, appErrors.NewBadRequestError("Invalid limit value")
		}
		filter.Limit = limit
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := parseVoucherStatus(statusStr)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	if startStr := c.Query("start_date"); startStr != "" {
		start, err := parseDate(startStr)
		if err != nil {
			return nil, appErrors.NewBadRequestError("Invalid start_date value")
		}
		filter.StartDate = start
	}
	if endStr := c.Query("end_date"); endStr != "" {
		end, err := parseDate(endStr)
		if err != nil {
			return nil, appErrors.NewBadRequestError("Invalid end_date value")
		}
		filter.EndDate = end
	}

	return filter, nil
}

func parseVoucherStatus(value string) (*models.VoucherStatus, error) {
	switch models.VoucherStatus(value) {
	case models.VoucherStatusActive, models.VoucherStatusRedeemed, models.VoucherStatusExpired, models.VoucherStatusVoid:
		status := models.VoucherStatus(value)
		return &status, nil
	default:
		return nil, appErrors.NewBadRequestError("Invalid status value")
	}
}

func parseDate(value string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
