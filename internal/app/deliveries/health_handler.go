package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spinwin/promo-core/internal/app/pkg"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return pkg.SuccessResponse(c, map[string]string{"status": "ok"})
}
