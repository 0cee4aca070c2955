package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spinwin/promo-core/internal/app/deliveries"
	"github.com/spinwin/promo-core/internal/app/middlewares"
)

// Application is the assembled dependency container for promo-core.
type Application struct {
	HealthHandler       *deliveries.HealthHandler
	VoucherHandler      *deliveries.VoucherHandler
	RedemptionHandler   *deliveries.RedemptionHandler
	MerchantKeyHandler  *deliveries.MerchantKeyHandler
	RateLimitMiddleware *middlewares.RateLimitMiddleware
}

// RegisterRoutes registers all application routes on a Fiber router.
func (app *Application) RegisterRoutes(router fiber.Router) {
	router.Use(app.RateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	app.HealthHandler.RegisterRoutes(router)
	app.VoucherHandler.RegisterRoutes(router)
	app.RedemptionHandler.RegisterRoutes(router)
	app.MerchantKeyHandler.RegisterRoutes(router)
}
