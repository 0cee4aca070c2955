//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/spinwin/promo-core/internal/app/deliveries"
	"github.com/spinwin/promo-core/internal/app/middlewares"
	"github.com/spinwin/promo-core/internal/app/services"
	"github.com/spinwin/promo-core/internal/app/stores"
	"github.com/spinwin/promo-core/internal/infrastructures"
)

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
)

// Store providers
var storeSet = wire.NewSet(
	stores.NewGormVoucherStore,
	wire.Bind(new(stores.VoucherStore), new(*stores.GormVoucherStore)),
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewNotificationService,
	services.NewQRService,
	services.NewAuditService,
	services.NewMerchantKeyService,
	services.NewValidationService,
	services.NewRedemptionService,
	services.NewVoucherService,
	services.NewQueryService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAuthMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewVoucherHandler,
	deliveries.NewRedemptionHandler,
	deliveries.NewMerchantKeyHandler,
	wire.Struct(new(Application), "*"),
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		storeSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil
}
