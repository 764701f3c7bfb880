package components

import (
	"slotbook/internal/handler/api"
	"slotbook/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		middleware.NewAuthMiddleware,
		api.NewAvailabilityHandler,
		api.NewBookingHandler,
		api.NewProfileHandler,
	),
)
