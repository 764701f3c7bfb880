package bootstrap

import (
	"slotbook/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	RedisModule,
	JWTModule,
	OutboxModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
